package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/queuejw/messenger/internal/core/domain"
)

const keyDerivationContext = "messenger 2024 credential cipher v1"

// XChaCha is an authenticated credential cipher. The configured key can be any
// length; the AEAD key is derived from it with BLAKE3. Tokens are
// base64(nonce || ciphertext).
type XChaCha struct {
	aead cipher.AEAD
}

func NewXChaCha(key []byte) (*XChaCha, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", domain.ErrCipher)
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	blake3.DeriveKey(keyDerivationContext, key, derived)

	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCipher, err)
	}
	return &XChaCha{aead: aead}, nil
}

func (c *XChaCha) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce: %v", domain.ErrCipher, err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *XChaCha) Decrypt(token string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: decode token: %v", domain.ErrCipher, err)
	}
	if len(data) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", fmt.Errorf("%w: token too short", domain.ErrCipher)
	}

	nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCipher, err)
	}
	return string(plain), nil
}
