package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/queuejw/messenger/internal/core/domain"
)

// AESECB encrypts credentials with AES in ECB mode and PKCS#7 padding, the
// transform a bare "AES" cipher name resolves to on the JVM, so tokens already
// stored under the default key keep decrypting.
//
// ECB leaks equal plaintext blocks; use XChaCha for new deployments.
type AESECB struct {
	block cipher.Block
}

// NewAESECB accepts a 16, 24 or 32 byte key.
func NewAESECB(key []byte) (*AESECB, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCipher, err)
	}
	return &AESECB{block: block}, nil
}

func (c *AESECB) Encrypt(plaintext string) (string, error) {
	bs := c.block.BlockSize()
	data := pkcs7Pad([]byte(plaintext), bs)

	out := make([]byte, len(data))
	for i := 0; i < len(data); i += bs {
		c.block.Encrypt(out[i:i+bs], data[i:i+bs])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *AESECB) Decrypt(token string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: decode token: %v", domain.ErrCipher, err)
	}

	bs := c.block.BlockSize()
	if len(data) == 0 || len(data)%bs != 0 {
		return "", fmt.Errorf("%w: token length %d is not a multiple of %d", domain.ErrCipher, len(data), bs)
	}

	out := make([]byte, len(data))
	for i := 0; i < len(data); i += bs {
		c.block.Decrypt(out[i:i+bs], data[i:i+bs])
	}

	plain, err := pkcs7Unpad(out, bs)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Unpad is where a token encrypted under another key is usually caught.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrCipher)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrCipher)
		}
	}
	return data[:len(data)-n], nil
}
