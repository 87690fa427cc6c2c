// Package credential implements the reversible password ciphers used by the
// account service.
package credential

import (
	"fmt"

	"github.com/queuejw/messenger/internal/core/ports"
)

const (
	ModeAESECB  = "aes-ecb"
	ModeXChaCha = "xchacha20poly1305"
	DefaultKey  = "1234567890123456"
	DefaultMode = ModeAESECB
)

var (
	_ ports.CredentialCipher = (*AESECB)(nil)
	_ ports.CredentialCipher = (*XChaCha)(nil)
)

// New builds the cipher selected by mode. An empty mode or key falls back to
// the defaults.
func New(mode, key string) (ports.CredentialCipher, error) {
	if mode == "" {
		mode = DefaultMode
	}
	if key == "" {
		key = DefaultKey
	}

	switch mode {
	case ModeAESECB:
		return NewAESECB([]byte(key))
	case ModeXChaCha:
		return NewXChaCha([]byte(key))
	default:
		return nil, fmt.Errorf("unknown cipher mode %q", mode)
	}
}
