package encryption

import (
	"fmt"

	"riffbox/internal/config"
	"riffbox/internal/riffbox"
)

// PassphraseFunc supplies the passphrase protecting the private key.
type PassphraseFunc func() (string, error)

// NewCodecFromConfig creates a Codec based on the configuration type.
// passphrase is only called for type "age".
func NewCodecFromConfig(cfg config.EncryptionConfig, passphrase PassphraseFunc) (riffbox.Codec, error) {
	switch cfg.Type {
	case "none", "":
		return PlainCodec{}, nil
	case "test":
		return NewTestCodec(), nil
	case "age":
		keys := NewAgeKeys(cfg)
		if !keys.IsConfigured() {
			return nil, fmt.Errorf("age keys not found at %s and %s: run 'riffbox config init --encrypt'", cfg.PublicKeyPath, cfg.PrivateKeyPath)
		}
		if passphrase == nil {
			return nil, fmt.Errorf("age encryption requires a passphrase")
		}
		p, err := passphrase()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		codec, err := keys.Unlock(p)
		if err != nil {
			return nil, fmt.Errorf("unlocking keys: %w", err)
		}
		return codec, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
