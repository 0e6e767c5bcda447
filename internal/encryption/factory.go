package encryption

import (
	"fmt"

	"mfdiff/internal/config"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return NoneEncryptor{}, nil
	case "age":
		return NewAgeEncryptor(cfg.PublicKeyPath, cfg.PrivateKeyPath), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
