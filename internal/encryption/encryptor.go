package encryption

import (
	"errors"
	"io"
)

// ErrNotConfigured is returned when an operation needs key material that
// has not been generated yet. Run `mfdiff keys init` first.
var ErrNotConfigured = errors.New("encryption keys are not configured")

// Encryptor seals report artifacts before they are written.
//
// Sealing uses the public key only, so scans run unattended. Opening a sealed
// artifact requires the passphrase that protects the private key.
type Encryptor interface {
	// Setup generates a key pair and protects the private half with passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock opens the private key and returns a context able to decrypt.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key material is in place.
	IsConfigured() bool

	// Extension is appended to artifact names written through this encryptor.
	Extension() string
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
