// Package output delivers finished report artifacts.
package output

import (
	"fmt"
	"io"

	"mfdiff/internal/encryption"
)

// Stdout is the artifact name that selects standard output.
const Stdout = "-"

// Sink stores a named artifact and returns the name it was stored under.
type Sink interface {
	Put(name string, r io.Reader) (string, error)
}

// EncryptingSink seals every artifact with enc before handing it to next.
// Artifact names gain the encryptor's extension; Stdout keeps its name.
type EncryptingSink struct {
	next Sink
	enc  encryption.Encryptor
}

var _ Sink = (*EncryptingSink)(nil)

func NewEncryptingSink(next Sink, enc encryption.Encryptor) *EncryptingSink {
	return &EncryptingSink{next: next, enc: enc}
}

func (s *EncryptingSink) Put(name string, r io.Reader) (string, error) {
	if name != Stdout {
		name += s.enc.Extension()
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.enc.Encrypt(r, pw))
	}()

	stored, err := s.next.Put(name, pr)
	// Unblocks the encrypting goroutine if next stopped reading early.
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return "", fmt.Errorf("storing encrypted %s: %w", name, err)
	}
	return stored, nil
}

// New returns a FileSink writing to stdout, wrapped for encryption unless
// enc adds no extension.
func New(stdout io.Writer, enc encryption.Encryptor) Sink {
	var s Sink = NewFileSink(stdout)
	if enc != nil && enc.Extension() != "" {
		s = NewEncryptingSink(s, enc)
	}
	return s
}
