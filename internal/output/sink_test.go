package output

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mfdiff/internal/encryption"
)

func TestFileSink_Put(t *testing.T) {
	t.Run("writes file and creates parents", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "reports", "2025", "out.csv")
		s := NewFileSink(io.Discard)

		got, err := s.Put(dest, strings.NewReader("a,b\n"))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if got != dest {
			t.Errorf("Put() = %q, want %q", got, dest)
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if string(data) != "a,b\n" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.csv")
		if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
		s := NewFileSink(io.Discard)
		if _, err := s.Put(dest, strings.NewReader("new")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		data, _ := os.ReadFile(dest)
		if string(data) != "new" {
			t.Errorf("content = %q, want new", data)
		}
	})

	t.Run("failed read leaves no file or temp behind", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.csv")
		s := NewFileSink(io.Discard)

		r := io.MultiReader(strings.NewReader("partial"), &failingReader{})
		if _, err := s.Put(dest, r); err == nil {
			t.Fatal("Put() expected error")
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("directory not clean: %v", entries)
		}
	})

	t.Run("dash writes to stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		s := NewFileSink(&stdout)
		got, err := s.Put(Stdout, strings.NewReader("to stdout"))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if got != Stdout || stdout.String() != "to stdout" {
			t.Errorf("Put() = %q, stdout = %q", got, stdout.String())
		}
	})
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestMemorySink(t *testing.T) {
	m := NewMemorySink()
	for _, name := range []string{"b.html", "a.csv"} {
		if _, err := m.Put(name, strings.NewReader(name)); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}

	if got := m.Names(); !slices.Equal(got, []string{"a.csv", "b.html"}) {
		t.Errorf("Names() = %v", got)
	}
	data, ok := m.Get("a.csv")
	if !ok || string(data) != "a.csv" {
		t.Errorf("Get(a.csv) = %q, %v", data, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) reported ok")
	}
}

func TestEncryptingSink(t *testing.T) {
	mem := NewMemorySink()
	enc := encryption.NewTestEncryptor()
	s := NewEncryptingSink(mem, enc)

	got, err := s.Put("out/report.csv", strings.NewReader("secret"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got != "out/report.csv.enc" {
		t.Errorf("Put() = %q, want out/report.csv.enc", got)
	}

	sealed, ok := mem.Get("out/report.csv.enc")
	if !ok {
		t.Fatalf("artifact not stored, have %v", mem.Names())
	}
	if bytes.Equal(sealed, []byte("secret")) {
		t.Error("artifact stored as plaintext")
	}

	ctx, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var plain bytes.Buffer
	if err := ctx.Decrypt(bytes.NewReader(sealed), &plain); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plain.String() != "secret" {
		t.Errorf("decrypted = %q, want secret", plain.String())
	}

	if got, _ := s.Put(Stdout, strings.NewReader("x")); got != Stdout {
		t.Errorf("Put(Stdout) = %q, want %q", got, Stdout)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(io.Discard, encryption.NoneEncryptor{}).(*FileSink); !ok {
		t.Error("New() with no-op encryptor should return a plain FileSink")
	}
	if _, ok := New(io.Discard, nil).(*FileSink); !ok {
		t.Error("New() with nil encryptor should return a plain FileSink")
	}
	if _, ok := New(io.Discard, encryption.NewTestEncryptor()).(*EncryptingSink); !ok {
		t.Error("New() with test encryptor should return an EncryptingSink")
	}
}
