package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mfdiff/internal/config"
	"mfdiff/internal/database"
	"mfdiff/internal/encryption"
	"mfdiff/internal/export"
	"mfdiff/internal/fs"
	"mfdiff/internal/mfdiff"
	"mfdiff/internal/output"
)

// Options carries the process streams and CLI switches into the app.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
}

// App is the application layer between the CLI and mfdiff.Service.
// It builds every dependency from config and owns the log file.
type App struct {
	cfg       *config.Config
	fsmgr     mfdiff.FilesystemManager
	service   *mfdiff.Service
	encryptor encryption.Encryptor
	sink      output.Sink
	clock     mfdiff.Clock
	logger    mfdiff.Logger
	op        *Operation
	logFile   *os.File
}

// PeriodRoot is a period with the directory its template resolves to.
type PeriodRoot struct {
	Period mfdiff.Period
	Root   string
	Exists bool
}

// ScanResult summarizes a finished scan.
type ScanResult struct {
	RunID     string
	Grouping  *mfdiff.Grouping
	Artifacts []string
}

// NewApp creates a fully wired App for the named operation.
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	ignore := cfg.Filesystem.Ignore
	if cfg.Filesystem.IgnoreFile != "" {
		extra, err := fs.ParseIgnoreFile(cfg.Filesystem.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("reading ignore file: %w", err)
		}
		ignore = append(append([]string(nil), ignore...), extra...)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := mfdiff.RealClock{}
	op := NewOperation(mfdiff.UUIDGenerator{}.New(), operation, cfg.Template, clock.Now())

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Stderr, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := newApp(cfg, op, fs.NewOSFilesystemManager(ignore), enc, output.New(opts.Stdout, enc), clock, &slogAdapter{l: logger})
	a.logFile = logFile
	return a, nil
}

func newApp(cfg *config.Config, op *Operation, fsmgr mfdiff.FilesystemManager, enc encryption.Encryptor,
	sink output.Sink, clock mfdiff.Clock, logger mfdiff.Logger) *App {
	a := &App{
		cfg:       cfg,
		fsmgr:     fsmgr,
		service:   mfdiff.NewService(fsmgr, logger, cfg.Workers),
		encryptor: enc,
		sink:      sink,
		clock:     clock,
		logger:    logger,
		op:        op,
	}
	logger.Debug("operation started", "operation", op.Name, "template", cfg.Template)
	return a
}

// RunID returns the ID of the current operation.
func (a *App) RunID() string {
	return a.op.ID
}

// periods returns the explicit date list when configured, otherwise the
// periods discovered from the template. Either way the result is ascending.
func (a *App) periods() ([]mfdiff.Period, error) {
	if len(a.cfg.Dates) > 0 {
		periods := mfdiff.ParsePeriodList(strings.Join(a.cfg.Dates, ","))
		if len(periods) < len(a.cfg.Dates) {
			a.logger.Warn("ignoring malformed dates", "given", len(a.cfg.Dates), "valid", len(periods))
		}
		slices.SortStableFunc(periods, mfdiff.Period.Compare)
		return periods, nil
	}
	return a.service.DiscoverPeriods(a.cfg.Template)
}

// Periods lists the periods a scan would cover and where each resolves.
func (a *App) Periods() ([]PeriodRoot, error) {
	if a.cfg.Template == "" {
		return nil, errors.New("no template configured")
	}
	periods, err := a.periods()
	if err != nil {
		return nil, err
	}

	out := make([]PeriodRoot, 0, len(periods))
	for _, p := range periods {
		root := mfdiff.ResolveTemplate(a.cfg.Template, p)
		out = append(out, PeriodRoot{Period: p, Root: root, Exists: a.fsmgr.Exists(root)})
	}
	return out, nil
}

// Scan groups every period's files and writes the configured artifacts.
func (a *App) Scan(ctx context.Context) (*ScanResult, error) {
	if a.cfg.Template == "" {
		return nil, errors.New("no template configured")
	}
	periods, err := a.periods()
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		a.logger.Warn("no periods to scan", "template", a.cfg.Template)
	}

	g := a.service.Scan(a.cfg.Template, periods, a.cfg.MaxDepth)

	artifacts, err := a.Export(ctx, g)
	if err != nil {
		return nil, err
	}
	return &ScanResult{RunID: a.op.ID, Grouping: g, Artifacts: artifacts}, nil
}

// Export writes g to every artifact configured under [output] and returns
// the names the artifacts were stored under.
func (a *App) Export(ctx context.Context, g *mfdiff.Grouping) ([]string, error) {
	out := a.cfg.Output
	var stored []string

	steps := []struct {
		kind  string
		name  string
		write func(io.Writer) error
	}{
		{"csv", out.CSVFile, func(w io.Writer) error { return export.WriteCSV(w, g, out.Encoding) }},
		{"html", out.HTMLFile, func(w io.Writer) error {
			return export.WriteHTML(w, g, export.HTMLOptions{
				Title:       out.Title,
				GeneratedAt: a.clock.Now(),
				Template:    a.cfg.Template,
			})
		}},
		{"xlsx", out.XLSXFile, func(w io.Writer) error { return export.WriteXLSX(w, g) }},
		{"sqlite", out.SQLiteFile, func(w io.Writer) error { return a.writeSQLite(ctx, w, g) }},
	}

	for _, s := range steps {
		if s.name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		var buf bytes.Buffer
		if err := s.write(&buf); err != nil {
			return stored, fmt.Errorf("building %s report: %w", s.kind, err)
		}
		name, err := a.sink.Put(s.name, &buf)
		if err != nil {
			return stored, fmt.Errorf("writing %s report: %w", s.kind, err)
		}
		a.logger.Info("artifact written", "kind", s.kind, "path", name)
		stored = append(stored, name)
	}
	return stored, nil
}

// writeSQLite builds the export database in memory and copies a snapshot of
// it to w.
func (a *App) writeSQLite(ctx context.Context, w io.Writer, g *mfdiff.Grouping) error {
	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	run := database.Run{
		ID:        a.op.ID,
		Template:  a.cfg.Template,
		StartedAt: a.op.StartedAt,
		MaxDepth:  a.cfg.MaxDepth,
	}
	if err := db.WriteGrouping(ctx, run, g); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "mfdiff-sqlite-*")
	if err != nil {
		return fmt.Errorf("creating temp dir for database snapshot: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "report.db")
	if err := db.BackupTo(snapshot); err != nil {
		return err
	}

	f, err := os.Open(snapshot)
	if err != nil {
		return fmt.Errorf("opening database snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying database snapshot: %w", err)
	}
	return nil
}

// InitKeys generates the key pair for the configured encryptor.
func (a *App) InitKeys(passphrase string) error {
	if a.encryptor.Extension() == "" {
		return errors.New("encryption is disabled; set [encryption] type = \"age\" first")
	}
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	a.logger.Info("encryption keys created")
	return nil
}

// DecryptFile opens a sealed artifact and writes the plaintext to dest.
// An empty dest strips the encryptor's extension from src; "-" is stdout.
func (a *App) DecryptFile(src, dest, passphrase string, stdout io.Writer) (string, error) {
	ext := a.encryptor.Extension()
	if ext == "" {
		return "", errors.New("encryption is disabled; nothing to decrypt")
	}
	if dest == "" {
		if !strings.HasSuffix(src, ext) {
			return "", fmt.Errorf("%s does not end in %s; pass an output path", src, ext)
		}
		dest = strings.TrimSuffix(src, ext)
	}

	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking private key: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	var plain bytes.Buffer
	if err := dc.Decrypt(in, &plain); err != nil {
		return "", fmt.Errorf("decrypting %s: %w", src, err)
	}

	stored, err := output.NewFileSink(stdout).Put(dest, &plain)
	if err != nil {
		return "", err
	}
	a.logger.Info("artifact decrypted", "src", src, "dest", stored)
	return stored, nil
}

// Finish records the outcome of the operation.
func (a *App) Finish(err error) {
	a.op.Finish(err, a.clock.Now())
	if err != nil {
		a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
		return
	}
	a.logger.Debug("operation finished", "operation", a.op.Name, "duration", a.op.Duration())
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
