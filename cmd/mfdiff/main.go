package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mfdiff/internal/app"
	"mfdiff/internal/config"
)

// shutdownSignals cancel the command context.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	verbose    bool
)

// loadConfig reads the config file, falling back to defaults when it does
// not exist yet.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path := defaults.Config(configPath)

	cfg, err := config.Load(path, defaults.BaseDir)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, path, nil
}

// newApp reads the config, applies flag overrides and creates an App.
// The caller must defer a.Close().
func newApp(cmd *cobra.Command, operation string) (*app.App, *config.Config, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}
	cfg.Normalize()

	a, err := app.NewApp(cfg, operation, app.Options{
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Verbose: verbose,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, cfg, nil
}

// applyFlags copies explicitly set flags over config values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("template", &cfg.Template)
	num("max-depth", &cfg.MaxDepth)
	num("workers", &cfg.Workers)
	str("encoding", &cfg.Output.Encoding)
	str("csv-file", &cfg.Output.CSVFile)
	str("html-file", &cfg.Output.HTMLFile)
	str("xlsx-file", &cfg.Output.XLSXFile)
	str("sqlite-file", &cfg.Output.SQLiteFile)
	str("title", &cfg.Output.Title)

	if flags.Lookup("dates") != nil && flags.Changed("dates") {
		raw, _ := flags.GetString("dates")
		cfg.Dates = nil
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Dates = append(cfg.Dates, d)
			}
		}
	}

	if cfg.Template == "" {
		return errors.New("no template: pass -t or set template in the config file")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:          "mfdiff",
	Short:        "Compare dated monthly folders file by file",
	SilenceUsage: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan every period and write the reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := newApp(cmd, "scan")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Scan(cmd.Context())
		a.Finish(err)
		if err != nil {
			return err
		}

		g := res.Grouping
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "%d periods scanned, %d skipped\n", len(g.Periods()), len(g.Skipped()))
		for _, s := range g.Skipped() {
			fmt.Fprintf(w, "  skipped %s: %s not found\n", s.Period.Label(), s.Root)
		}
		fmt.Fprintf(w, "%d files, %d records\n", g.Len(), g.RecordCount())
		for _, name := range res.Artifacts {
			if name != "-" {
				fmt.Fprintf(w, "wrote %s\n", name)
			}
		}
		return nil
	},
}

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the periods a scan would cover",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := newApp(cmd, "periods")
		if err != nil {
			return err
		}
		defer a.Close()

		roots, err := a.Periods()
		a.Finish(err)
		if err != nil {
			return err
		}

		if len(roots) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No periods found.")
			return nil
		}
		for _, r := range roots {
			state := "ok"
			if !r.Exists {
				state = "missing"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Period, state, r.Root)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		path := defaults.Config(configPath)

		cfg := config.NewConfig(defaults.BaseDir)
		if t, _ := cmd.Flags().GetString("template"); t != "" {
			cfg.Template = t
		}
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
		m := &config.Manager{}
		return m.Write(cmd.OutOrStdout(), cfg)
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used to encrypt reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.NewApp(cfg, "keys-init", app.Options{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr(), Verbose: verbose})
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase(cmd, "Passphrase: ")
		if err != nil {
			return err
		}
		if interactive() {
			confirm, err := readPassphrase(cmd, "Repeat passphrase: ")
			if err != nil {
				return err
			}
			if pass != confirm {
				return errors.New("passphrases do not match")
			}
		}

		err = a.InitKeys(pass)
		a.Finish(err)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Public key:  %s\nPrivate key: %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt FILE",
	Short: "Decrypt an encrypted report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.NewApp(cfg, "decrypt", app.Options{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr(), Verbose: verbose})
		if err != nil {
			return err
		}
		defer a.Close()

		out, _ := cmd.Flags().GetString("output")
		pass, err := readPassphrase(cmd, "Passphrase: ")
		if err != nil {
			return err
		}

		dest, err := a.DecryptFile(args[0], out, pass, cmd.OutOrStdout())
		a.Finish(err)
		if err != nil {
			return err
		}
		if dest != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", dest)
		}
		return nil
	},
}

// readPassphrase prompts on the terminal without echo. Without a terminal
// it reads MFDIFF_PASSPHRASE, then one line of stdin.
func readPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	if p := os.Getenv("MFDIFF_PASSPHRASE"); p != "" {
		return p, nil
	}

	if interactive() {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading passphrase from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// interactive reports whether passphrases are typed at a terminal.
func interactive() bool {
	return os.Getenv("MFDIFF_PASSPHRASE") == "" && term.IsTerminal(int(os.Stdin.Fd()))
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("template", "t", "", "Path template with {yyyy}, {mm}, {dd} placeholders")
	cmd.Flags().StringP("dates", "d", "", "Comma-separated periods (YYYY-MM-DD); default discovers them")
	cmd.Flags().Int("max-depth", 2, "Directory levels to search below each period root")
	cmd.Flags().Int("workers", 1, "Period roots scanned concurrently")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $MFDIFF_CONFIG_PATH or ~/.config/mfdiff.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")

	addScanFlags(scanCmd)
	scanCmd.Flags().StringP("encoding", "e", "utf8", "CSV encoding: utf8, shift_jis or utf16le")
	scanCmd.Flags().String("csv-file", "-", "CSV output path, - for stdout, empty to skip")
	scanCmd.Flags().String("html-file", "", "HTML chart report path")
	scanCmd.Flags().String("xlsx-file", "", "Excel workbook path")
	scanCmd.Flags().String("sqlite-file", "", "SQLite export path")
	scanCmd.Flags().String("title", "", "HTML report title")

	addScanFlags(periodsCmd)

	configInitCmd.Flags().StringP("template", "t", "", "Template to store in the new config")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	keysCmd.AddCommand(keysInitCmd)

	decryptCmd.Flags().StringP("output", "o", "", "Output path (default strips the extension, - for stdout)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(decryptCmd)
}
