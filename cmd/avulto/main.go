package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jward/avulto"
	"github.com/jward/avulto/scripts"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.root.Execute(); err != nil {
		if !app.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// app is one CLI invocation: the command tree, its resolved settings and
// the writers commands print to.
type app struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *Config
	logger     *slog.Logger

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{stdout: stdout, stderr: stderr}
	a.root = &cobra.Command{
		Use:           "avulto",
		Short:         "Inspect the object tree and proc bodies of a DM program",
		Long:          "Avulto loads a DM program dump into a SQLite database and answers type, var and proc queries against it. Proc bodies can be walked directly or with Risor visitor scripts.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		// No Run: prints help by default.
	}
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)

	pf := a.root.PersistentFlags()
	pf.String("db", "", "database path (default: .avulto/avulto.db relative to repo root)")
	pf.String("format", "json", "output format: json|text")
	pf.StringVar(&a.configPath, "config", "", "config file (default: .avulto.yaml in the working or home directory)")
	pf.Bool("verbose", false, "log debug output to stderr")
	pf.Bool("no-color", false, "disable colored status output")
	pf.String("scripts-dir", "", "load visitor scripts from disk path instead of embedded")

	a.root.AddCommand(
		a.loadCmd(),
		a.infoCmd(),
		a.typesCmd(),
		a.varsCmd(),
		a.procsCmd(),
		a.declsCmd(),
		a.walkCmd(),
		a.runCmd(),
		a.pathCmd(),
	)
	return a
}

// setup resolves flags, config file and environment into a.cfg.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := validateFormat(cfg.Format); err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.NoColor {
		color.NoColor = true
	}
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// openEngine opens the Engine on the resolved database path. With
// mustExist set, a missing database is an error instead of a fresh store.
func (a *app) openEngine(mustExist bool) (*avulto.Engine, string, error) {
	dbPath, err := a.dbPath()
	if err != nil {
		return nil, "", err
	}
	if mustExist {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, "", fmt.Errorf("database not found: %s (run 'avulto load' first)", dbPath)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	opts := []avulto.Option{avulto.WithLogger(a.logger)}
	// Script source: --scripts-dir overrides embedded FS.
	if a.cfg.ScriptsDir != "" {
		opts = append(opts, avulto.WithScriptsDir(a.cfg.ScriptsDir))
	} else {
		opts = append(opts, avulto.WithScriptsFS(scripts.FS))
	}

	e, err := avulto.New(dbPath, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("creating engine: %w", err)
	}
	return e, dbPath, nil
}

// dbPath returns the database path from --db / config, or the default
// under the repository root.
func (a *app) dbPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	return resolveDBPath(repoRoot, a.cfg.DB), nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns flagDB resolved against repoRoot, or the default.
func resolveDBPath(repoRoot, flagDB string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".avulto", "avulto.db")
}
