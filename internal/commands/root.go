package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerview/internal/buildinfo"
	"github.com/cleared-dev/ledgerview/internal/config"
	"github.com/cleared-dev/ledgerview/internal/importer"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/report"
)

// globalFlags are shared by every command that reads a dataset.
type globalFlags struct {
	repo   string
	config string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "ledgerview",
		Short:   "Trial balance, ledgers, aging and income statements for travel agency books",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.repo, "repo", ".", "dataset repository directory")
	rootCmd.PersistentFlags().StringVar(&g.config, "config", "", "config file (default <repo>/"+config.FileName+")")

	rootCmd.AddCommand(
		newInitCommand(),
		newTrialBalanceCommand(g),
		newLedgerCommand(g),
		newAgingCommand(g),
		newIncomeCommand(g),
		newCheckCommand(g),
		newImportCommand(g),
		newImportSQLiteCommand(g),
		newExportCSVCommand(g),
	)

	return rootCmd
}

// session is a loaded dataset plus everything configured around it.
type session struct {
	repo   string
	cfg    *config.Config
	logger *slog.Logger
	ds     *model.Dataset
}

// configure resolves the repo, loads .env and the config file, and builds the
// logger. It does not read the dataset.
func (g *globalFlags) configure(cmd *cobra.Command) (*session, error) {
	repo, err := filepath.Abs(g.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := config.LoadEnv(repo); err != nil {
		return nil, err
	}

	path := g.config
	if path == "" {
		path = filepath.Join(repo, config.FileName)
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s in %s (run ledgerview init): %w", filepath.Base(path), filepath.Dir(path), err)
	}
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, err
	}
	return &session{repo: repo, cfg: cfg, logger: logger}, nil
}

// open configures the session and loads the dataset from the configured source.
func (g *globalFlags) open(cmd *cobra.Command) (*session, error) {
	s, err := g.configure(cmd)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ds, err := importer.DefaultRegistry().Load(cmd.Context(), s.cfg.Source.Format, s.cfg.SourcePath(s.repo))
	if err != nil {
		return nil, err
	}
	if ds.BaseCurrency == "" {
		ds.BaseCurrency = s.cfg.Currency.Base
	}
	s.ds = ds
	s.logger.Debug("dataset loaded",
		"source", s.cfg.Source.Format,
		"accounts", len(ds.Accounts),
		"entries", len(ds.Entries),
		"transactions", len(ds.Transactions),
		"elapsed", time.Since(started),
	)
	return s, nil
}

// engine returns a report engine over the session dataset. raw turns the
// reconciliation filter off for this run.
func (s *session) engine(raw bool) *report.Engine {
	opts := []report.Option{
		report.WithLogger(s.logger),
		report.WithRules(s.cfg.Classification),
	}
	if raw || !s.cfg.Reconciliation.Enabled {
		opts = append(opts, report.WithoutReconciliation())
	}
	return report.NewEngine(s.ds, opts...)
}

func (s *session) warn(msg string, err error) {
	s.logger.Warn(msg, "error", err)
}
