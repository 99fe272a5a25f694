package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerview/internal/accounts"
	"github.com/cleared-dev/ledgerview/internal/config"
	"github.com/cleared-dev/ledgerview/internal/gitops"
	"github.com/cleared-dev/ledgerview/internal/importer"
	"github.com/cleared-dev/ledgerview/internal/model"
)

func newInitCommand() *cobra.Command {
	var name string
	var base string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgerview dataset",
		Long: "Create the directory layout, a ledgerview.yaml, a sample chart of accounts\n" +
			"and an empty transaction register. With --git the dataset is also committed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, base, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&base, "base", "EGP", "base currency code")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit the new dataset")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, base string, useGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"accounts",
		"transactions",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, base)
	cfg.Git.AutoCommit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return err
	}

	ds := &model.Dataset{
		BaseCurrency: cfg.Currency.Base,
		Accounts:     accounts.SampleChart(cfg.Currency.Base),
		Currencies:   []model.Currency{{Code: cfg.Currency.Base, RateToBase: decimal.NewFromInt(1)}},
	}
	if err := (importer.CSVSource{}).Save(cmd.Context(), dir, ds); err != nil {
		return err
	}

	gitignore := ".env\n*.xlsx\n*.db\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if !useGit {
		fmt.Fprintf(out, "Initialized ledgerview dataset at %s\n", dir)
		return nil
	}

	if !gitops.Available() {
		return fmt.Errorf("--git: git executable not found")
	}
	if err := gitops.Init(cmd.Context(), dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(cmd.Context(), dir, "init: "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledgerview dataset at %s (%s)\n", dir, hash)
	return nil
}
