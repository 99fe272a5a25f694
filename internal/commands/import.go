package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerview/internal/config"
	"github.com/cleared-dev/ledgerview/internal/gitops"
	"github.com/cleared-dev/ledgerview/internal/importer"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/store"
)

func newImportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Merge transaction exports from import/ into the register",
		Long: "Read every CSV file in import/, merge its transactions into\n" +
			"transactions/transactions.csv by id and move the file to import/processed/.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.configure(cmd)
			if err != nil {
				return err
			}

			files, err := importer.Scan(s.repo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "nothing to import")
				return nil
			}

			var added, merged int
			for _, fi := range files {
				txns, err := readExport(fi.Path)
				if err != nil {
					return err
				}
				n, err := importer.MergeTransactions(s.repo, txns)
				if err != nil {
					return err
				}
				if err := importer.MarkProcessed(s.repo, fi.Name); err != nil {
					return err
				}
				s.logger.Debug("export merged", "file", fi.Name, "transactions", len(txns), "new", n)
				added += n
				merged += len(txns)
			}
			fmt.Fprintf(out, "Imported %d files: %d transactions, %d new\n", len(files), merged, added)

			if !s.cfg.Git.AutoCommit || !gitops.IsRepo(s.repo) {
				return nil
			}
			author := gitops.Author{Name: s.cfg.Git.AuthorName, Email: s.cfg.Git.AuthorEmail}
			hash, err := gitops.CommitAll(cmd.Context(), s.repo, fmt.Sprintf("import: %d transactions", merged), author)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(out, "Committed %s\n", hash)
			}
			return nil
		},
	}
}

func readExport(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	txns, err := importer.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return txns, nil
}

func newImportSQLiteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import-sqlite <database>",
		Short: "Copy the CSV dataset into a SQLite database",
		Long: "Load the CSV dataset from the repo and write it to a SQLite database,\n" +
			"replacing its contents. Point source.format and source.path at the file to report from it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.configure(cmd)
			if err != nil {
				return err
			}

			ds, err := importer.CSVSource{}.Load(cmd.Context(), s.repo)
			if err != nil {
				return err
			}
			if ds.BaseCurrency == "" {
				ds.BaseCurrency = s.cfg.Currency.Base
			}

			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(s.repo, path)
			}
			conn, err := store.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Save(cmd.Context(), ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d accounts, %d entries, %d transactions to %s\n",
				len(ds.Accounts), len(ds.Entries), len(ds.Transactions), path)
			return nil
		},
	}
}

func newExportCSVCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv <directory>",
		Short: "Copy the configured dataset into a new CSV repo",
		Long: "Load the dataset from the configured source and write it as a CSV repo:\n" +
			"a ledgerview.yaml, the chart of accounts, monthly journal files,\n" +
			"the transaction register and currencies.csv. The directory must not hold a dataset yet.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}

			dir := args[0]
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(s.repo, dir)
			}
			cfgPath := filepath.Join(dir, config.FileName)
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("%s already exists in %s", config.FileName, dir)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}

			if err := (importer.CSVSource{}).Save(cmd.Context(), dir, s.ds); err != nil {
				return err
			}
			cfg := *s.cfg
			cfg.Source = config.SourceConfig{Format: "csv"}
			if err := config.Save(cfgPath, &cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d accounts, %d entries, %d transactions to %s\n",
				len(s.ds.Accounts), len(s.ds.Entries), len(s.ds.Transactions), dir)
			return nil
		},
	}
}
