package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerview/internal/config"
	"github.com/cleared-dev/ledgerview/internal/export"
	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/report"
	"github.com/cleared-dev/ledgerview/internal/runlog"
)

// reportFlags are the flags every report command takes.
type reportFlags struct {
	from string
	to   string
	xlsx string
	raw  bool
}

func (f *reportFlags) register(cmd *cobra.Command, window bool) {
	if window {
		cmd.Flags().StringVar(&f.from, "from", "", "first day of the period, YYYY-MM-DD (default January 1 of the --to year)")
	}
	cmd.Flags().StringVar(&f.to, "to", "", "last day included, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "also write the report to this XLSX file")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "count every posted line, skipping the reconciliation filter")
}

// window resolves --from and --to against now.
func (f *reportFlags) window(now time.Time) (time.Time, time.Time, error) {
	to := id.Day(now)
	if f.to != "" {
		d, err := id.ParseDate(f.to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
		to = d
	}
	from := time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if f.from != "" {
		d, err := id.ParseDate(f.from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
		from = d
	}
	return from, to, nil
}

// run records one report run in the run log around fn. fn returns the
// rendered table, the number of data rows and the number of data problems.
func (s *session) run(cmd *cobra.Command, name string, f *reportFlags, from, to time.Time, account string,
	fn func() (export.Table, int, int, error),
) error {
	entry := runlog.New(name, time.Now())
	entry.Source = s.cfg.Source.Format
	if !from.IsZero() {
		entry.From = from.Format(id.DateFormat)
	}
	entry.To = to.Format(id.DateFormat)
	entry.Account = account

	table, rows, problems, err := fn()
	if err == nil {
		err = s.emit(cmd, f, table)
	}
	entry.Finish(time.Now(), rows, problems, err)
	if logErr := runlog.Append(s.repo, entry); logErr != nil {
		s.warn("failed to write report log", logErr)
	}
	if problems > 0 {
		s.logger.Info("report recovered from data problems; run ledgerview check for details",
			"report", name, "problems", problems, "run_id", entry.RunID)
	}
	return err
}

// emit prints table and, when --xlsx was given, writes the workbook.
func (s *session) emit(cmd *cobra.Command, f *reportFlags, table export.Table) error {
	if err := export.WriteText(cmd.OutOrStdout(), table); err != nil {
		return err
	}
	if f.xlsx == "" {
		return nil
	}
	if err := export.WriteXLSX(f.xlsx, table); err != nil {
		return err
	}
	s.logger.Debug("workbook written", "path", f.xlsx)
	return nil
}

func newTrialBalanceCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:     "trial-balance",
		Aliases: []string{"tb"},
		Short:   "Print the trial balance for a period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			from, to, err := f.window(time.Now())
			if err != nil {
				return err
			}
			return s.run(cmd, "trial_balance", f, from, to, "", func() (export.Table, int, int, error) {
				tb, err := s.engine(f.raw).TrialBalance(from, to)
				if err != nil {
					return export.Table{}, 0, 0, err
				}
				return export.TrialBalanceTable(tb), len(tb.Rows), tb.Diagnostics.Problems(), nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newLedgerCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "ledger <type:id>",
		Short: "Print the statement of one account",
		Long: "Print every line posted to one account, with a running balance in the\n" +
			"account's own currency. The reconciliation filter never hides statement lines.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := id.ParseAccountKey(args[0])
			if err != nil {
				return err
			}
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			from, to, err := f.window(time.Now())
			if err != nil {
				return err
			}
			return s.run(cmd, "account_ledger", f, from, to, key.String(), func() (export.Table, int, int, error) {
				st, err := s.engine(f.raw).AccountLedger(key, from, to)
				if err != nil {
					return export.Table{}, 0, 0, err
				}
				return export.StatementTable(st.Statement), len(st.Entries), st.Diagnostics.Problems(), nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newAgingCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "aging [type:id]",
		Short: "Age customer and supplier balances",
		Long: "Age one customer or supplier balance, or every customer and supplier with\n" +
			"activity when no account is given. Buckets are 0-30, 31-60, 61-90 and over 90 days.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key model.AccountKey
			if len(args) == 1 {
				k, err := id.ParseAccountKey(args[0])
				if err != nil {
					return err
				}
				key = k
			}
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			_, to, err := f.window(time.Now())
			if err != nil {
				return err
			}

			account := ""
			if key.ID != "" {
				account = key.String()
			}
			return s.run(cmd, "aging", f, time.Time{}, to, account, func() (export.Table, int, int, error) {
				e := s.engine(f.raw)
				var (
					ar  report.AgingReport
					err error
				)
				if key.ID != "" {
					ar, err = e.Aging(key, to)
				} else {
					ar, err = e.AgingSchedule(cmd.Context(), to)
				}
				if err != nil {
					return export.Table{}, 0, 0, err
				}
				return export.AgingTable(ar.Rows), len(ar.Rows), ar.Diagnostics.Problems(), nil
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newIncomeCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:     "income",
		Aliases: []string{"pl"},
		Short:   "Print the income statement for a period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			from, to, err := f.window(time.Now())
			if err != nil {
				return err
			}
			return s.run(cmd, "income_statement", f, from, to, "", func() (export.Table, int, int, error) {
				is, err := s.engine(f.raw).IncomeStatement(from, to)
				if err != nil {
					return export.Table{}, 0, 0, err
				}
				if is.Unclassified > 0 {
					s.logger.Info("postings fell back to a default income bucket",
						"count", is.Unclassified, "hint", "extend classification in "+config.FileName)
				}
				return export.IncomeTable(is), len(is.Lines), is.Diagnostics.Problems(), nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}
