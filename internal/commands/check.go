package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerview/internal/accounts"
	"github.com/cleared-dev/ledgerview/internal/journal"
)

func newCheckCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report data-quality problems in the dataset",
		Long: "Check every journal entry and transaction link against the data-quality rules.\n" +
			"Reports recover from these problems silently; check lists them and exits non-zero.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}

			problems := journal.Check(s.ds, accounts.NewService(s.ds.Accounts))
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p.Error())
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problems found", len(problems))
			}
			fmt.Fprintln(out, "no problems found")
			return nil
		},
	}
}
