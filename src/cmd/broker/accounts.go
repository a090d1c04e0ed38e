package main

import (
	"github.com/spf13/cobra"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/eventservices"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Sync accounts from the platform and print the cached snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}

		csvPath, err := cmd.Flags().GetString("csv")
		if err != nil {
			return err
		}

		b, err := setup()
		if err != nil {
			return err
		}

		defer b.Close()

		ctx := cmd.Context()

		if _, err := b.Sync.Sync(ctx, !all); err != nil {
			return err
		}

		accounts, err := b.Cache.Get(ctx, eventmodels.AccountSnapshot{})
		if err != nil {
			return err
		}

		eventservices.RenderAccountsTable(cmd.OutOrStdout(), accounts)

		if csvPath != "" {
			if err := eventservices.ExportAccountsCSV(csvPath, accounts); err != nil {
				return err
			}

			printf(cmd, "CSV file written to: %s\n", csvPath)
		}

		return nil
	},
}

func init() {
	accountsCmd.Flags().Bool("all", false, "include inactive accounts")
	accountsCmd.Flags().String("csv", "", "also write the snapshot to this csv file")
}
