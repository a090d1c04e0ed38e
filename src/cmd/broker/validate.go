package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored session token with the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := setup()
		if err != nil {
			return err
		}

		defer b.Close()

		result, err := b.Sessions.ValidateToken(cmd.Context())
		if err != nil {
			return err
		}

		printf(cmd, "valid: %t (%s)\n", result.Valid(), result.Outcome)
		return nil
	},
}
