package main

import (
	"github.com/spf13/cobra"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the stored credentials, optionally saving new ones first",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := cmd.Flags().GetString("username")
		if err != nil {
			return err
		}

		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return err
		}

		b, err := setup()
		if err != nil {
			return err
		}

		defer b.Close()

		ctx := cmd.Context()

		var token eventmodels.SessionToken
		if username != "" || apiKey != "" {
			credential := eventmodels.Credential{Username: username, APIKey: apiKey}
			if err := b.Sessions.SaveCredentials(ctx, credential); err != nil {
				return err
			}

			token, err = b.Sessions.Authenticate(ctx, credential)
		} else {
			token, err = b.Sessions.AuthenticateStored(ctx)
		}

		if err != nil {
			return err
		}

		printf(cmd, "Authenticated. Token: %s\n", token.Prefix())
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "platform username to save before logging in")
	loginCmd.Flags().String("api-key", "", "platform API key to save before logging in")
}
