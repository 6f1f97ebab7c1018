package main

import (
	"github.com/spf13/cobra"
)

func newAccountsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the accounts linked to the merchant",
	}
	cmd.AddCommand(newAccountsListCommand(root))
	return cmd
}

func newAccountsListCommand(root *rootOptions) *cobra.Command {
	var conditions map[string]string
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List linked accounts",
		Example: "  ratapay accounts list --condition email=jv1@mail.com",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.newClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			env, err := client.ListAccounts(cmd.Context(), conditions)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringToStringVar(&conditions, "condition", nil, "filter as key=value, repeatable")
	return cmd
}
