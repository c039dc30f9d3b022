package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the Anthropic API key in the system keyring",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "Store the Anthropic API key",
	Long: `Store the Anthropic API key used for board summaries.

Without an argument the key is read from a masked prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var apiKey string
		if len(args) == 1 {
			apiKey = args[0]
		} else {
			err := huh.NewInput().
				Title("Anthropic API key").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Run()
			if err != nil {
				return fmt.Errorf("reading API key: %w", err)
			}
		}

		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			return fmt.Errorf("API key must not be empty")
		}
		if err := credential.Set(credential.APIKeyName, apiKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
		return nil
	},
}

var credentialDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored Anthropic API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Delete(credential.APIKeyName); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
		return nil
	},
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd, credentialDeleteCmd)
}
