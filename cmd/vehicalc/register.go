package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create a local user account",
	Long: `Creates a user in the local database. Usernames are 4-20 letters and
numbers; passwords need at least 8 characters.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	var username string
	if len(args) == 1 {
		username = args[0]
	} else if username, err = p.Line("Username: "); err != nil {
		return fmt.Errorf("reading username: %w", err)
	}

	password, err := p.Password("Password: ")
	if err != nil {
		return err
	}
	confirm, err := p.Password("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := a.Auth.Register(cmd.Context(), username, password); err != nil {
		return fmt.Errorf("registering %s: %w", username, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s\n", username)
	return nil
}
