package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/ledger"
)

var historyUser string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show monthly emission totals",
	Long:  `Authenticates the user and displays the twelve monthly CO2 totals in calendar order.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "username (prompted if empty)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	username, err := login(cmd.Context(), a, p, historyUser)
	if err != nil {
		return err
	}

	h, err := a.Ledger.History(cmd.Context(), username)
	if errors.Is(err, ledger.ErrUserNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No emission history found for %s\n", username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	printHistory(cmd.OutOrStdout(), username, h)
	return nil
}

func printHistory(w io.Writer, username string, h ledger.History) {
	fmt.Fprintf(w, "\nEmission history for %s:\n", username)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-8s  %14s\n", "Month", "kg CO2")
	fmt.Fprintln(w, "----------------------------------------")

	for _, row := range h {
		value := "not recorded"
		if row.Recorded {
			value = humanize.FormatFloat("#,###.##", row.KgCO2)
		}
		fmt.Fprintf(w, "%-8s  %14s\n", row.Month, value)
	}

	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Total: %s kg CO2\n", humanize.FormatFloat("#,###.##", h.Total()))
}
