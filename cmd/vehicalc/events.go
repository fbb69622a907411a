package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var eventsUser string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List individual recorded trips",
	Long:  `Authenticates the user and lists every recorded emission event, newest first.`,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsUser, "user", "u", "", "username (prompted if empty)")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	username, err := login(cmd.Context(), a, p, eventsUser)
	if err != nil {
		return err
	}

	events, err := a.DB.ListEvents(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No events found for %s\n", username)
		return nil
	}

	fmt.Fprintf(out, "%-14s  %-5s  %-10s  %-8s  %10s  %10s\n", "Recorded", "Month", "Vehicle", "Formula", "km", "kg CO2")
	fmt.Fprintln(out, "--------------------------------------------------------------------")
	for _, ev := range events {
		fmt.Fprintf(out, "%-14s  %-5s  %-10s  %-8s  %10.2f  %10.2f\n",
			humanize.Time(ev.CreatedAt), ev.Month, ev.Vehicle, ev.Strategy, ev.Distance, ev.KgCO2)
	}
	fmt.Fprintf(out, "%d events\n", len(events))
	return nil
}
