package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/publisher"
)

var (
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish emissions to an MQTT broker",
	Long: `Publishes unpublished emission events and each affected user's monthly
totals to the MQTT broker configured under mqtt: in the config file.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "publish totals for every user, even without new events")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "limit number of events to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pub, err := publisher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	ctx := cmd.Context()
	events, err := a.DB.ListUnpublishedEvents(ctx)
	if err != nil {
		return fmt.Errorf("listing unpublished events: %w", err)
	}

	// Apply limit if specified
	if publishLimit > 0 && len(events) > publishLimit {
		events = events[:publishLimit]
		fmt.Fprintf(out, "Limiting to %d events (--limit flag)\n", publishLimit)
	}

	touched := map[string]bool{}
	published := 0
	for i, ev := range events {
		fmt.Fprintf(out, "[%d/%d] Publishing %s %s (%.2f kg CO2)... ", i+1, len(events), ev.Username, ev.Month, ev.KgCO2)
		if err := pub.PublishEvent(ev); err != nil {
			fmt.Fprintf(out, "FAILED: %v\n", err)
			continue
		}

		if err := a.DB.MarkPublished(ctx, ev.ID); err != nil {
			fmt.Fprintf(out, "✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Fprintf(out, "✓\n")
		}
		touched[ev.Username] = true
		published++
	}

	table, err := a.Ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	totalsSent := 0
	for _, username := range table.Usernames() {
		if !publishAll && !touched[username] {
			continue
		}
		if err := pub.PublishTotals(username, table[username]); err != nil {
			return fmt.Errorf("publishing totals for %s: %w", username, err)
		}
		totalsSent++
	}

	fmt.Fprintf(out, "\nEvents published: %d/%d, users with totals published: %d\n", published, len(events), totalsSent)
	return nil
}
