package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/ledger"
)

var importReplace bool

var exportCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Export the ledger as a CSV table",
	Long: `Writes every user's monthly totals as a CSV table with the header
username,Jan,...,Dec. Without a file argument the table goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a CSV ledger table",
	Long: `Reads a CSV table with the header username,Jan,...,Dec and adds its totals
to the stored ledger. Use --replace to overwrite the stored ledger instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "overwrite the stored ledger instead of adding to it")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.Ledger.Snapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	if len(args) == 0 {
		return ledger.WriteCSV(cmd.OutOrStdout(), table)
	}

	// The csv store writes atomically, so reuse it for files
	if err := ledger.NewCSVStore(args[0]).SaveLedger(cmd.Context(), table); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d users to %s\n", len(table), args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var in io.Reader
	if args[0] == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	table, err := ledger.ReadCSV(in)
	if err != nil {
		return err
	}

	if err := a.Ledger.Import(cmd.Context(), table, importReplace); err != nil {
		return fmt.Errorf("importing ledger: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d users from %s\n", len(table), args[0])
	return nil
}
