package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/app"
	"github.com/jgoulah/vehicalc/internal/emission"
	"github.com/jgoulah/vehicalc/pkg/models"
)

var (
	recordUser       string
	recordVehicle    string
	recordFuel       string
	recordEfficiency string
	recordDistance   string
	recordMonth      string
	recordUrban      bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a trip and add its emission to the monthly total",
	Long: `Authenticates the user, calculates the CO2 emitted by one trip and adds it
to the user's total for the month.

With --fuel and --efficiency the fuel-based formula is used (gasoline 2.31,
diesel 2.68 kg CO2 per unit of fuel). Otherwise distance times 0.21 kg/km,
inflated by 20% when --urban is set.`,
	Example: `  vehicalc record --user alice --vehicle car --fuel gasoline --efficiency 15 --distance 120 --month Mar
  vehicalc record --user alice --vehicle motorcycle --distance 40 --urban`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordUser, "user", "u", "", "username (prompted if empty)")
	recordCmd.Flags().StringVar(&recordVehicle, "vehicle", "car", "vehicle type (car, motorcycle, van)")
	recordCmd.Flags().StringVar(&recordFuel, "fuel", "", "fuel type (gasoline, diesel)")
	recordCmd.Flags().StringVar(&recordEfficiency, "efficiency", "", "fuel efficiency in distance per unit of fuel")
	recordCmd.Flags().StringVar(&recordDistance, "distance", "", "distance travelled in km")
	recordCmd.Flags().StringVar(&recordMonth, "month", "", "month code Jan..Dec (default: current month)")
	recordCmd.Flags().BoolVar(&recordUrban, "urban", false, "apply the urban stop-and-go adjustment (default from config)")
	_ = recordCmd.MarkFlagRequired("distance")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	username, err := login(cmd.Context(), a, p, recordUser)
	if err != nil {
		return err
	}

	urban := cfg.UrbanMode
	if cmd.Flags().Changed("urban") {
		urban = recordUrban
	}

	month := recordMonth
	if month == "" {
		month = currentMonth(time.Now())
	}

	raw := emission.RawInput{
		Username:       username,
		Vehicle:        recordVehicle,
		Fuel:           recordFuel,
		FuelEfficiency: recordEfficiency,
		Distance:       recordDistance,
		Month:          month,
	}
	ev, err := a.Record(cmd.Context(), raw, urban)
	if err != nil {
		return err
	}

	printEvent(cmd.OutOrStdout(), ev)
	return nil
}

// login prompts for missing credentials and authenticates them
func login(ctx context.Context, a *app.App, p *prompter, username string) (string, error) {
	var err error
	if username == "" {
		if username, err = p.Line("Username: "); err != nil {
			return "", fmt.Errorf("reading username: %w", err)
		}
	}
	password, err := p.Password("Password: ")
	if err != nil {
		return "", err
	}

	ok, err := a.Auth.Authenticate(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("invalid username or password")
	}
	return username, nil
}

func currentMonth(now time.Time) string {
	return models.Month(now.Month() - 1).String()
}

func printEvent(w io.Writer, ev models.EmissionEvent) {
	fmt.Fprintf(w, "✓ Recorded %s kg CO2 for %s in %s (%s formula, %s km by %s)\n",
		humanize.FormatFloat("#,###.##", ev.KgCO2), ev.Username, ev.Month, ev.Strategy,
		humanize.FormatFloat("#,###.##", ev.Distance), ev.Vehicle)
}
