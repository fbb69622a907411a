package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/app"
	"github.com/jgoulah/vehicalc/internal/auth"
	"github.com/jgoulah/vehicalc/internal/emission"
	"github.com/jgoulah/vehicalc/internal/ledger"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu for logging in and recording trips",
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := &shell{
		app:   a,
		p:     newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:   cmd.OutOrStdout(),
		urban: cfg.UrbanMode,
		now:   time.Now,
	}
	return s.run(cmd.Context())
}

// shell is the prompt-driven menu. Validation failures are printed and
// the menu continues; only I/O errors end it
type shell struct {
	app   *app.App
	p     *prompter
	out   io.Writer
	urban bool
	now   func() time.Time
	user  string
}

func (s *shell) run(ctx context.Context) error {
	for {
		var err error
		var quit bool
		if s.user == "" {
			quit, err = s.mainMenu(ctx)
		} else {
			err = s.userMenu(ctx)
		}
		if errors.Is(err, io.EOF) || quit {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *shell) mainMenu(ctx context.Context) (bool, error) {
	fmt.Fprintln(s.out, "\n=== VehiCalc ===")
	fmt.Fprintln(s.out, "1. Login")
	fmt.Fprintln(s.out, "2. Register")
	fmt.Fprintln(s.out, "3. Quit")

	choice, err := s.p.Line("Choose an option: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, s.login(ctx)
	case "2":
		return false, s.register(ctx)
	case "3", "q", "quit":
		return true, nil
	default:
		fmt.Fprintln(s.out, "Invalid option")
		return false, nil
	}
}

func (s *shell) userMenu(ctx context.Context) error {
	fmt.Fprintf(s.out, "\n=== Logged in as %s ===\n", s.user)
	fmt.Fprintln(s.out, "1. Record trip")
	fmt.Fprintln(s.out, "2. View history")
	fmt.Fprintln(s.out, "3. Logout")

	choice, err := s.p.Line("Choose an option: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return s.record(ctx)
	case "2":
		return s.history(ctx)
	case "3":
		fmt.Fprintf(s.out, "Logged out %s\n", s.user)
		s.user = ""
	default:
		fmt.Fprintln(s.out, "Invalid option")
	}
	return nil
}

func (s *shell) login(ctx context.Context) error {
	username, err := s.p.Line("Username: ")
	if err != nil {
		return err
	}
	password, err := s.p.Password("Password: ")
	if err != nil {
		return err
	}

	ok, err := s.app.Auth.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Invalid username or password")
		return nil
	}
	s.user = strings.TrimSpace(username)
	fmt.Fprintf(s.out, "Welcome, %s!\n", s.user)
	return nil
}

func (s *shell) register(ctx context.Context) error {
	username, err := s.p.Line("Choose a username: ")
	if err != nil {
		return err
	}
	password, err := s.p.Password("Choose a password: ")
	if err != nil {
		return err
	}

	err = s.app.Auth.Register(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrInvalidPassword):
		fmt.Fprintf(s.out, "Registration failed: %v\n", err)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(s.out, "Registration successful, you can now log in")
	return nil
}

func (s *shell) record(ctx context.Context) error {
	raw := emission.RawInput{Username: s.user}
	var err error

	if raw.Vehicle, err = s.p.Line("Vehicle type (car, motorcycle, van): "); err != nil {
		return err
	}
	if raw.Fuel, err = s.p.Line("Fuel type (gasoline, diesel, or empty): "); err != nil {
		return err
	}
	if raw.Fuel != "" {
		if raw.FuelEfficiency, err = s.p.Line("Fuel efficiency (km per unit): "); err != nil {
			return err
		}
	}
	if raw.Distance, err = s.p.Line("Distance travelled (km): "); err != nil {
		return err
	}
	def := currentMonth(s.now())
	if raw.Month, err = s.p.Line(fmt.Sprintf("Month [%s]: ", def)); err != nil {
		return err
	}
	if raw.Month == "" {
		raw.Month = def
	}

	urban := s.urban
	if raw.Fuel == "" {
		answer, err := s.p.Line("Mostly urban driving? [y/N]: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			urban = true
		case "n", "no":
			urban = false
		}
	}

	ev, err := s.app.Record(ctx, raw, urban)
	var verr *emission.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(s.out, "Invalid input: %v\n", verr)
		return nil
	}
	if err != nil {
		fmt.Fprintf(s.out, "Could not record emission: %v\n", err)
		return nil
	}

	printEvent(s.out, ev)
	return nil
}

func (s *shell) history(ctx context.Context) error {
	h, err := s.app.Ledger.History(ctx, s.user)
	if errors.Is(err, ledger.ErrUserNotFound) {
		fmt.Fprintln(s.out, "No emission history yet")
		return nil
	}
	if err != nil {
		fmt.Fprintf(s.out, "Could not load history: %v\n", err)
		return nil
	}
	printHistory(s.out, s.user, h)
	return nil
}
