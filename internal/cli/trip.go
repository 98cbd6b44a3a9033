package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli/pagination"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// NewTripCmd creates the trip command group.
func NewTripCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "trip", Short: "Log and list trips"}
	cmd.AddCommand(newTripLogCmd(), newTripListCmd())
	return cmd
}

func newTripLogCmd() *cobra.Command {
	var (
		in   engine.TripInput
		when string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Estimate and store a trip",
		Example: `  footprint trip log --user alice --category fuel_vehicle --mode gasoline_car --miles 12
  footprint trip log --user alice --category electric_vehicle --mode my_ev --miles-per-kwh 3.8 --miles 30
  footprint trip log --user alice --category public_transport --mode train --miles 45 --at 2026-03-02T08:15:00Z`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := userFlag(cmd)
			if err != nil {
				return err
			}
			in.UserID = user
			if when != "" {
				ts, parseErr := time.Parse(time.RFC3339, when)
				if parseErr != nil {
					return fmt.Errorf("%w: --at must be RFC3339: %w", engine.ErrInvalidInput, parseErr)
				}
				in.Timestamp = ts.UTC()
			}
			return runTripLog(cmd, in)
		},
	}
	addUserFlag(cmd)
	cmd.Flags().StringVar(&in.Category, "category", trips.CategoryFuelVehicle,
		"fuel_vehicle, electric_vehicle or public_transport")
	cmd.Flags().StringVar(&in.Mode, "mode", "", "transport mode (required)")
	cmd.Flags().Float64Var(&in.Miles, "miles", 0, "trip distance in miles (required)")
	cmd.Flags().Float64Var(&in.MPG, "mpg", 0, "fuel economy for modes without a per-mile factor")
	cmd.Flags().Float64Var(&in.MilesPerKwh, "miles-per-kwh", 0, "EV efficiency for modes without a per-mile factor")
	cmd.Flags().IntVar(&in.Passengers, "passengers", 1, "people sharing the trip")
	cmd.Flags().StringVar(&when, "at", "", "trip time in RFC3339 (default now)")
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("miles")
	return cmd
}

func runTripLog(cmd *cobra.Command, in engine.TripInput) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	rec, err := eng.LogTrip(cmd.Context(), in)
	if err != nil {
		return err
	}
	return render(cmd, rec, []trips.Record{rec}, func() error {
		cmd.Printf("Logged trip %s: %s for %s mi by %s\n", rec.ID,
			greenops.FormatLbs(rec.EmissionValue, config.GetOutputPrecision()),
			greenops.FormatFloat(rec.DistanceMiles, config.GetOutputPrecision()), rec.Mode)
		return nil
	})
}

func newTripListCmd() *cobra.Command {
	var page pagination.Params
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's trips",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := userFlag(cmd)
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			history, err := eng.Trips(cmd.Context(), user)
			if err != nil {
				return err
			}
			rows, meta, err := paginate(page, pagination.TripSorter(), history)
			if err != nil {
				return err
			}
			return render(cmd, rows, rows, func() error {
				if err := renderTripTable(cmd, user, rows, history); err != nil {
					return err
				}
				printPageFooter(cmd, page, meta)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	pagination.AddFlags(cmd, &page, "sort by time, miles, emissions or mode, e.g. emissions:desc")
	return cmd
}

// renderTripTable prints rows and the totals of the full history.
func renderTripTable(cmd *cobra.Command, user string, rows, history []trips.Record) error {
	if len(history) == 0 {
		cmd.Printf("No trips recorded for %s.\n", user)
		return nil
	}
	precision := config.GetOutputPrecision()
	features := trips.Aggregate(history)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tCATEGORY\tMODE\tMILES\tPASSENGERS\tLBS CO2")
	fmt.Fprintln(tw, "---------\t--------\t----\t-----\t----------\t-------")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Category,
			r.Mode,
			greenops.FormatFloat(r.DistanceMiles, precision),
			r.Passengers,
			greenops.FormatFloat(r.EmissionValue, precision),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nTotal: %s over %d transport trips (mostly %s)\n",
		greenops.FormatLbs(features.TotalEmissions, precision), features.Trips, features.DominantCategory)
	return nil
}
