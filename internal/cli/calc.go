package cli

import (
	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

type calcFlags struct {
	mode        string
	miles       float64
	mpg         float64
	milesPerKwh float64
	passengers  int
}

// calcResult is the JSON shape of a calc command.
type calcResult struct {
	Category   string             `json:"category"`
	Mode       string             `json:"mode"`
	Miles      float64            `json:"miles"`
	Passengers int                `json:"passengers"`
	Estimate   emissions.Estimate `json:"estimate"`
	Compact    string             `json:"equivalency,omitempty"`
}

// NewCalcCmd creates the calc command group for one-off emission estimates.
func NewCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Estimate the emissions of a single trip without storing it",
	}
	cmd.AddCommand(
		newCalcSubCmd("fuel", trips.CategoryFuelVehicle, "Estimate a combustion-vehicle trip",
			`  footprint calc fuel --mode gasoline_car --miles 12
  footprint calc fuel --mode fuel_gasoline --mpg 30 --miles 12 --passengers 2`),
		newCalcSubCmd("electric", trips.CategoryElectricVehicle, "Estimate an electric-vehicle trip",
			`  footprint calc electric --mode electric_car --miles 40
  footprint calc electric --mode my_ev --miles-per-kwh 3.5 --miles 40`),
		newCalcSubCmd("transit", trips.CategoryPublicTransport, "Estimate a public-transport trip",
			`  footprint calc transit --mode train --miles 120`),
	)
	return cmd
}

func newCalcSubCmd(use, category, short, example string) *cobra.Command {
	var f calcFlags
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd, category, f)
		},
	}
	cmd.Flags().StringVar(&f.mode, "mode", "", "transport mode, e.g. gasoline_car, bus, electric_car (required)")
	cmd.Flags().Float64Var(&f.miles, "miles", 0, "trip distance in miles (required)")
	cmd.Flags().IntVar(&f.passengers, "passengers", 1, "people sharing the trip")
	switch category {
	case trips.CategoryFuelVehicle:
		cmd.Flags().Float64Var(&f.mpg, "mpg", 0, "fuel economy, used when the mode has no per-mile factor")
	case trips.CategoryElectricVehicle:
		cmd.Flags().Float64Var(&f.milesPerKwh, "miles-per-kwh", 0, "efficiency, used when the mode has no per-mile factor")
	}
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("miles")
	return cmd
}

func runCalc(cmd *cobra.Command, category string, f calcFlags) error {
	ctx := cmd.Context()
	calc := emissions.NewCalculator(config.GetGlobalConfig().Emissions.Table())

	var est emissions.Estimate
	switch category {
	case trips.CategoryFuelVehicle:
		est = calc.EstimateFuelVehicle(f.mode, f.mpg, f.miles, f.passengers)
	case trips.CategoryElectricVehicle:
		est = calc.EstimateElectricVehicle(f.mode, f.milesPerKwh, f.miles, f.passengers)
	default:
		est = calc.EstimatePublicTransport(f.mode, f.miles, f.passengers)
	}

	if !est.Recognized() {
		logger.Warn().Ctx(ctx).
			Str("operation", "calc").
			Str("category", category).
			Str("mode", f.mode).
			Msg("no emission factor for mode, estimate is zero")
	}

	result := calcResult{
		Category:   category,
		Mode:       f.mode,
		Miles:      f.miles,
		Passengers: emissions.Passengers(f.passengers),
		Estimate:   est,
	}
	if eq, err := greenops.ForFootprint(est.Value); err == nil && !eq.IsEmpty {
		result.Compact = eq.CompactText
	}

	return render(cmd, result, []calcResult{result}, func() error {
		precision := config.GetOutputPrecision()
		if !est.Recognized() {
			cmd.Printf("No emission factor for mode %q; supply --mpg or --miles-per-kwh or add one with\n", f.mode)
			cmd.Printf("  footprint config set emissions.per_mile.%s <lbs per mile>\n", f.mode)
			return nil
		}
		cmd.Printf("%s (%s)", greenops.FormatLbs(est.Value, precision), est.Basis)
		if result.Compact != "" {
			cmd.Printf(" %s", result.Compact)
		}
		cmd.Println()
		if result.Passengers > 1 {
			cmd.Printf("Per person, shared by %d passengers.\n", result.Passengers)
		}
		return nil
	})
}
