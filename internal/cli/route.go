package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli/pagination"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
)

// NewRouteCmd creates the route command group. Routes feed the forecaster.
func NewRouteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "route", Short: "Log and list routes used for forecasting"}
	cmd.AddCommand(newRouteLogCmd(), newRouteListCmd())
	return cmd
}

func newRouteLogCmd() *cobra.Command {
	var (
		mode  string
		miles float64
	)
	cmd := &cobra.Command{
		Use:     "log",
		Short:   "Store a route priced with the mode's per-mile factor",
		Example: `  footprint route log --user alice --mode gasoline_car --miles 18`,
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

			r, err := eng.LogRoute(cmd.Context(), user, mode, miles)
			if err != nil {
				return err
			}
			return render(cmd, r, []forecast.Route{r}, func() error {
				cmd.Printf("Logged route %s: %s for %s mi by %s\n", r.ID,
					greenops.FormatLbs(r.Emission, config.GetOutputPrecision()),
					greenops.FormatFloat(r.DistanceMiles, config.GetOutputPrecision()), r.Mode)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "transport mode (required)")
	cmd.Flags().Float64Var(&miles, "miles", 0, "route distance in miles (required)")
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("miles")
	return cmd
}

func newRouteListCmd() *cobra.Command {
	var page pagination.Params
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's routes",
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

			all, err := eng.Routes(cmd.Context(), user)
			if err != nil {
				return err
			}
			routes, meta, err := paginate(page, pagination.RouteSorter(), all)
			if err != nil {
				return err
			}
			return render(cmd, routes, routes, func() error {
				if len(all) == 0 {
					cmd.Printf("No routes recorded for %s.\n", user)
					return nil
				}
				precision := config.GetOutputPrecision()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
				fmt.Fprintln(tw, "TIMESTAMP\tMODE\tMILES\tLBS CO2")
				for _, r := range routes {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Timestamp.Format("2006-01-02 15:04"), r.Mode,
						greenops.FormatFloat(r.DistanceMiles, precision), greenops.FormatFloat(r.Emission, precision))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				printPageFooter(cmd, page, meta)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	pagination.AddFlags(cmd, &page, "sort by time, miles or emissions, e.g. miles:asc")
	return cmd
}
