package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/tui"
)

// NewGoalCmd creates the goal command group.
func NewGoalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "goal", Short: "Manage emission-reduction goals"}
	cmd.AddCommand(newGoalSetCmd())
	return cmd
}

func newGoalSetCmd() *cobra.Command {
	var (
		target      float64
		description string
	)
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Set a per-trip emission reduction target in percent",
		Example: `  footprint goal set --user alice --target 20 --description "bus on weekdays"`,
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

			g, err := eng.SetGoal(cmd.Context(), user, target, description)
			if err != nil {
				return err
			}
			return render(cmd, g, []engine.Goal{g}, func() error {
				cmd.Printf("Goal set for %s: reduce per-trip emissions by %s%%\n",
					user, greenops.FormatFloat(g.TargetReductionPercent, config.GetOutputPrecision()))
				return nil
			})
		},
	}
	addUserFlag(cmd)
	cmd.Flags().Float64Var(&target, "target", 0, "target reduction percent in (0, 100] (required)")
	cmd.Flags().StringVar(&description, "description", "", "goal description")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// NewProgressCmd creates the progress command.
func NewProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Compare per-trip emissions before and after the goal was set",
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

			p, err := eng.TrackProgress(cmd.Context(), user)
			if errors.Is(err, store.ErrNotFound) {
				return errors.New("no goal set; run 'footprint goal set' first")
			}
			if err != nil {
				return err
			}
			return render(cmd, p, []engine.Progress{p}, func() error {
				precision := config.GetOutputPrecision()
				if isTerminal(os.Stdout) {
					cmd.Println(tui.RenderProgress(p, precision))
					return nil
				}
				cmd.Printf("Target:    %s%%\n", greenops.FormatFloat(p.Goal.TargetReductionPercent, precision))
				if !p.HasBaseline {
					cmd.Println("No trips before the goal was set; progress cannot be measured yet.")
					return nil
				}
				cmd.Printf("Baseline:  %s per trip (%d trips)\n", greenops.FormatLbs(p.BaselineAverage, precision), p.BaselineTrips)
				cmd.Printf("Current:   %s per trip (%d trips)\n", greenops.FormatLbs(p.CurrentAverage, precision), p.CurrentTrips)
				cmd.Printf("Reduction: %s%%\n", greenops.FormatFloat(p.ReductionPercent, precision))
				cmd.Printf("Progress:  %s%%\n", greenops.FormatFloat(p.ProgressPercent, precision))
				return nil
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}
