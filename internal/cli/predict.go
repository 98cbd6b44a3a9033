package cli

import (
	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/tui"
)

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast the emissions of the user's next trip from route history",
		Long: `With fewer than three routes the forecast is the mean route emission; with
more, emission is regressed on distance and evaluated at the mean distance.`,
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

			p, err := eng.PredictFutureEmissions(cmd.Context(), user)
			if err != nil {
				return err
			}
			return render(cmd, p, []forecast.Prediction{p}, func() error {
				cmd.Printf("Predicted next trip for %s: %s\n", user,
					tui.RenderPrediction(p, config.GetOutputPrecision()))
				return nil
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}
