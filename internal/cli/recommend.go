package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli/pagination"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/tui"
)

// NewRecommendCmd creates the recommend command. Without a subcommand it runs
// the full pipeline and replaces the user's stored recommendations.
func NewRecommendCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Generate, refine and store reduction recommendations",
		Long: `Aggregates the user's trips, forecasts the next trip from route history,
generates reduction strategies, re-ranks them with the feedback of the user and
of users with similar travel, and stores the result.

In an interactive terminal --interactive opens a browser where recommendations
can be accepted (a) or rejected (r).`,
		Example: `  footprint recommend --user alice
  footprint recommend --user alice --output json
  footprint recommend --user alice --interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := userFlag(cmd)
			if err != nil {
				return err
			}
			return runRecommend(cmd, user, interactive)
		},
	}
	addUserFlag(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse and rate recommendations in a TUI")

	cmd.AddCommand(
		newRecommendGenerateCmd(),
		newRecommendRefineCmd(),
		newRecommendFeedbackCmd(),
		newRecommendHistoryCmd(),
	)
	return cmd
}

func runRecommend(cmd *cobra.Command, user string, interactive bool) error {
	ctx := cmd.Context()
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	report, err := eng.Recommend(ctx, user)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	switch format {
	case config.FormatJSON:
		return renderJSON(cmd, report)
	case config.FormatNDJSON:
		return renderNDJSON(cmd, report.Recommendations)
	}

	switch tui.DetectOutputMode(interactive, os.Getenv("NO_COLOR") != "", isTerminal(os.Stdout)) {
	case tui.OutputModeInteractive:
		return runInteractiveRecommendations(ctx, eng, report.Recommendations)
	case tui.OutputModeStyled:
		cmd.Println(tui.RenderReport(report, config.GetOutputPrecision()))
		cmd.Println()
		return renderRecommendationTable(cmd.OutOrStdout(), report.Recommendations)
	default:
		renderReportPlain(cmd, report)
		return renderRecommendationTable(cmd.OutOrStdout(), report.Recommendations)
	}
}

// runInteractiveRecommendations launches the recommendations browser with
// feedback wired to the engine.
func runInteractiveRecommendations(ctx context.Context, eng *engine.Engine, recs []recommend.Recommendation) error {
	model := tui.NewRecommendationsViewModel(ctx, recs)
	model.SetFeedbackFunc(func(ctx context.Context, rec recommend.Recommendation, accepted bool) error {
		_, err := eng.RecordFeedback(ctx, engine.FeedbackInput{
			UserID:           rec.UserID,
			RecommendationID: rec.ID,
			Accepted:         &accepted,
		})
		return err
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive recommendations TUI: %w", err)
	}
	return nil
}

func renderReportPlain(cmd *cobra.Command, r engine.Report) {
	precision := config.GetOutputPrecision()
	cmd.Printf("User:       %s\n", r.UserID)
	cmd.Printf("Total:      %s over %d trips (mostly %s)\n",
		greenops.FormatLbs(r.Features.TotalEmissions, precision), r.Features.Trips, r.Features.DominantCategory)
	cmd.Printf("Next trip:  %s\n", tui.RenderPrediction(r.Prediction, precision))
	if !r.Equivalency.IsEmpty && r.Equivalency.DisplayText != "" {
		cmd.Printf("            %s\n", r.Equivalency.DisplayText)
	}
	cmd.Println()
}

func renderRecommendationTable(w io.Writer, recs []recommend.Recommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations: emissions are already low.")
		return err
	}
	precision := config.GetOutputPrecision()
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTRATEGY\tLEVEL\tSAVINGS LBS\tDESCRIPTION")
	fmt.Fprintln(tw, "--\t--------\t-----\t-----------\t-----------")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.StrategyKey, r.Level,
			greenops.FormatFloat(r.PotentialSavings, precision), r.Description)
	}
	return tw.Flush()
}

func renderCandidateTable(w io.Writer, cands []recommend.Candidate) error {
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations: emissions are already low.")
		return err
	}
	precision := config.GetOutputPrecision()
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tLEVEL\tCURRENT LBS\tSAVINGS LBS\tDESCRIPTION")
	fmt.Fprintln(tw, "--------\t-----\t-----------\t-----------\t-----------")
	for _, c := range cands {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.StrategyKey, c.Level,
			greenops.FormatFloat(c.CurrentEmissions, precision),
			greenops.FormatFloat(c.PotentialSavings, precision), c.Description)
	}
	return tw.Flush()
}

func newRecommendGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print candidates from trip history without refining or storing them",
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

			cands, err := eng.GenerateRecommendations(cmd.Context(), user)
			if err != nil {
				return err
			}
			return render(cmd, cands, cands, func() error {
				return renderCandidateTable(cmd.OutOrStdout(), cands)
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}

func newRecommendRefineCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Re-rank a JSON list of candidates with peer feedback",
		Long: `Reads a JSON array of candidates (as printed by "recommend generate -o json")
from --input or stdin and re-ranks it with the feedback of the user and of the
users clustered with them.`,
		Example: `  footprint recommend generate --user alice -o json | footprint recommend refine --user alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := userFlag(cmd)
			if err != nil {
				return err
			}
			cands, err := readCandidates(cmd, input)
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			refined, err := eng.RefineRecommendations(cmd.Context(), user, cands)
			if err != nil {
				return err
			}
			return render(cmd, refined, refined, func() error {
				return renderCandidateTable(cmd.OutOrStdout(), refined)
			})
		},
	}
	addUserFlag(cmd)
	cmd.Flags().StringVar(&input, "input", "", "candidates JSON file (default stdin)")
	return cmd
}

func readCandidates(cmd *cobra.Command, path string) ([]recommend.Candidate, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening candidates: %w", err)
		}
		defer f.Close()
		r = f
	}
	var cands []recommend.Candidate
	if err := json.NewDecoder(r).Decode(&cands); err != nil {
		return nil, fmt.Errorf("%w: decoding candidates: %w", engine.ErrInvalidInput, err)
	}
	return cands, nil
}

func newRecommendFeedbackCmd() *cobra.Command {
	var (
		in             engine.FeedbackInput
		accept, reject bool
	)
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Accept, reject or comment on a recommendation",
		Example: `  footprint recommend feedback --user alice --id 01J... --accept
  footprint recommend feedback --user alice --strategy carpool --reject --comment "no one nearby"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := userFlag(cmd)
			if err != nil {
				return err
			}
			in.UserID = user
			switch {
			case accept:
				v := true
				in.Accepted = &v
			case reject:
				v := false
				in.Accepted = &v
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			sig, err := eng.RecordFeedback(cmd.Context(), in)
			if err != nil {
				return err
			}
			return render(cmd, sig, []recommend.Signal{sig}, func() error {
				verdict := "comment"
				if sig.Accepted != nil {
					verdict = "rejected"
					if *sig.Accepted {
						verdict = "accepted"
					}
				}
				cmd.Printf("Recorded %s for %s\n", verdict, sig.StrategyKey)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	cmd.Flags().StringVar(&in.RecommendationID, "id", "", "stored recommendation id")
	cmd.Flags().StringVar(&in.StrategyKey, "strategy", "", "strategy key, when not referring to a stored recommendation")
	cmd.Flags().BoolVar(&accept, "accept", false, "accept the recommendation")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the recommendation")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "free-text feedback")
	cmd.MarkFlagsMutuallyExclusive("accept", "reject")
	cmd.MarkFlagsMutuallyExclusive("id", "strategy")
	return cmd
}

func newRecommendHistoryCmd() *cobra.Command {
	var page pagination.Params
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the user's stored recommendations",
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

			all, err := eng.History(cmd.Context(), user)
			if err != nil {
				return err
			}
			recs, meta, err := paginate(page, pagination.RecommendationSorter(), all)
			if err != nil {
				return err
			}

			logger.Debug().Ctx(cmd.Context()).
				Str("operation", "history_retrieved").
				Str("user_id", user).
				Int("count", len(all)).
				Msg("history retrieved")

			return render(cmd, recs, recs, func() error {
				if err := renderRecommendationTable(cmd.OutOrStdout(), recs); err != nil {
					return err
				}
				printPageFooter(cmd, page, meta)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	pagination.AddFlags(cmd, &page, "sort by savings, strategy or created, e.g. savings:desc")
	return cmd
}
