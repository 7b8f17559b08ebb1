package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

func newLesionsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesions",
		Short: "Track lesions over time",
	}
	cmd.AddCommand(
		newLesionsListCmd(cfgPath),
		newLesionsAddCmd(cfgPath),
		newLesionsRmCmd(cfgPath),
		newLesionsCompareCmd(cfgPath),
	)
	return cmd
}

func newLesionsListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the lesion dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			dash, err := a.aggregator.LoadDashboard(cmd.Context())
			if err != nil {
				if derrors.IsAuth(err) {
					return a.finish(err)
				}
				// Live load failed; fall back to the last snapshot.
				dash, err = a.aggregator.CachedDashboard(cmd.Context())
				if err != nil {
					return err
				}
			}

			if dash.Profile != nil && dash.Profile.FullName != "" {
				fmt.Printf("Lesions tracked by %s\n\n", dash.Profile.FullName)
			}
			if dash.Stale {
				fmt.Printf("(offline snapshot from %s)\n\n", dash.FetchedAt.Format("2006-01-02 15:04"))
			}
			if len(dash.Lesions) == 0 {
				fmt.Println("No lesions tracked yet. Add one with `dermasense lesions add`.")
				return nil
			}
			fmt.Printf("%-5s %-20s %-15s %-6s %s\n", "ID", "NICKNAME", "BODY PART", "SCANS", "LAST SEEN")
			for _, l := range dash.Lesions {
				lastSeen := "-"
				if l.LastSeenAt != nil {
					lastSeen = l.LastSeenAt.Format("2006-01-02")
				}
				fmt.Printf("%-5d %-20s %-15s %-6d %s\n", l.ID, l.Nickname, l.BodyPart, l.ScanCount, lastSeen)
			}
			return nil
		},
	}
}

func newLesionsAddCmd(cfgPath *string) *cobra.Command {
	var bodyPart string

	cmd := &cobra.Command{
		Use:   "add <nickname>",
		Short: "Start tracking a new lesion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			l, err := a.aggregator.Create(cmd.Context(), args[0], bodyPart)
			if err != nil {
				return a.finish(err)
			}
			fmt.Printf("Tracking %q (%s) as lesion %d.\n", l.Nickname, l.BodyPart, l.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&bodyPart, "body-part", "b", "", "where the lesion is (required)")
	cmd.MarkFlagRequired("body-part")
	return cmd
}

func newLesionsRmCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Stop tracking a lesion and delete its scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			id, err := parseLesionID(args[0])
			if err != nil {
				return err
			}
			if err := a.aggregator.Delete(cmd.Context(), id); err != nil {
				return a.finish(err)
			}
			fmt.Printf("Lesion %d deleted.\n", id)
			return nil
		},
	}
}

func newLesionsCompareCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id>",
		Short: "Compare a lesion's two most recent scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			id, err := parseLesionID(args[0])
			if err != nil {
				return err
			}
			ev, err := a.engine.Compare(cmd.Context(), id)
			if derrors.Is(err, derrors.KindInsufficientData) {
				printHistory(ev.History)
				fmt.Println("\nAt least two scans are needed for a comparison. Analyze another image with --lesion.")
				return nil
			}
			if err != nil {
				return a.finish(err)
			}

			printHistory(ev.History)
			fmt.Printf("\nPrevious: %s  (%s)\n", ev.Previous.SubmittedAt.Format("2006-01-02"), topLabel(ev.Previous))
			fmt.Printf("Latest:   %s  (%s)\n", ev.Latest.SubmittedAt.Format("2006-01-02"), topLabel(ev.Latest))
			fmt.Printf("\n%s\n", ev.Comparison.ChangeSummary)
			if ev.Comparison.ChangeRecommendation != "" {
				fmt.Printf("\nRecommendation: %s\n", ev.Comparison.ChangeRecommendation)
			}
			return nil
		},
	}
}

func printHistory(history []lesions.Scan) {
	fmt.Printf("%d scan(s) on record:\n", len(history))
	for _, s := range history {
		fmt.Printf("  %s  %s  risk=%s\n", s.SubmittedAt.Format("2006-01-02"), topLabel(&s), s.Risk)
	}
}

func topLabel(s *lesions.Scan) string {
	if len(s.Predictions) == 0 {
		return "no prediction"
	}
	return s.Predictions[0].Label
}

func parseLesionID(raw string) (lesions.ID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lesion id %q", raw)
	}
	return lesions.ID(id), nil
}
