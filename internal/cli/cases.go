package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
)

func newCasesCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Work the clinician review queue",
	}
	cmd.AddCommand(newCasesListCmd(cfgPath), newCasesReviewCmd(cfgPath))
	return cmd
}

func newCasesListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List submitted cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			list, err := a.review.List(cmd.Context())
			if err != nil {
				return a.finish(err)
			}
			if len(list) == 0 {
				fmt.Println("The review queue is empty.")
				return nil
			}
			fmt.Printf("%-5s %-10s %-20s %-8s %-12s %s\n", "ID", "STATUS", "PATIENT", "RISK", "SUBMITTED", "TOP PREDICTION")
			for _, c := range list {
				top := "-"
				if len(c.Predictions) > 0 {
					top = c.Predictions[0].Label
				}
				name := c.PatientName
				if name == "" {
					name = "unknown"
				}
				fmt.Printf("%-5d %-10s %-20s %-8s %-12s %s\n",
					c.ID, c.Status, name, c.Risk, c.SubmittedAt.Format("2006-01-02"), top)
			}
			return nil
		},
	}
}

func newCasesReviewCmd(cfgPath *string) *cobra.Command {
	var status, notes string

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Record a review decision on a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid case id %q", args[0])
			}
			updated, err := a.review.Review(cmd.Context(), cases.ID(id), cases.Status(status), notes)
			if err != nil {
				return a.finish(err)
			}
			fmt.Printf("Case %d is now %s.\n", updated.ID, updated.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "new review status: new, reviewed or urgent (required)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "clinician notes")
	cmd.MarkFlagRequired("status")
	return cmd
}
