package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	appscan "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/scan"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

func newAnalyzeCmd(cfgPath *string) *cobra.Command {
	var (
		mode     string
		lesionID int64
		submit   bool
		report   bool
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a skin image",
		Long: "Uploads one image for analysis and prints the predictions. " +
			"With --submit the result is sent to the clinician review queue; " +
			"with --lesion it is attached to a tracked lesion instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			if !a.sess.Authenticated() {
				return fmt.Errorf("not signed in, run `dermasense login` first")
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", path, err)
			}

			variant := a.defaultVariant()
			if mode != "" {
				variant = analysis.Variant(mode)
			}

			wf := appscan.NewWorkflow(a.client, a.client)
			img := appscan.Image{
				Name: filepath.Base(path),
				MIME: mime.TypeByExtension(filepath.Ext(path)),
				Data: data,
			}
			res, err := wf.Analyze(cmd.Context(), img, variant)
			if err != nil {
				return a.finish(err)
			}
			printResult(os.Stdout, res)
			if wf.State() == appscan.StateAnalysisError {
				// Degraded result already printed; nothing to submit.
				return nil
			}

			if submit || lesionID > 0 {
				var lid *lesions.ID
				if lesionID > 0 {
					v := lesions.ID(lesionID)
					lid = &v
				}
				if err := wf.SubmitForReview(cmd.Context(), lid); err != nil {
					return a.finish(err)
				}
				if lid != nil {
					fmt.Printf("Scan recorded against lesion %d.\n", *lid)
				} else {
					fmt.Println("Submitted for clinician review.")
				}
			}

			if report {
				a.reports.OutDir = outDir
				loc, err := a.reports.Export(cmd.Context(), res, variant)
				if err != nil {
					return a.finish(err)
				}
				fmt.Printf("Report saved to %s\n", loc)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "analysis mode: clinical or consumer")
	cmd.Flags().Int64Var(&lesionID, "lesion", 0, "attach the scan to this tracked lesion")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit the result for clinician review")
	cmd.Flags().BoolVar(&report, "report", false, "export a report document")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for exported reports (default current directory)")
	return cmd
}

// printResult renders one analysis. Confidence arrives already on a 0-100
// scale from the service; it is printed as-is, never rescaled.
func printResult(w io.Writer, res *analysis.Result) {
	for i, p := range res.Predictions {
		marker := "  "
		if i == 0 {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%-30s %5.1f%%\n", marker, p.Label, p.Confidence)
	}
	fmt.Fprintf(w, "Risk level: %s\n", res.Risk)
	if res.Explanation.Text != "" {
		fmt.Fprintf(w, "\n%s\n", res.Explanation.Text)
	}
	if res.Explanation.Recommendation != "" {
		fmt.Fprintf(w, "\nRecommendation: %s\n", res.Explanation.Recommendation)
	}
}
