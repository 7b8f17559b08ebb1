package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
)

func TestPrintResultKeepsServiceScale(t *testing.T) {
	// The service already reports confidence on a 0-100 scale.
	res := &analysis.Result{
		Predictions: []analysis.Prediction{
			{Label: "Melanoma", Confidence: 81.0},
			{Label: "Melanocytic nevus", Confidence: 12.5},
		},
		Risk: analysis.RiskHigh,
	}

	var buf bytes.Buffer
	printResult(&buf, res)
	out := buf.String()

	if !strings.Contains(out, "81.0%") {
		t.Errorf("Expected confidence rendered as 81.0%%, got:\n%s", out)
	}
	if !strings.Contains(out, "12.5%") {
		t.Errorf("Expected confidence rendered as 12.5%%, got:\n%s", out)
	}
	if strings.Contains(out, "8100") {
		t.Errorf("Confidence must not be rescaled, got:\n%s", out)
	}
	if !strings.Contains(out, "* Melanoma") {
		t.Errorf("Expected the top prediction marked, got:\n%s", out)
	}
	if !strings.Contains(out, "Risk level: high") {
		t.Errorf("Expected the risk line, got:\n%s", out)
	}
}

func TestPrintResultDegraded(t *testing.T) {
	res := &analysis.Result{
		Predictions: []analysis.Prediction{{Label: "Analysis Error", Confidence: 0}},
		Risk:        analysis.RiskUnknown,
		Explanation: analysis.Explanation{
			Text:           "could not reach the analysis service",
			Recommendation: "Please try again. If the problem persists, contact support.",
		},
	}

	var buf bytes.Buffer
	printResult(&buf, res)
	out := buf.String()

	if !strings.Contains(out, "Analysis Error") || !strings.Contains(out, "0.0%") {
		t.Errorf("Expected the degraded row, got:\n%s", out)
	}
	if !strings.Contains(out, "Risk level: unknown") {
		t.Errorf("Expected unknown risk, got:\n%s", out)
	}
	if !strings.Contains(out, "Recommendation:") {
		t.Errorf("Expected the recommendation line, got:\n%s", out)
	}
}
