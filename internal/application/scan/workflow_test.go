package scan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (*analysis.Result, error)
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, image []byte, filename string, variant analysis.Variant) (*analysis.Result, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	fn := f.fn
	f.mu.Unlock()
	return fn(call)
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls int
	subs  []cases.Submission
	err   error
}

func (f *fakeSubmitter) SubmitCase(ctx context.Context, sub cases.Submission) (cases.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subs = append(f.subs, sub)
	if f.err != nil {
		return 0, f.err
	}
	return cases.ID(f.calls), nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okResult() *analysis.Result {
	return &analysis.Result{
		Predictions: []analysis.Prediction{
			{Label: "Melanocytic nevus", Confidence: 91.0},
			{Label: "Melanoma", Confidence: 4.2},
		},
		Risk:        analysis.RiskLow,
		Explanation: analysis.Explanation{Text: "Most likely a benign mole."},
	}
}

func pngImage(size int) Image {
	return Image{Name: "lesion.png", MIME: "image/png", Data: make([]byte, size)}
}

func TestAnalyzeSuccess(t *testing.T) {
	an := &fakeAnalyzer{fn: func(int) (*analysis.Result, error) { return okResult(), nil }}
	wf := NewWorkflow(an, &fakeSubmitter{})

	res, err := wf.Analyze(context.Background(), pngImage(1024), analysis.VariantClinical)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if wf.State() != StateResultReady {
		t.Errorf("Expected state %s, got %s", StateResultReady, wf.State())
	}
	if res.Top().Label != "Melanocytic nevus" {
		t.Errorf("Unexpected top prediction: %+v", res.Top())
	}
	if wf.SubmissionStatus() != cases.SubmissionIdle {
		t.Errorf("Expected submission status idle, got %s", wf.SubmissionStatus())
	}
}

func TestAnalyzeValidation(t *testing.T) {
	testCases := []struct {
		name string
		img  Image
	}{
		{"empty image", Image{Name: "empty.png", MIME: "image/png"}},
		{"oversized image", pngImage(15 << 20)},
		{"non-image file", Image{Name: "report.pdf", MIME: "application/pdf", Data: []byte("%PDF-1.4")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			an := &fakeAnalyzer{fn: func(int) (*analysis.Result, error) { return okResult(), nil }}
			wf := NewWorkflow(an, &fakeSubmitter{})

			_, err := wf.Analyze(context.Background(), tc.img, analysis.VariantClinical)
			if derrors.KindOf(err) != derrors.KindInvalidInput {
				t.Fatalf("Expected invalid_input error, got %v", err)
			}
			if an.callCount() != 0 {
				t.Errorf("Expected no analysis request, got %d", an.callCount())
			}
			if wf.State() != StateIdle {
				t.Errorf("Validation failure must not change state, got %s", wf.State())
			}
		})
	}
}

func TestAnalyzeFailureYieldsDegradedResult(t *testing.T) {
	an := &fakeAnalyzer{fn: func(int) (*analysis.Result, error) {
		return nil, derrors.New(derrors.KindServer, "analysis failed on the server")
	}}
	wf := NewWorkflow(an, &fakeSubmitter{})

	res, err := wf.Analyze(context.Background(), pngImage(1024), analysis.VariantConsumer)
	if err != nil {
		t.Fatalf("Service failure must not surface as an error, got %v", err)
	}
	if wf.State() != StateAnalysisError {
		t.Errorf("Expected state %s, got %s", StateAnalysisError, wf.State())
	}
	if len(res.Predictions) != 1 || res.Predictions[0].Label != "Analysis Error" {
		t.Fatalf("Unexpected degraded predictions: %+v", res.Predictions)
	}
	if res.Predictions[0].Confidence != 0 {
		t.Errorf("Degraded confidence must be 0, got %v", res.Predictions[0].Confidence)
	}
	if res.Risk != analysis.RiskUnknown {
		t.Errorf("Degraded risk must be unknown, got %s", res.Risk)
	}
	if res.Explanation.Text == "" {
		t.Error("Degraded result must carry the failure message")
	}
}

func TestAnalyzeLastSubmittedWins(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	an := &fakeAnalyzer{}
	an.fn = func(call int) (*analysis.Result, error) {
		if call == 1 {
			close(firstStarted)
			<-release
			stale := okResult()
			stale.Predictions[0].Label = "Stale"
			return stale, nil
		}
		return okResult(), nil
	}
	wf := NewWorkflow(an, &fakeSubmitter{})

	errCh := make(chan error, 1)
	go func() {
		_, err := wf.Analyze(context.Background(), pngImage(512), analysis.VariantClinical)
		errCh <- err
	}()
	<-firstStarted

	if _, err := wf.Analyze(context.Background(), pngImage(512), analysis.VariantClinical); err != nil {
		t.Fatalf("Second analyze failed: %v", err)
	}
	close(release)

	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded from the stale analyze, got %v", err)
	}
	if wf.State() != StateResultReady {
		t.Errorf("Expected state %s, got %s", StateResultReady, wf.State())
	}
	if got := wf.Result().Top().Label; got == "Stale" {
		t.Error("Stale response must not overwrite the newest result")
	}
}
