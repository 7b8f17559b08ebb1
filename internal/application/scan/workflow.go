package scan

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/apex/log"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
)

// MaxImageBytes is the upload limit enforced before any request is issued.
const MaxImageBytes = 10 << 20

// ErrSuperseded is returned to the caller of a stale Analyze once a newer
// image has been dropped on the workflow. The stale response is discarded;
// workflow state belongs to the newest request.
var ErrSuperseded = errors.New("analysis superseded by a newer image")

// State of the scan workflow.
type State string

const (
	StateIdle          State = "idle"
	StateUploading     State = "uploading"
	StateAnalyzing     State = "analyzing"
	StateResultReady   State = "result_ready"
	StateAnalysisError State = "analysis_error"
)

// Image is one user-selected file.
type Image struct {
	Name string
	MIME string // optional; sniffed from Data when empty
	Data []byte
}

// Workflow drives a single image through upload → analysis → result →
// optional review submission. Safe for concurrent use; ordering between
// overlapping analyses is last-submitted-wins, keyed by a monotonically
// increasing sequence number rather than transport-level cancellation.
type Workflow struct {
	Analyzer  analysis.Analyzer
	Submitter cases.Submitter

	mu        sync.Mutex
	state     State
	result    *analysis.Result
	seq       uint64
	subStatus cases.SubmissionStatus
}

// NewWorkflow creates an idle workflow instance. One instance handles one
// scan session; "start a new analysis" after a submitted case means a fresh
// instance, not a reset.
func NewWorkflow(analyzer analysis.Analyzer, submitter cases.Submitter) *Workflow {
	return &Workflow{
		Analyzer:  analyzer,
		Submitter: submitter,
		state:     StateIdle,
		subStatus: cases.SubmissionIdle,
	}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result returns the current analysis result, nil before the first analysis
// settles.
func (w *Workflow) Result() *analysis.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// SubmissionStatus returns the per-result submission guard state.
func (w *Workflow) SubmissionStatus() cases.SubmissionStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.subStatus
}

// Analyze validates the image and drives one analyzeImage request. On a
// service failure it does NOT return an error: it transitions to
// AnalysisError and returns a degraded, renderable result so the display
// surface never ends up empty after an attempt. Errors are returned only for
// client-side validation (InvalidInput, state untouched) and supersession.
func (w *Workflow) Analyze(ctx context.Context, img Image, variant analysis.Variant) (*analysis.Result, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.seq++
	mySeq := w.seq
	w.state = StateUploading
	w.result = nil
	w.subStatus = cases.SubmissionIdle
	w.state = StateAnalyzing
	w.mu.Unlock()

	res, err := w.Analyzer.AnalyzeImage(ctx, img.Data, img.Name, variant)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != mySeq {
		// A newer image was dropped while this request was in flight.
		log.WithField("seq", mySeq).Debug("discarding stale analysis response")
		return nil, ErrSuperseded
	}
	if err != nil {
		log.WithError(err).Warn("analysis request failed")
		w.state = StateAnalysisError
		w.result = degradedResult(err)
		return w.result, nil
	}
	w.state = StateResultReady
	w.result = res
	return res, nil
}

func validateImage(img Image) error {
	if len(img.Data) == 0 {
		return derrors.New(derrors.KindInvalidInput, "no image data provided")
	}
	if len(img.Data) > MaxImageBytes {
		return derrors.New(derrors.KindInvalidInput, "image exceeds the 10 MiB upload limit")
	}
	mime := img.MIME
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return derrors.Newf(derrors.KindInvalidInput, "unsupported file type %q, expected an image", mime)
	}
	return nil
}

// degradedResult keeps the result surface renderable after a failed
// analysis: error label, zero confidence, unknown risk, the failure's
// user-facing message as explanation.
func degradedResult(err error) *analysis.Result {
	return &analysis.Result{
		Predictions: []analysis.Prediction{{Label: "Analysis Error", Confidence: 0}},
		Risk:        analysis.RiskUnknown,
		Explanation: analysis.Explanation{
			Text:           err.Error(),
			Recommendation: "Please try again. If the problem persists, contact support.",
		},
	}
}
