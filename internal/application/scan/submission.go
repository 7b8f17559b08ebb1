package scan

import (
	"context"

	"github.com/apex/log"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

// SubmitForReview submits the current analysis result into the clinician
// review queue, optionally tied to a tracked lesion. The synchronous status
// check below is the sole defense against duplicate submission; UI disabling
// is advisory only. While status is submitting or submitted the call is a
// no-op and issues no request.
func (w *Workflow) SubmitForReview(ctx context.Context, lesionID *lesions.ID) error {
	w.mu.Lock()
	switch w.subStatus {
	case cases.SubmissionSubmitting, cases.SubmissionSubmitted:
		w.mu.Unlock()
		return nil
	case cases.SubmissionError:
		// No automatic retry: the user must reset explicitly first.
		w.mu.Unlock()
		return derrors.New(derrors.KindInvalidInput, "previous submission failed, reset before retrying")
	}
	if w.state != StateResultReady || w.result == nil {
		w.mu.Unlock()
		return derrors.New(derrors.KindInvalidInput, "no analysis result to submit")
	}

	w.subStatus = cases.SubmissionSubmitting
	mySeq := w.seq
	sub := buildSubmission(w.result, lesionID)
	w.mu.Unlock()

	id, err := w.Submitter.SubmitCase(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != mySeq {
		// A new image replaced this result mid-flight; the submission
		// outcome belongs to an abandoned session.
		return nil
	}
	if err != nil {
		log.WithError(err).Warn("case submission failed")
		w.subStatus = cases.SubmissionError
		return err
	}
	log.WithField("case_id", id).Info("case submitted for review")
	w.subStatus = cases.SubmissionSubmitted
	return nil
}

// ResetSubmission is the explicit, user-initiated error → idle transition.
// It does nothing from any other status.
func (w *Workflow) ResetSubmission() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subStatus == cases.SubmissionError {
		w.subStatus = cases.SubmissionIdle
	}
}

// buildSubmission maps one analysis result onto the review payload. A scan
// tied to a lesion is private tracking data, not a public queue entry.
func buildSubmission(res *analysis.Result, lesionID *lesions.ID) cases.Submission {
	return cases.Submission{
		ImageBase64:        res.OriginalImage,
		HeatmapImageBase64: res.HeatmapImage,
		Predictions:        res.Predictions,
		RiskLevel:          res.Risk,
		AIExplanation:      res.Explanation.Text,
		LesionID:           lesionID,
		IsPrivate:          lesionID != nil,
	}
}
