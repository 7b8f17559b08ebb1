package cases

import "context"

// Submitter port (interface for submitting a case for review)
type Submitter interface {
	SubmitCase(ctx context.Context, sub Submission) (ID, error)
}

// ReviewQueue port (interface to the clinician dashboard API)
type ReviewQueue interface {
	Cases(ctx context.Context) ([]Case, error)
	UpdateStatus(ctx context.Context, id ID, status Status, notes string) (*Case, error)
}
