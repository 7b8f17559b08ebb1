package lesions

import (
	"context"
	"time"
)

// Directory port (interface to the remote lesion-tracking API)
type Directory interface {
	List(ctx context.Context) ([]Lesion, error)
	Create(ctx context.Context, nickname, bodyPart string) (*Lesion, error)
	Delete(ctx context.Context, id ID) error
	Scans(ctx context.Context, id ID) ([]Scan, error)
	Comparison(ctx context.Context, id ID) (*Comparison, error)
}

// Cache port (interface for the local dashboard snapshot)
type Cache interface {
	PutSummaries(ctx context.Context, ls []Lesion, fetchedAt time.Time) error
	Summaries(ctx context.Context) ([]Lesion, time.Time, error)
}
