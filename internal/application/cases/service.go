package cases

import (
	"context"

	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
)

// Service exposes the clinician review queue to the CLI and gateway.
type Service struct {
	Queue domain.ReviewQueue
}

func NewService(queue domain.ReviewQueue) *Service {
	return &Service{Queue: queue}
}

// List returns the pending review queue, newest first as the service
// returns it.
func (s *Service) List(ctx context.Context) ([]domain.Case, error) {
	return s.Queue.Cases(ctx)
}

// Review records the clinician's status and notes for one case.
func (s *Service) Review(ctx context.Context, id domain.ID, status domain.Status, notes string) (*domain.Case, error) {
	switch status {
	case domain.StatusNew, domain.StatusReviewed, domain.StatusUrgent:
	default:
		return nil, derrors.Newf(derrors.KindInvalidInput, "unknown case status %q", status)
	}
	return s.Queue.UpdateStatus(ctx, id, status, notes)
}
