package lesions

import (
	"context"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

// Engine answers "how has this lesion evolved" on demand.
type Engine struct {
	Directory domain.Directory
}

// Evolution is the side-by-side comparison view for one lesion. History is
// sorted newest-first. Previous and Latest point into History once at least
// two scans exist; Comparison is the server's verdict about that pair.
type Evolution struct {
	LesionID   domain.ID          `json:"lesion_id"`
	History    []domain.Scan      `json:"history"`
	Previous   *domain.Scan       `json:"previous,omitempty"`
	Latest     *domain.Scan       `json:"latest,omitempty"`
	Comparison *domain.Comparison `json:"comparison,omitempty"`
}

// Compare fetches the lesion's full history and, when it holds two or more
// scans, exactly one comparison verdict. With fewer than two scans no
// comparison request is issued: the history is still returned for display
// alongside an InsufficientData error. The server alone decides which two
// scans it compared; the client sorts its local copy before labeling
// previous/latest rather than trusting transport order. No automatic retry
// on any failure.
func (e *Engine) Compare(ctx context.Context, id domain.ID) (*Evolution, error) {
	history, err := e.Directory.Scans(ctx, id)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(history)

	ev := &Evolution{LesionID: id, History: history}
	if len(history) < 2 {
		return ev, derrors.New(derrors.KindInsufficientData, "at least two scans are needed for a comparison")
	}

	cmp, err := e.Directory.Comparison(ctx, id)
	if err != nil {
		return ev, err
	}
	ev.Latest = &history[0]
	ev.Previous = &history[1]
	ev.Comparison = cmp
	return ev, nil
}
