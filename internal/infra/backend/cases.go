package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
)

// SubmitCase implements cases.Submitter.
func (c *Client) SubmitCase(ctx context.Context, sub cases.Submission) (cases.ID, error) {
	var out struct {
		Status string   `json:"status"`
		CaseID cases.ID `json:"caseId"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/cases/submit", sub, &out); err != nil {
		return 0, err
	}
	return out.CaseID, nil
}

// caseRow is the review-queue row as the service returns it, including the
// joined patient profile.
type caseRow struct {
	ID              cases.ID              `json:"id"`
	ImageURL        string                `json:"image_url"`
	HeatmapImageURL string                `json:"heatmap_image_url"`
	Predictions     []analysis.Prediction `json:"predictions"`
	RiskLevel       analysis.RiskLevel    `json:"risk_level"`
	Status          cases.Status          `json:"status"`
	Notes           string                `json:"notes"`
	SubmittedAt     time.Time             `json:"submitted_at"`
	Profiles        *struct {
		FullName string `json:"full_name"`
	} `json:"profiles"`
}

func (r caseRow) toDomain() cases.Case {
	out := cases.Case{
		ID:              r.ID,
		ImageURL:        r.ImageURL,
		HeatmapImageURL: r.HeatmapImageURL,
		Predictions:     r.Predictions,
		Risk:            r.RiskLevel,
		Status:          r.Status,
		Notes:           r.Notes,
		SubmittedAt:     r.SubmittedAt,
	}
	if r.Profiles != nil {
		out.PatientName = r.Profiles.FullName
	}
	return out
}

// Cases implements cases.ReviewQueue. Private (tracking-only) submissions
// are filtered server-side.
func (c *Client) Cases(ctx context.Context) ([]cases.Case, error) {
	var rows []caseRow
	if err := c.doJSON(ctx, http.MethodGet, "/api/cases", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]cases.Case, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// UpdateStatus records the clinician's verdict on a case.
func (c *Client) UpdateStatus(ctx context.Context, id cases.ID, status cases.Status, notes string) (*cases.Case, error) {
	body := struct {
		Status cases.Status `json:"status"`
		Notes  string       `json:"notes,omitempty"`
	}{Status: status, Notes: notes}

	var out struct {
		Status      string  `json:"status"`
		UpdatedCase caseRow `json:"updatedCase"`
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/cases/%d/status", id), body, &out); err != nil {
		return nil, err
	}
	updated := out.UpdatedCase.toDomain()
	return &updated, nil
}
