package cases

import (
	"time"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

// ID type for Case
type ID int64

// Status of a case in the clinician review queue. Private cases are
// tracking-only scans and never show up in the queue.
type Status string

const (
	StatusNew      Status = "new"
	StatusReviewed Status = "reviewed"
	StatusUrgent   Status = "urgent"
	StatusPrivate  Status = "private"
)

// SubmissionStatus guards a single analysis result against duplicate
// submission. Session-local, never persisted.
//
// Allowed transitions: idle → submitting → {submitted | error}.
// error → idle only on an explicit user reset, never automatically.
type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionSubmitting SubmissionStatus = "submitting"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionError      SubmissionStatus = "error"
)

// Submission is the payload sent to the review queue, built from one
// AnalysisResult. IsPrivate is true iff the scan is tied to a tracked lesion.
type Submission struct {
	ImageBase64        string                `json:"image_base64"`
	HeatmapImageBase64 string                `json:"heatmap_image_base64"`
	Predictions        []analysis.Prediction `json:"predictions"`
	RiskLevel          analysis.RiskLevel    `json:"risk_level"`
	AIExplanation      string                `json:"ai_explanation"`
	LesionID           *lesions.ID           `json:"lesion_id,omitempty"`
	IsPrivate          bool                  `json:"is_private"`
}

// Case is one record in the clinician review queue.
type Case struct {
	ID              ID                    `json:"id"`
	PatientName     string                `json:"patient_name,omitempty"`
	ImageURL        string                `json:"image_url"`
	HeatmapImageURL string                `json:"heatmap_image_url"`
	Predictions     []analysis.Prediction `json:"predictions"`
	Risk            analysis.RiskLevel    `json:"risk_level"`
	Status          Status                `json:"status"`
	Notes           string                `json:"notes,omitempty"`
	SubmittedAt     time.Time             `json:"submitted_at"`
}
