package lesions

import (
	"time"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
)

// ID type for Lesion
type ID int64

// Lesion is a user-nominated skin area tracked across scans. The backend
// owns the record; ScanCount, LastSeenAt and LatestImage are derived locally
// from the lesion's scan history and are a cache, never a source of truth.
type Lesion struct {
	ID        ID        `json:"id"`
	Nickname  string    `json:"nickname"`
	BodyPart  string    `json:"body_part"`
	CreatedAt time.Time `json:"created_at"`

	ScanCount   int        `json:"scan_count"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	LatestImage string     `json:"latest_image_url,omitempty"`
}

// Scan is one submitted-for-review analysis, optionally tied to a lesion.
type Scan struct {
	ID              int64                 `json:"id"`
	LesionID        *ID                   `json:"lesion_id,omitempty"`
	ImageURL        string                `json:"image_url"`
	HeatmapImageURL string                `json:"heatmap_image_url"`
	Predictions     []analysis.Prediction `json:"predictions"`
	Risk            analysis.RiskLevel    `json:"risk_level"`
	SubmittedAt     time.Time             `json:"submitted_at"`
}

// Comparison is the server-generated delta between a lesion's two most
// recent scans.
type Comparison struct {
	ChangeSummary        string `json:"change_summary"`
	ChangeRecommendation string `json:"change_recommendation"`
}
