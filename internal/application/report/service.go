package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/application"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
)

// Archive port (interface for offsite report storage)
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Document is the exportable record of one analysis.
type Document struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Model       analysis.Variant      `json:"model"`
	Predictions []analysis.Prediction `json:"predictions"`
	Risk        analysis.RiskLevel    `json:"risk_level"`
	Explanation analysis.Explanation  `json:"explanation"`
	Disclaimer  string                `json:"disclaimer"`
}

const disclaimer = "This is an AI-powered analysis. It is not a substitute for medical advice. Please consult a licensed dermatologist for further evaluation."

// Service renders analysis results into report documents and stores them,
// offsite when an archive is configured, otherwise under OutDir.
type Service struct {
	Archive Archive // optional
	OutDir  string
	Clock   application.Clock
}

// Export writes a report for res and returns its location (object URL or
// local path).
func (s *Service) Export(ctx context.Context, res *analysis.Result, variant analysis.Variant) (string, error) {
	if res == nil {
		return "", fmt.Errorf("no analysis result to export")
	}
	doc := Document{
		ID:          uuid.New().String(),
		GeneratedAt: s.now(),
		Model:       variant,
		Predictions: res.Predictions,
		Risk:        res.Risk,
		Explanation: res.Explanation,
		Disclaimer:  disclaimer,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if s.Archive != nil {
		key := fmt.Sprintf("reports/%s/%s.json", doc.GeneratedAt.Format("2006-01-02"), doc.ID)
		return s.Archive.Put(ctx, key, data, "application/json")
	}

	dir := s.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("dermasense-report-%s.json", doc.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return application.SystemClock{}.Now()
}
