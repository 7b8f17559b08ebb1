package report

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
)

type memArchive struct {
	keys []string
	data [][]byte
}

func (m *memArchive) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.keys = append(m.keys, key)
	m.data = append(m.data, data)
	return "http://archive.local/" + key, nil
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Predictions: []analysis.Prediction{{Label: "Melanocytic nevus", Confidence: 91.0}},
		Risk:        analysis.RiskLow,
		Explanation: analysis.Explanation{Text: "Most likely benign."},
	}
}

func TestExportToLocalDir(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{OutDir: dir}

	path, err := svc.Export(context.Background(), sampleResult(), analysis.VariantClinical)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report file missing: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if doc.ID == "" || doc.Disclaimer == "" {
		t.Errorf("Incomplete document: %+v", doc)
	}
	if doc.Model != analysis.VariantClinical {
		t.Errorf("Expected clinical model, got %s", doc.Model)
	}
	if len(doc.Predictions) != 1 || doc.Risk != analysis.RiskLow {
		t.Errorf("Result fields did not survive export: %+v", doc)
	}
}

func TestExportToArchive(t *testing.T) {
	arch := &memArchive{}
	svc := &Service{Archive: arch}

	loc, err := svc.Export(context.Background(), sampleResult(), analysis.VariantConsumer)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(arch.keys) != 1 {
		t.Fatalf("Expected one archived object, got %d", len(arch.keys))
	}
	if loc != "http://archive.local/"+arch.keys[0] {
		t.Errorf("Unexpected location %q", loc)
	}
}

func TestExportRequiresResult(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Export(context.Background(), nil, analysis.VariantClinical); err == nil {
		t.Fatal("Expected an error without a result")
	}
}
