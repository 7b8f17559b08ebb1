package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
)

// analyzeResponse is the raw /api/v2/analyze shape. top1/top2 and every
// explanation field are optional on the wire; normalization decides what
// survives into the domain model.
type analyzeResponse struct {
	Prediction struct {
		Top1      *analysis.Prediction `json:"top1"`
		Top2      *analysis.Prediction `json:"top2"`
		RiskLevel string               `json:"riskLevel"`
	} `json:"prediction"`
	Explanation struct {
		// consumer mode
		ExplanationText string `json:"explanation_text"`
		Recommendation  string `json:"recommendation"`
		// clinical mode
		TechnicalSummary       string `json:"technical_summary"`
		ClinicalRecommendation string `json:"clinical_recommendation"`
	} `json:"explanation"`
	HeatmapImage        string `json:"heatmapImage"`
	OriginalImageBase64 string `json:"originalImageBase64"`
}

// AnalyzeImage implements analysis.Analyzer. Exactly one request per call.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, filename string, variant analysis.Variant) (*analysis.Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	path := "/api/v2/analyze?mode=" + url.QueryEscape(string(variant))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var raw analyzeResponse
	if err := c.send(req, &raw); err != nil {
		return nil, err
	}
	return normalizeAnalysis(raw), nil
}

// normalizeAnalysis maps the duck-typed wire shape onto the domain model.
// Predictions are top1 then top2, each appended only when present; absent
// entries are omitted, never synthesized.
func normalizeAnalysis(raw analyzeResponse) *analysis.Result {
	res := &analysis.Result{
		Risk:          analysis.RiskUnknown,
		HeatmapImage:  raw.HeatmapImage,
		OriginalImage: raw.OriginalImageBase64,
	}
	if p := raw.Prediction.Top1; p != nil && p.Label != "" {
		res.Predictions = append(res.Predictions, *p)
	}
	if p := raw.Prediction.Top2; p != nil && p.Label != "" {
		res.Predictions = append(res.Predictions, *p)
	}
	switch raw.Prediction.RiskLevel {
	case string(analysis.RiskLow), string(analysis.RiskMedium), string(analysis.RiskHigh):
		res.Risk = analysis.RiskLevel(raw.Prediction.RiskLevel)
	}

	// The service answers with consumer or clinical keys depending on mode.
	res.Explanation = analysis.Explanation{
		Text:           raw.Explanation.ExplanationText,
		Recommendation: raw.Explanation.Recommendation,
	}
	if res.Explanation.Text == "" {
		res.Explanation.Text = raw.Explanation.TechnicalSummary
	}
	if res.Explanation.Recommendation == "" {
		res.Explanation.Recommendation = raw.Explanation.ClinicalRecommendation
	}
	return res
}
