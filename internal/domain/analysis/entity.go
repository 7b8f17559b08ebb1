package analysis

// Variant selects which model the service runs. Caller-supplied, never
// inferred from the image.
type Variant string

const (
	VariantClinical Variant = "clinical"
	VariantConsumer Variant = "consumer"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// Prediction is one ranked label from the classifier. Order in a slice is
// significant: index 0 is the most likely. Confidence is a percentage on a
// 0-100 scale, as the service reports it.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Explanation is the LLM-generated narrative attached to a result.
type Explanation struct {
	Text           string `json:"text"`
	Recommendation string `json:"recommendation"`
}

// Result is one normalized analysis response. Immutable once received; held
// only in the workflow's transient state until the user submits it.
type Result struct {
	Predictions   []Prediction `json:"predictions"`
	Risk          RiskLevel    `json:"risk_level"`
	Explanation   Explanation  `json:"explanation"`
	HeatmapImage  string       `json:"heatmap_image"`
	OriginalImage string       `json:"original_image"`
}

// Top returns the most likely prediction, or a zero value when the service
// returned none.
func (r *Result) Top() Prediction {
	if len(r.Predictions) == 0 {
		return Prediction{}
	}
	return r.Predictions[0]
}
