package analysis

import "context"

// Analyzer port (interface to the remote analysis service)
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, filename string, variant Variant) (*Result, error)
}
