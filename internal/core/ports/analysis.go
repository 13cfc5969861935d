package ports

import "context"

// Analyzer document types. These select the extraction prompt, not the
// storage location.
const (
	AnalyzeDriverPhoto = "photo"
	AnalyzeCDL         = "cdl"
	AnalyzeDOTMedical  = "dot_medical"
)

// AnalysisResult is the classification service's judgment of one document.
type AnalysisResult struct {
	Confidence      float64
	ExtractedFields map[string]string
	IsValid         bool
	Suggestions     []string
}

// DocumentAnalyzer defines the call/response contract with the document
// classification service. An unconfigured service degrades to a
// deterministic mock result rather than failing.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, documentURL string, documentType string) (*AnalysisResult, error)
}
