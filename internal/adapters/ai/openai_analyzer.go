package ai

import (
	"DriverHelper/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// openaiAnalyzer classifies driver documents with a vision model. With
// no API key configured it degrades to a deterministic mock verdict so
// onboarding keeps working in development.
type openaiAnalyzer struct {
	client *openai.Client // nil when unconfigured
	log    zerolog.Logger
}

var _ ports.DocumentAnalyzer = (*openaiAnalyzer)(nil) // Ensure compliance

// NewOpenAIAnalyzer creates the analyzer. An empty apiKey selects mock mode.
func NewOpenAIAnalyzer(apiKey string, baseLogger *zerolog.Logger) ports.DocumentAnalyzer {
	log := baseLogger.With().Str("component", "doc_analyzer").Logger()

	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	} else {
		log.Warn().Msg("No OpenAI API key configured, document analysis runs in mock mode")
	}
	return &openaiAnalyzer{client: client, log: log}
}

// Analyze sends the document to the vision model and parses its verdict.
func (a *openaiAnalyzer) Analyze(ctx context.Context, documentURL string, documentType string) (*ports.AnalysisResult, error) {
	if a.client == nil {
		a.log.Info().Str("type", documentType).Msg("Mock document analysis")
		return &ports.AnalysisResult{
			Confidence: 0.9,
			ExtractedFields: map[string]string{
				"document_type": documentType,
				"url":           documentURL,
			},
			IsValid:     true,
			Suggestions: []string{"Mock analysis completed successfully"},
		}, nil
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openai.GPT4VisionPreview,
		MaxTokens: 1000,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: analysisPrompt(documentType),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: documentURL,
						},
					},
				},
			},
		},
	})
	if err != nil {
		a.log.Error().Err(err).Str("type", documentType).Msg("Document analysis request failed")
		return nil, fmt.Errorf("analyze document: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("analyze document: empty model response")
	}

	return a.parseResponse(resp.Choices[0].Message.Content), nil
}

// analysisPrompt returns the extraction prompt for the document type.
func analysisPrompt(documentType string) string {
	switch documentType {
	case ports.AnalyzeCDL:
		return `Analyze this Commercial Driver License (CDL) document. Extract the following information:
- CDL Number
- Expiry Date
- Driver Name
- License Class
- State of Issue

Return the data in JSON format with confidence score (0-1) and validation status.`
	case ports.AnalyzeDOTMedical:
		return `Analyze this DOT Medical Certificate. Extract the following information:
- Certificate Number
- Expiry Date
- Driver Name
- Medical Examiner Name
- Issue Date

Return the data in JSON format with confidence score (0-1) and validation status.`
	case ports.AnalyzeDriverPhoto:
		return `Analyze this driver photo. Verify:
- It's a clear, professional photo
- Shows the driver's face clearly
- Appropriate for identification purposes

Return assessment in JSON format with confidence score (0-1) and validation status.`
	default:
		return "Analyze this document and extract relevant information."
	}
}

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// parseResponse pulls the JSON verdict out of the model's reply. A
// reply we cannot parse is a low-confidence invalid result, not an error.
func (a *openaiAnalyzer) parseResponse(reply string) *ports.AnalysisResult {
	raw := jsonBlockRe.FindString(reply)
	if raw == "" {
		return &ports.AnalysisResult{
			Confidence:      0.3,
			ExtractedFields: map[string]string{"raw_response": reply},
			IsValid:         false,
			Suggestions:     []string{"Unable to parse analysis response properly"},
		}
	}

	var parsed struct {
		Confidence  float64           `json:"confidence"`
		IsValid     bool              `json:"isValid"`
		Suggestions []string          `json:"suggestions"`
		Extracted   map[string]string `json:"extracted"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.log.Warn().Err(err).Msg("Analysis reply contained malformed JSON")
		return &ports.AnalysisResult{
			Confidence:      0.1,
			ExtractedFields: map[string]string{"raw_response": reply},
			IsValid:         false,
			Suggestions:     []string{"Error parsing analysis response"},
		}
	}

	confidence := parsed.Confidence
	if confidence == 0 {
		confidence = 0.5
	}
	fields := parsed.Extracted
	if fields == nil {
		fields = map[string]string{}
	}
	return &ports.AnalysisResult{
		Confidence:      confidence,
		ExtractedFields: fields,
		IsValid:         parsed.IsValid,
		Suggestions:     parsed.Suggestions,
	}
}
