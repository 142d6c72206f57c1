package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
)

// GeminiService is the alternate script backend, used when the request's
// aiModel starts with "gemini". It implements the same ScriptGenerator
// contract as OpenAIService using the Google Gen AI SDK.
type GeminiService struct {
	apiKey string
	model  string
}

var _ ScriptGenerator = (*GeminiService)(nil)

func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
	}
}

// IsGeminiModel reports whether an aiModel identifier selects this backend.
func IsGeminiModel(model string) bool {
	return strings.HasPrefix(model, "gemini")
}

func (s *GeminiService) GenerateScript(ctx context.Context, subject, customPrompt string, paragraphs int, voice string) (string, error) {
	raw, err := s.generate(ctx, buildScriptPrompt(subject, customPrompt, paragraphs), false)
	if err != nil {
		return "", err
	}

	script := cleanScript(raw)
	if script == "" {
		return "", fmt.Errorf("gemini returned an empty script")
	}

	log.Printf("[Gemini] Script generated (model=%s, len=%d)", s.model, len(script))
	return script, nil
}

func (s *GeminiService) SearchTerms(ctx context.Context, subject string, amount int, script string) ([]string, error) {
	raw, err := s.generate(ctx, buildSearchTermsPrompt(subject, amount, script), true)
	if err != nil {
		return nil, err
	}

	terms, err := parseSearchTerms(raw, amount)
	if err != nil {
		return nil, err
	}

	log.Printf("[Gemini] Search terms generated: %v", terms)
	return terms, nil
}

func (s *GeminiService) Metadata(ctx context.Context, subject, script string) (*models.VideoMetadata, error) {
	raw, err := s.generate(ctx, buildMetadataPrompt(subject, script), true)
	if err != nil {
		return nil, err
	}

	meta, err := parseMetadata(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("[Gemini] Upload metadata generated (title=%q, %d keywords)", meta.Title, len(meta.Keywords))
	return meta, nil
}

func (s *GeminiService) generate(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	var config *genai.GenerateContentConfig
	if wantJSON {
		config = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		}
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
