package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
)

// OpenAIService generates scripts, search terms and upload metadata through
// the OpenAI chat completion API. The model is taken from the request's
// aiModel field, so one service handles every gpt-* model.
type OpenAIService struct {
	client *openai.Client
	model  string
}

var _ ScriptGenerator = (*OpenAIService)(nil)

func NewOpenAIService(apiKey, model string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAIService) GenerateScript(ctx context.Context, subject, customPrompt string, paragraphs int, voice string) (string, error) {
	prompt := buildScriptPrompt(subject, customPrompt, paragraphs)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai script request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	script := cleanScript(resp.Choices[0].Message.Content)
	if script == "" {
		return "", fmt.Errorf("openai returned an empty script")
	}

	log.Printf("[OpenAI] Script generated (model=%s, len=%d)", s.model, len(script))
	return script, nil
}

func (s *OpenAIService) SearchTerms(ctx context.Context, subject string, amount int, script string) ([]string, error) {
	prompt := buildSearchTermsPrompt(subject, amount, script)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai search terms request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	terms, err := parseSearchTerms(resp.Choices[0].Message.Content, amount)
	if err != nil {
		return nil, err
	}

	log.Printf("[OpenAI] Search terms generated: %v", terms)
	return terms, nil
}

func (s *OpenAIService) Metadata(ctx context.Context, subject, script string) (*models.VideoMetadata, error) {
	prompt := buildMetadataPrompt(subject, script)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai metadata request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	meta, err := parseMetadata(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Printf("[OpenAI] Upload metadata generated (title=%q, %d keywords)", meta.Title, len(meta.Keywords))
	return meta, nil
}

// ---------------------------------------------------------------------------
// Prompts and response parsing, shared by both script backends
// ---------------------------------------------------------------------------

func buildScriptPrompt(subject, customPrompt string, paragraphs int) string {
	instruction := customPrompt
	if instruction == "" {
		instruction = "Generate a script for a narrated short-form video about the subject below. The script should be informative and engaging, written to be read aloud."
	}

	return fmt.Sprintf(`%s

Subject: %s
Length: %d paragraph(s).

Rules:
- Return the raw script text only: no markdown, no scene directions, no speaker labels, no "welcome to this video" style intros.
- Do not mention the prompt, these rules, or the paragraph count in the script.
- Use plain sentences separated by ". " so the script can be split for narration.`, instruction, subject, paragraphs)
}

func buildSearchTermsPrompt(subject string, amount int, script string) string {
	return fmt.Sprintf(`Generate %d search terms for finding stock videos to illustrate a video about "%s".

Each term should be 1-3 words, concrete and visual (things a stock footage site would have clips of), ordered most relevant first.

Respond with a JSON object: {"search_terms": ["term1", "term2", ...]}

The video script, for context:
%s`, amount, subject, script)
}

func buildMetadataPrompt(subject, script string) string {
	return fmt.Sprintf(`Generate video upload metadata for a short-form video about "%s".

Respond with a JSON object:
{"title": "...", "description": "...", "keywords": ["...", "..."]}

- title: catchy, under 100 characters
- description: 1-3 sentences summarizing the video
- keywords: 5-10 search tags

The video script, for context:
%s`, subject, script)
}

// cleanScript strips markdown fences and surrounding whitespace that chat
// models sometimes wrap around plain-text answers.
func cleanScript(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "\"")
	return strings.TrimSpace(s)
}

func parseSearchTerms(raw string, amount int) ([]string, error) {
	var parsed struct {
		SearchTerms []string `json:"search_terms"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[ScriptGen] search terms parse failed: %v (raw: %s)", err, truncateString(raw, 500))
		return nil, fmt.Errorf("failed to parse search terms: %w", err)
	}

	terms := make([]string, 0, len(parsed.SearchTerms))
	for _, t := range parsed.SearchTerms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("model returned no search terms")
	}
	if len(terms) > amount {
		terms = terms[:amount]
	}
	return terms, nil
}

func parseMetadata(raw string) (*models.VideoMetadata, error) {
	var meta models.VideoMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		log.Printf("[ScriptGen] metadata parse failed: %v (raw: %s)", err, truncateString(raw, 500))
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("model returned metadata without a title")
	}
	return &meta, nil
}

// truncateString truncates a string to maxLen and appends "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
