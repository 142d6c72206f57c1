package services

import (
	"strings"
	"testing"
)

func TestCleanScript(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Plain script text.", "Plain script text."},
		{"```\nFenced script.\n```", "Fenced script."},
		{"\"Quoted script.\"", "Quoted script."},
		{"  \n padded \n ", "padded"},
	}

	for _, tc := range cases {
		if got := cleanScript(tc.in); got != tc.want {
			t.Errorf("cleanScript(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseSearchTerms(t *testing.T) {
	terms, err := parseSearchTerms(`{"search_terms": ["cats", " kittens ", "", "cat toys"]}`, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"cats", "kittens", "cat toys"}
	if len(terms) != len(want) {
		t.Fatalf("expected %d terms, got %v", len(want), terms)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("term %d: expected %q, got %q", i, want[i], terms[i])
		}
	}
}

func TestParseSearchTermsCapped(t *testing.T) {
	terms, err := parseSearchTerms(`{"search_terms": ["a", "b", "c", "d", "e", "f", "g"]}`, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(terms) != 5 {
		t.Errorf("expected cap at 5 terms, got %d", len(terms))
	}
}

func TestParseSearchTermsErrors(t *testing.T) {
	if _, err := parseSearchTerms("not json", 5); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := parseSearchTerms(`{"search_terms": []}`, 5); err == nil {
		t.Error("expected error for empty term list")
	}
	if _, err := parseSearchTerms(`{"search_terms": ["", "  "]}`, 5); err == nil {
		t.Error("expected error when all terms are blank")
	}
}

func TestParseMetadata(t *testing.T) {
	meta, err := parseMetadata(`{"title": "Cats!", "description": "A video about cats.", "keywords": ["cats", "pets"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "Cats!" {
		t.Errorf("expected title Cats!, got %q", meta.Title)
	}
	if len(meta.Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(meta.Keywords))
	}
}

func TestParseMetadataMissingTitle(t *testing.T) {
	if _, err := parseMetadata(`{"description": "no title"}`); err == nil {
		t.Error("expected error for metadata without a title")
	}
}

func TestBuildScriptPromptCustomInstruction(t *testing.T) {
	prompt := buildScriptPrompt("cats", "Write it as a pirate", 2)
	if !strings.Contains(prompt, "Write it as a pirate") {
		t.Error("custom prompt not used as instruction")
	}
	if !strings.Contains(prompt, "Subject: cats") {
		t.Error("subject missing from prompt")
	}
	if !strings.Contains(prompt, "2 paragraph(s)") {
		t.Error("paragraph count missing from prompt")
	}
}

func TestIsGeminiModel(t *testing.T) {
	if !IsGeminiModel("gemini-1.5-flash") {
		t.Error("expected gemini-1.5-flash to route to Gemini")
	}
	if IsGeminiModel("gpt-3.5-turbo-1106") {
		t.Error("expected gpt model to route to OpenAI")
	}
}
