package models

import "testing"

func TestNewProjectConfigDefaults(t *testing.T) {
	cfg := NewProjectConfig(GenerateRequest{VideoSubject: "cats"})

	if cfg.VideoSubject != "cats" {
		t.Errorf("expected subject cats, got %q", cfg.VideoSubject)
	}
	if cfg.Voice != DefaultVoice {
		t.Errorf("expected default voice %s, got %s", DefaultVoice, cfg.Voice)
	}
	if cfg.ParagraphNumber != DefaultParagraphNumber {
		t.Errorf("expected default paragraph number %d, got %d", DefaultParagraphNumber, cfg.ParagraphNumber)
	}
	if cfg.AIModel != DefaultAIModel {
		t.Errorf("expected default model %s, got %s", DefaultAIModel, cfg.AIModel)
	}
	if cfg.Threads != DefaultThreads {
		t.Errorf("expected default threads %d, got %d", DefaultThreads, cfg.Threads)
	}
	if cfg.SubtitlesPosition != DefaultSubtitlesPosition {
		t.Errorf("expected default position %s, got %s", DefaultSubtitlesPosition, cfg.SubtitlesPosition)
	}
	if cfg.Color != DefaultSubtitlesColor {
		t.Errorf("expected default color %s, got %s", DefaultSubtitlesColor, cfg.Color)
	}
	if cfg.UseMusic || cfg.AutomateYoutubeUpload {
		t.Error("toggles must default to off")
	}
}

func TestNewProjectConfigKeepsExplicitValues(t *testing.T) {
	cfg := NewProjectConfig(GenerateRequest{
		VideoSubject:      "cats",
		Voice:             "de_001",
		ParagraphNumber:   3,
		AIModel:           "gemini-1.5-flash",
		Threads:           8,
		SubtitlesPosition: "left,top",
		Color:             "White",
		UseMusic:          true,
	})

	if cfg.Voice != "de_001" {
		t.Errorf("expected voice de_001, got %s", cfg.Voice)
	}
	if cfg.ParagraphNumber != 3 {
		t.Errorf("expected 3 paragraphs, got %d", cfg.ParagraphNumber)
	}
	if cfg.AIModel != "gemini-1.5-flash" {
		t.Errorf("expected gemini model, got %s", cfg.AIModel)
	}
	if cfg.Threads != 8 {
		t.Errorf("expected 8 threads, got %d", cfg.Threads)
	}
	if cfg.SubtitlesPosition != "left,top" {
		t.Errorf("expected left,top, got %s", cfg.SubtitlesPosition)
	}
	if cfg.Color != "White" {
		t.Errorf("expected White, got %s", cfg.Color)
	}
	if !cfg.UseMusic {
		t.Error("expected useMusic to be kept")
	}
}

func TestNewProjectConfigNegativeNumbers(t *testing.T) {
	cfg := NewProjectConfig(GenerateRequest{
		VideoSubject:    "cats",
		ParagraphNumber: -1,
		Threads:         -4,
	})

	if cfg.ParagraphNumber != DefaultParagraphNumber {
		t.Errorf("negative paragraph number must fall back to default, got %d", cfg.ParagraphNumber)
	}
	if cfg.Threads != DefaultThreads {
		t.Errorf("negative threads must fall back to default, got %d", cfg.Threads)
	}
}

func TestVoicePrefix(t *testing.T) {
	cfg := NewProjectConfig(GenerateRequest{VideoSubject: "cats", Voice: "en_us_001"})
	if cfg.VoicePrefix() != "en" {
		t.Errorf("expected prefix en, got %s", cfg.VoicePrefix())
	}

	cfg = NewProjectConfig(GenerateRequest{VideoSubject: "cats", Voice: "de_001"})
	if cfg.VoicePrefix() != "de" {
		t.Errorf("expected prefix de, got %s", cfg.VoicePrefix())
	}
}

func TestMetadataDocument(t *testing.T) {
	cfg := NewProjectConfig(GenerateRequest{VideoSubject: "cats"})
	meta := cfg.Metadata()

	if meta["title"] != "cats" {
		t.Errorf("expected title=cats, got %v", meta["title"])
	}
	if meta["voice"] != DefaultVoice {
		t.Errorf("expected voice=%s, got %v", DefaultVoice, meta["voice"])
	}
	if meta["aiModel"] != DefaultAIModel {
		t.Errorf("expected aiModel=%s, got %v", DefaultAIModel, meta["aiModel"])
	}
}
