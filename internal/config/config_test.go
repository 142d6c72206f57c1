package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PEXELS_API_KEY", "px-test")
	t.Setenv("TIKTOK_SESSION_ID", "sid-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.APIPort)
	}
	if cfg.DataDir != "./creations" {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
	if cfg.PexelsPerPage != 15 {
		t.Errorf("expected default per-page 15, got %d", cfg.PexelsPerPage)
	}
	if cfg.YouTubeClientSecrets != "./client_secret.json" {
		t.Errorf("expected default client secrets path, got %s", cfg.YouTubeClientSecrets)
	}
}

func TestLoadRequiredKeys(t *testing.T) {
	cases := []struct{ missing string }{
		{"OPENAI_API_KEY"},
		{"PEXELS_API_KEY"},
		{"TIKTOK_SESSION_ID"},
	}

	for _, tc := range cases {
		t.Run(tc.missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("expected error when %s is missing", tc.missing)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_PORT", "9999")
	t.Setenv("PEXELS_PER_PAGE", "30")
	t.Setenv("DATA_DIR", "/data/projects")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.APIPort != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.APIPort)
	}
	if cfg.PexelsPerPage != 30 {
		t.Errorf("expected per-page 30, got %d", cfg.PexelsPerPage)
	}
	if cfg.DataDir != "/data/projects" {
		t.Errorf("expected overridden data dir, got %s", cfg.DataDir)
	}
}

func TestGetEnvIntMalformed(t *testing.T) {
	t.Setenv("PEXELS_PER_PAGE", "not-a-number")
	if got := getEnvInt("PEXELS_PER_PAGE", 15); got != 15 {
		t.Errorf("malformed value must fall back to default, got %d", got)
	}
}
