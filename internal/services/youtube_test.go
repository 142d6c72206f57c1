package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
)

const testClientSecrets = `{
	"installed": {
		"client_id": "test-client-id",
		"client_secret": "test-client-secret",
		"auth_uri": "https://accounts.google.com/o/oauth2/auth",
		"token_uri": "https://oauth2.googleapis.com/token",
		"redirect_uris": ["urn:ietf:wg:oauth:2.0:oob"]
	}
}`

const testToken = `{
	"access_token": "test-access",
	"refresh_token": "test-refresh",
	"token_type": "Bearer"
}`

func TestUploadSkipsWithoutSecrets(t *testing.T) {
	dir := t.TempDir()
	svc := NewYouTubeService(filepath.Join(dir, "missing_secrets.json"), filepath.Join(dir, "token.json"))

	meta := &models.VideoMetadata{Title: "cats", Description: "about cats", Keywords: []string{"cats"}}
	id, err := svc.Upload(context.Background(), filepath.Join(dir, "final.mp4"), meta)
	if err != nil {
		t.Fatalf("missing secrets must skip, not fail: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty video id when upload is skipped, got %q", id)
	}
}

func TestOAuthClientFromStoredCredentials(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "client_secret.json")
	tokenPath := filepath.Join(dir, "token.json")

	if err := os.WriteFile(secretsPath, []byte(testClientSecrets), 0600); err != nil {
		t.Fatalf("failed to write secrets: %v", err)
	}
	if err := os.WriteFile(tokenPath, []byte(testToken), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}

	svc := NewYouTubeService(secretsPath, tokenPath)
	client, err := svc.oauthClient(context.Background())
	if err != nil {
		t.Fatalf("expected a client from stored credentials: %v", err)
	}
	if client == nil {
		t.Fatal("expected a non-nil HTTP client")
	}
	if client.Transport == nil {
		t.Error("expected the client to carry an OAuth transport")
	}
}

func TestOAuthClientMissingToken(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "client_secret.json")
	if err := os.WriteFile(secretsPath, []byte(testClientSecrets), 0600); err != nil {
		t.Fatalf("failed to write secrets: %v", err)
	}

	svc := NewYouTubeService(secretsPath, filepath.Join(dir, "missing_token.json"))
	if _, err := svc.oauthClient(context.Background()); err == nil {
		t.Fatal("expected error when the token file is missing")
	}
}

func TestOAuthClientMalformedSecrets(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "client_secret.json")
	if err := os.WriteFile(secretsPath, []byte("not json"), 0600); err != nil {
		t.Fatalf("failed to write secrets: %v", err)
	}

	svc := NewYouTubeService(secretsPath, filepath.Join(dir, "token.json"))
	if _, err := svc.oauthClient(context.Background()); err == nil {
		t.Fatal("expected error for malformed client secrets")
	}
}
