package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// TikTok Text-to-Speech Service
// Uses TikTok's internal speech synthesis endpoint, authenticated with a
// session cookie. The response carries the audio as base64 MP3. Input text
// is limited to ~300 characters per request, so callers pass one sentence
// at a time.
// ---------------------------------------------------------------------------

const (
	tiktokTTSEndpoint = "https://api16-normal-c-useast1a.tiktokv.com/media/api/text/speech/invoke/"
	tiktokMaxTextLen  = 300
)

// TikTokService synthesizes narration audio via the TikTok TTS API.
type TikTokService struct {
	sessionID string
	client    *http.Client
}

var _ NarrationEngine = (*TikTokService)(nil)

func NewTikTokService(sessionID string) *TikTokService {
	return &TikTokService{
		sessionID: sessionID,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type tiktokResponse struct {
	Data struct {
		VStr     string `json:"v_str"`
		Duration string `json:"duration"`
	} `json:"data"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

// Synthesize converts one sentence to speech and writes the MP3 to target.
func (s *TikTokService) Synthesize(ctx context.Context, text, voice, target string) error {
	if len(text) > tiktokMaxTextLen {
		text = text[:tiktokMaxTextLen]
	}

	// The endpoint rejects some punctuation outright
	sanitized := strings.NewReplacer("+", "plus", "&", "and", "\n", " ").Replace(text)

	qurl := fmt.Sprintf("%s?text_speaker=%s&req_text=%s&speaker_map_type=0&aid=1233",
		tiktokTTSEndpoint, url.QueryEscape(voice), url.QueryEscape(sanitized))

	req, err := http.NewRequestWithContext(ctx, "POST", qurl, nil)
	if err != nil {
		return fmt.Errorf("failed to create tts request: %w", err)
	}

	req.Header.Set("User-Agent", "com.zhiliaoapp.musically/2022600030 (Linux; U; Android 7.1.2; es_ES; SM-G988N; Build/NRD90M;tt-ok/3.12.13.1)")
	req.Header.Set("Cookie", "sessionid="+s.sessionID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts returned status %d: %s", resp.StatusCode, truncateString(string(body), 200))
	}

	var parsed tiktokResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to parse tts response: %w", err)
	}

	if parsed.StatusCode != 0 {
		return fmt.Errorf("tts rejected request (status %d): %s", parsed.StatusCode, parsed.StatusMsg)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Data.VStr)
	if err != nil {
		return fmt.Errorf("failed to decode tts audio: %w", err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("tts returned empty audio")
	}

	if err := os.WriteFile(target, audio, 0644); err != nil {
		return fmt.Errorf("failed to write tts audio: %w", err)
	}

	log.Printf("[TikTok] Speech generated (voice=%s, textLen=%d, %d bytes)", voice, len(text), len(audio))
	return nil
}
