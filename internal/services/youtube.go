package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
)

const (
	// Science & Technology
	youtubeCategoryID = "28"

	youtubePrivacyStatus = "private"
)

// YouTubeService uploads finished videos through the YouTube Data API v3.
// Credentials come from an OAuth client secrets file plus a stored token;
// when the secrets file is absent the upload is skipped with a warning
// rather than failing the run.
type YouTubeService struct {
	clientSecretsPath string
	tokenPath         string
}

var _ Uploader = (*YouTubeService)(nil)

func NewYouTubeService(clientSecretsPath, tokenPath string) *YouTubeService {
	return &YouTubeService{
		clientSecretsPath: clientSecretsPath,
		tokenPath:         tokenPath,
	}
}

// Upload publishes the video as private under the Science & Technology
// category. Returns the video ID, or "" when upload was skipped because
// no client secrets file is present.
func (s *YouTubeService) Upload(ctx context.Context, videoPath string, meta *models.VideoMetadata) (string, error) {
	if _, err := os.Stat(s.clientSecretsPath); os.IsNotExist(err) {
		log.Printf("[YouTube] Client secrets file not found at %s, skipping upload", s.clientSecretsPath)
		return "", nil
	}

	client, err := s.oauthClient(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[YouTube] Uploading %q from %s", meta.Title, videoPath)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Keywords,
			CategoryId:  youtubeCategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: youtubePrivacyStatus,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("[YouTube] Upload complete: https://www.youtube.com/watch?v=%s", uploaded.Id)
	return uploaded.Id, nil
}

// oauthClient builds an HTTP client from the client secrets file and the
// stored token. The token must have been obtained out of band; an API
// server cannot run the interactive consent flow.
func (s *YouTubeService) oauthClient(ctx context.Context) (*http.Client, error) {
	secrets, err := os.ReadFile(s.clientSecretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	conf, err := google.ConfigFromJSON(secrets, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	token, err := s.loadToken()
	if err != nil {
		return nil, err
	}

	return conf.Client(ctx, token), nil
}

func (s *YouTubeService) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token file %s (run the consent flow first): %w", s.tokenPath, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}
