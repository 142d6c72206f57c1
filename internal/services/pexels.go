package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/mesabjorn/MoneyPrinter/internal/cache"
	"github.com/mesabjorn/MoneyPrinter/internal/footage"
)

const (
	pexelsBaseURL = "https://api.pexels.com/videos/search"

	searchTimeout   = 30 * time.Second
	downloadTimeout = 120 * time.Second

	// Retry configuration for clip downloads
	maxRetries     = 3
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 15 * time.Second
)

// PexelsService searches and downloads stock footage via the Pexels video
// API. Search responses are cached in a Store keyed by the request shape
// (query + page size), so retried or resumed runs never re-spend rate limit
// on a search already answered.
type PexelsService struct {
	apiKey string
	cache  cache.Store
	client *http.Client
}

var _ StockFootage = (*PexelsService)(nil)

func NewPexelsService(apiKey string, store cache.Store) *PexelsService {
	return &PexelsService{
		apiKey: apiKey,
		cache:  store,
		client: &http.Client{
			Timeout: downloadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Wire types matching the Pexels video search response.
type pexelsSearchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int               `json:"id"`
	Duration   int               `json:"duration"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsVideoFile struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Search returns up to perPage candidates for query, in Pexels order.
func (s *PexelsService) Search(ctx context.Context, query string, perPage int) ([]footage.Candidate, error) {
	body, err := s.searchRaw(ctx, query, perPage)
	if err != nil {
		return nil, err
	}

	var parsed pexelsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse pexels response: %w", err)
	}

	candidates := make([]footage.Candidate, 0, len(parsed.Videos))
	for _, v := range parsed.Videos {
		c := footage.Candidate{
			ID:       strconv.Itoa(v.ID),
			Duration: v.Duration,
			Variants: make([]footage.Variant, 0, len(v.VideoFiles)),
		}
		for _, f := range v.VideoFiles {
			c.Variants = append(c.Variants, footage.Variant{
				URL:    f.Link,
				Width:  f.Width,
				Height: f.Height,
			})
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// searchRaw fetches the raw search response, going to the cache first.
func (s *PexelsService) searchRaw(ctx context.Context, query string, perPage int) ([]byte, error) {
	cacheKey := fmt.Sprintf("pexels:search:%s:%d", query, perPage)

	if s.cache != nil {
		if body, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Printf("[Pexels] Cache read failed for %q: %v", query, err)
		} else if ok {
			log.Printf("[Pexels] Search for %q served from cache", query)
			return body, nil
		}
	}

	qurl := fmt.Sprintf("%s?query=%s&per_page=%d", pexelsBaseURL, url.QueryEscape(query), perPage)

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(searchCtx, "GET", qurl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pexels request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pexels returned status %d: %s", resp.StatusCode, truncateString(string(body), 200))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pexels response: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, body); err != nil {
			log.Printf("[Pexels] Cache write failed for %q: %v", query, err)
		}
	}

	return body, nil
}

// Download fetches a direct-file clip URL to target, retrying transient
// failures with exponential backoff.
func (s *PexelsService) Download(ctx context.Context, fileURL, target string) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			log.Printf("[Pexels] Download retry %d/%d for %s (waiting %v)...", attempt, maxRetries, fileURL, delay)

			select {
			case <-ctx.Done():
				return fmt.Errorf("download cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := s.downloadOnce(ctx, fileURL, target)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("[Pexels] Download attempt %d failed: %v", attempt+1, err)
	}
	return fmt.Errorf("download failed after %d attempts: %w", maxRetries+1, lastErr)
}

func (s *PexelsService) downloadOnce(ctx context.Context, fileURL, target string) error {
	dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(dlCtx, "GET", fileURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	return f.Close()
}

// retryDelay calculates exponential backoff with jitter: base * 2^attempt + random jitter
func retryDelay(attempt int) time.Duration {
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	// Add 0–25% jitter to avoid thundering herd
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}
