package footage

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Direct-file download URLs contain this marker; anything else (preview
// pages, HLS playlists) is unusable for download and is skipped.
const directFileMarker = ".com/video-files"

// Selector picks one best stock clip per search term from a Provider.
type Selector struct {
	provider Provider
}

func NewSelector(provider Provider) *Selector {
	return &Selector{provider: provider}
}

// Select queries the provider for up to candidateCount results for term and
// deterministically picks one clip:
//
//   - candidates shorter than minDuration seconds, or whose id is in
//     excluded, are discarded;
//   - candidates are considered in provider order, and the first candidate
//     that yields a usable variant wins — later candidates are never
//     considered, even if higher resolution;
//   - within a candidate, the variant with the greatest width×height is
//     chosen; on equal resolution the first-seen variant is kept;
//   - variants whose URL is in excluded, or is not a direct-file URL, are
//     never chosen.
//
// Returns (nil, nil) when no candidate yields a usable variant — an expected
// outcome, not an error. The excluded set holds provider ids and URLs already
// used in this run.
func (s *Selector) Select(ctx context.Context, term string, candidateCount, minDuration int, excluded map[string]struct{}) (*Result, error) {
	candidates, err := s.provider.Search(ctx, term, candidateCount)
	if err != nil {
		return nil, fmt.Errorf("footage search for %q failed: %w", term, err)
	}

	if len(candidates) == 0 {
		log.Printf("[Footage] No results for term %q", term)
		return nil, nil
	}

	for _, candidate := range candidates {
		if candidate.Duration < minDuration {
			continue
		}
		if _, used := excluded[candidate.ID]; used {
			continue
		}

		var best Variant
		bestRes := 0
		for _, v := range candidate.Variants {
			if _, used := excluded[v.URL]; used {
				continue
			}
			if !strings.Contains(v.URL, directFileMarker) {
				continue
			}
			if res := v.Width * v.Height; res > bestRes {
				best = v
				bestRes = res
			}
		}

		if best.URL != "" {
			log.Printf("[Footage] Term %q: selected %dx%d clip (candidate %s, %d variants)",
				term, best.Width, best.Height, candidate.ID, len(candidate.Variants))
			return &Result{
				ID:       candidate.ID,
				URL:      best.URL,
				Duration: candidate.Duration,
				Width:    best.Width,
				Height:   best.Height,
			}, nil
		}
	}

	log.Printf("[Footage] No usable clip for term %q", term)
	return nil, nil
}
