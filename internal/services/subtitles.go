package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// Local Subtitle Aligner
//
// Produces an SRT subtitle track by aligning each script sentence with the
// measured duration of its narration segment: sentence i is displayed for
// exactly the span of audio segment i. No external alignment service is
// involved — the per-segment durations come from probing the synthesized
// audio, so the cues stay in sync with the concatenated narration track.
// ---------------------------------------------------------------------------

// SRTAligner writes sentence-level SRT cues from segment durations.
type SRTAligner struct{}

var _ SubtitleAligner = (*SRTAligner)(nil)

func NewSRTAligner() *SRTAligner {
	return &SRTAligner{}
}

// Align writes the subtitle track to target. sentences and durations must be
// index-aligned and of equal length. langPrefix is recorded for parity with
// hosted aligners that need a language hint; the local aligner is
// language-agnostic.
func (a *SRTAligner) Align(ctx context.Context, sentences []string, durations []float64, langPrefix, target string) error {
	if len(sentences) == 0 {
		return fmt.Errorf("no sentences to align")
	}
	if len(sentences) != len(durations) {
		return fmt.Errorf("sentence/duration count mismatch: %d sentences, %d durations", len(sentences), len(durations))
	}

	var sb strings.Builder
	start := 0.0
	for i, sentence := range sentences {
		end := start + durations[i]

		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatSRTTime(start), formatSRTTime(end)))
		sb.WriteString(strings.TrimSpace(sentence))
		sb.WriteString("\n\n")

		start = end
	}

	if err := os.WriteFile(target, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}

	log.Printf("[Subtitles] Wrote %d cues (lang=%s, total %.1fs)", len(sentences), langPrefix, start)
	return nil
}

// formatSRTTime converts seconds to the SRT timestamp format HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	totalMillis := int(math.Round(seconds * 1000))
	hours := totalMillis / 3600000
	minutes := (totalMillis % 3600000) / 60000
	secs := (totalMillis % 60000) / 1000
	millis := totalMillis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
