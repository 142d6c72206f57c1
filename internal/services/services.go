package services

import (
	"context"

	"github.com/mesabjorn/MoneyPrinter/internal/footage"
	"github.com/mesabjorn/MoneyPrinter/internal/models"
)

// ---------------------------------------------------------------------------
// Collaborator interfaces — the pipeline orchestrator only sees these.
// Each external engine (script model, TTS, subtitle alignment, composition,
// footage provider, upload) is a replaceable black box behind its interface.
// ---------------------------------------------------------------------------

// ScriptGenerator produces the script, the footage search terms, and the
// upload metadata for a subject. Implementations: OpenAIService (gpt-*
// models), GeminiService (gemini-* models).
type ScriptGenerator interface {
	// GenerateScript writes a narration script for the subject. customPrompt,
	// when non-empty, replaces the default instruction; paragraphs bounds the
	// script length.
	GenerateScript(ctx context.Context, subject, customPrompt string, paragraphs int, voice string) (string, error)

	// SearchTerms extracts up to amount stock-footage search terms from the
	// subject and its finished script, most relevant first.
	SearchTerms(ctx context.Context, subject string, amount int, script string) ([]string, error)

	// Metadata generates the upload title, description and keywords from the
	// subject and script.
	Metadata(ctx context.Context, subject, script string) (*models.VideoMetadata, error)
}

// NarrationEngine synthesizes one spoken audio file per sentence.
type NarrationEngine interface {
	// Synthesize converts text to speech with the given voice and writes the
	// audio to target.
	Synthesize(ctx context.Context, text, voice, target string) error
}

// SubtitleAligner produces a subtitle track for the narration. sentences and
// durations are index-aligned: durations[i] is the length in seconds of
// sentence i's narration segment. langPrefix is the two-letter language
// prefix of the configured voice.
type SubtitleAligner interface {
	Align(ctx context.Context, sentences []string, durations []float64, langPrefix, target string) error
}

// VideoComposer is the encoding engine: audio concatenation and probing,
// clip concatenation, and the final overlay of narration and subtitles.
// threads is an opaque parallelism hint — the only parallelism in the system
// is delegated here.
type VideoComposer interface {
	// ConcatAudio joins narration segments, in order, into one track.
	ConcatAudio(ctx context.Context, parts []string, target string) error

	// AudioDuration returns the duration of an audio file in seconds.
	AudioDuration(ctx context.Context, path string) (float64, error)

	// CombineClips concatenates stock clips into one silent video covering
	// maxDuration seconds, cycling through clips as needed with each segment
	// capped at maxClipDuration seconds.
	CombineClips(ctx context.Context, clips []string, maxDuration, maxClipDuration float64, threads int, target string) error

	// Compose overlays the narration audio and subtitle track onto the
	// combined video. subtitlesPath may be empty (no subtitles burned in).
	Compose(ctx context.Context, videoPath, audioPath, subtitlesPath, position, color string, threads int, target string) error

	// MixMusic loops background music under the video's audio at low volume.
	MixMusic(ctx context.Context, videoPath, musicPath, target string, threads int) error
}

// StockFootage is the footage provider boundary: catalog search (the
// footage.Provider contract) plus direct download of a selected variant URL.
type StockFootage interface {
	footage.Provider

	// Download fetches a direct-file URL to target.
	Download(ctx context.Context, url, target string) error
}

// Uploader publishes the finished video to a hosting platform.
type Uploader interface {
	// Upload publishes the video with the given metadata and returns the
	// hosted video id.
	Upload(ctx context.Context, videoPath string, meta *models.VideoMetadata) (string, error)
}
