package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mesabjorn/MoneyPrinter/internal/footage"
	"github.com/mesabjorn/MoneyPrinter/internal/models"
	"github.com/mesabjorn/MoneyPrinter/internal/project"
	"github.com/mesabjorn/MoneyPrinter/internal/services"
)

const (
	// Number of search terms extracted from the script
	searchTermCount = 5

	// Clips shorter than this are never selected
	minClipDuration = 10.0

	// No single clip contributes more than this many seconds to the video
	maxClipSegment = 5.0

	defaultCandidatesPerTerm = 15
)

// ScriptPicker selects the script-generation backend for a model id.
type ScriptPicker func(model string) services.ScriptGenerator

// Deps are the external collaborators the pipeline drives. Uploader may be
// nil when upload automation is not configured.
type Deps struct {
	Scripts           ScriptPicker
	Narration         services.NarrationEngine
	Subtitles         services.SubtitleAligner
	Composer          services.VideoComposer
	Footage           services.StockFootage
	Uploader          services.Uploader
	DataDir           string
	SongsDir          string
	CandidatesPerTerm int
}

// Pipeline runs the generation stages for one project at a time. Every
// stage checks for its workspace artifact first, so re-running a subject
// resumes from the last completed stage instead of redoing paid work.
type Pipeline struct {
	scripts           ScriptPicker
	narration         services.NarrationEngine
	subtitles         services.SubtitleAligner
	composer          services.VideoComposer
	footage           services.StockFootage
	uploader          services.Uploader
	dataDir           string
	songsDir          string
	candidatesPerTerm int
}

func New(d Deps) *Pipeline {
	candidates := d.CandidatesPerTerm
	if candidates <= 0 {
		candidates = defaultCandidatesPerTerm
	}

	return &Pipeline{
		scripts:           d.Scripts,
		narration:         d.Narration,
		subtitles:         d.Subtitles,
		composer:          d.Composer,
		footage:           d.Footage,
		uploader:          d.Uploader,
		dataDir:           d.DataDir,
		songsDir:          d.SongsDir,
		candidatesPerTerm: candidates,
	}
}

// Result is the outcome of one successful pipeline run.
type Result struct {
	ProjectID  string
	OutputPath string
	VideoID    string
}

// Run executes the full pipeline for cfg. The context is checked at every
// stage boundary; an in-flight collaborator call is only interrupted if the
// collaborator itself honors cancellation.
func (p *Pipeline) Run(ctx context.Context, cfg models.ProjectConfig) (*Result, error) {
	identity := project.Identity(cfg.VideoSubject)
	log.Printf("[Pipeline] Starting project %s (subject=%q)", identity, cfg.VideoSubject)

	ws, err := project.Open(p.dataDir, identity)
	if err != nil {
		return nil, storageErr("workspace", err)
	}

	if err := ws.WriteMetadata(cfg.Metadata()); err != nil {
		return nil, storageErr("workspace", err)
	}

	script, err := p.scriptStage(ctx, ws, cfg)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms, err := p.termsStage(ctx, ws, cfg, script)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clips, err := p.footageStage(ctx, ws, terms)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sentences := splitSentences(script)
	narrationPath, err := p.narrationStage(ctx, ws, cfg, sentences)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subtitlesPath, err := p.subtitlesStage(ctx, ws, cfg, sentences)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := p.compositionStage(ctx, ws, cfg, clips, narrationPath, subtitlesPath)
	if err != nil {
		return nil, err
	}

	if cfg.UseMusic {
		output, err = p.musicStage(ctx, ws, cfg, output)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{ProjectID: identity, OutputPath: output}

	if cfg.AutomateYoutubeUpload && p.uploader != nil {
		result.VideoID, err = p.uploadStage(ctx, ws, cfg, script, output)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[Pipeline] Project %s complete: %s", identity, output)
	return result, nil
}

func (p *Pipeline) scriptStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig) (string, error) {
	if ws.HasArtifact(project.ArtifactScript) {
		data, err := ws.ReadArtifact(project.ArtifactScript)
		if err != nil {
			return "", storageErr("script", err)
		}
		log.Printf("[Pipeline] Script already generated, reusing")
		return string(data), nil
	}

	gen := p.scripts(cfg.AIModel)
	script, err := gen.GenerateScript(ctx, cfg.VideoSubject, cfg.CustomPrompt, cfg.ParagraphNumber, cfg.Voice)
	if err != nil {
		return "", collaboratorErr("script", err)
	}

	if err := ws.WriteArtifact(project.ArtifactScript, []byte(script)); err != nil {
		return "", storageErr("script", err)
	}

	log.Printf("[Pipeline] Script generated (%d chars)", len(script))
	return script, nil
}

func (p *Pipeline) termsStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, script string) ([]string, error) {
	if ws.HasArtifact(project.ArtifactSearchTerms) {
		data, err := ws.ReadArtifact(project.ArtifactSearchTerms)
		if err != nil {
			return nil, storageErr("terms", err)
		}

		var terms []string
		if err := json.Unmarshal(data, &terms); err != nil {
			return nil, storageErr("terms", fmt.Errorf("corrupt search terms artifact: %w", err))
		}
		log.Printf("[Pipeline] Search terms already extracted, reusing %d", len(terms))
		return terms, nil
	}

	gen := p.scripts(cfg.AIModel)
	terms, err := gen.SearchTerms(ctx, cfg.VideoSubject, searchTermCount, script)
	if err != nil {
		return nil, collaboratorErr("terms", err)
	}

	data, err := json.MarshalIndent(terms, "", "  ")
	if err != nil {
		return nil, storageErr("terms", err)
	}
	if err := ws.WriteArtifact(project.ArtifactSearchTerms, data); err != nil {
		return nil, storageErr("terms", err)
	}

	log.Printf("[Pipeline] Extracted %d search terms", len(terms))
	return terms, nil
}

// footageStage downloads one clip per search term where possible. If the
// video area already holds any clip the whole stage is treated as done.
func (p *Pipeline) footageStage(ctx context.Context, ws *project.Workspace, terms []string) ([]string, error) {
	clips, err := ws.Clips()
	if err != nil {
		return nil, storageErr("footage", err)
	}
	if len(clips) > 0 {
		log.Printf("[Pipeline] Footage already acquired, reusing %d clips", len(clips))
		return clips, nil
	}

	selector := footage.NewSelector(p.footage)
	excluded := make(map[string]struct{})

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := selector.Select(ctx, term, p.candidatesPerTerm, minClipDuration, excluded)
		if err != nil {
			return nil, collaboratorErr("footage", err)
		}
		if result == nil {
			log.Printf("[Pipeline] No usable footage for term %q, skipping", term)
			continue
		}

		target := filepath.Join(ws.VideoDir(), uuid.NewString()+".mp4")
		if err := p.footage.Download(ctx, result.URL, target); err != nil {
			return nil, collaboratorErr("footage", err)
		}

		excluded[result.ID] = struct{}{}
		excluded[result.URL] = struct{}{}
		clips = append(clips, target)
	}

	if len(clips) == 0 {
		return nil, &Error{Kind: KindNoFootage, Stage: "footage", Err: ErrNoFootage}
	}

	log.Printf("[Pipeline] Acquired %d clips for %d terms", len(clips), len(terms))
	return clips, nil
}

// narrationStage synthesizes one audio segment per sentence and joins them
// into the combined narration track. Segments are re-synthesized whenever
// the persisted count differs from the sentence count, so a partially
// completed prior run is never mistaken for a finished one.
func (p *Pipeline) narrationStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, sentences []string) (string, error) {
	if len(sentences) == 0 {
		return "", collaboratorErr("narration", fmt.Errorf("script produced no sentences"))
	}

	segments, err := ws.AudioParts()
	if err != nil {
		return "", storageErr("narration", err)
	}

	if len(segments) != len(sentences) {
		if len(segments) > 0 {
			log.Printf("[Pipeline] Found %d narration segments for %d sentences, re-synthesizing", len(segments), len(sentences))
		}
		// The combined track would be stale after a re-synthesis
		if ws.HasArtifact(project.ArtifactNarration) {
			if err := ws.RemoveArtifact(project.ArtifactNarration); err != nil {
				return "", storageErr("narration", err)
			}
		}

		segments = segments[:0]
		for i, sentence := range sentences {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			target := ws.SegmentPath(i)
			if err := p.narration.Synthesize(ctx, sentence, cfg.Voice, target); err != nil {
				return "", collaboratorErr("narration", err)
			}
			segments = append(segments, target)
		}
		log.Printf("[Pipeline] Synthesized %d narration segments", len(segments))
	} else {
		log.Printf("[Pipeline] Narration segments already synthesized, reusing %d", len(segments))
	}

	narrationPath := ws.Path(project.ArtifactNarration)
	if ws.HasArtifact(project.ArtifactNarration) {
		return narrationPath, nil
	}

	if err := p.composer.ConcatAudio(ctx, segments, narrationPath); err != nil {
		return "", collaboratorErr("narration", err)
	}
	return narrationPath, nil
}

func (p *Pipeline) subtitlesStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, sentences []string) (string, error) {
	subtitlesPath := ws.Path(project.ArtifactSubtitles)
	if ws.HasArtifact(project.ArtifactSubtitles) {
		log.Printf("[Pipeline] Subtitles already generated, reusing")
		return subtitlesPath, nil
	}

	durations := make([]float64, len(sentences))
	for i := range sentences {
		d, err := p.composer.AudioDuration(ctx, ws.SegmentPath(i))
		if err != nil {
			return "", collaboratorErr("subtitles", err)
		}
		durations[i] = d
	}

	if err := p.subtitles.Align(ctx, sentences, durations, cfg.VoicePrefix(), subtitlesPath); err != nil {
		return "", collaboratorErr("subtitles", err)
	}

	log.Printf("[Pipeline] Subtitles generated for %d sentences", len(sentences))
	return subtitlesPath, nil
}

func (p *Pipeline) compositionStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, clips []string, narrationPath, subtitlesPath string) (string, error) {
	combinedPath := ws.Path(project.ArtifactCombinedVideo)
	if ws.HasArtifact(project.ArtifactCombinedVideo) {
		log.Printf("[Pipeline] Combined video already rendered, reusing")
	} else {
		totalDuration, err := p.composer.AudioDuration(ctx, narrationPath)
		if err != nil {
			return "", collaboratorErr("composition", err)
		}

		if err := p.composer.CombineClips(ctx, clips, totalDuration, maxClipSegment, cfg.Threads, combinedPath); err != nil {
			return "", collaboratorErr("composition", err)
		}
		log.Printf("[Pipeline] Combined %d clips (%.1fs)", len(clips), totalDuration)
	}

	finalPath := ws.Path(project.ArtifactFinalVideo)
	if ws.HasArtifact(project.ArtifactFinalVideo) {
		log.Printf("[Pipeline] Final video already rendered, reusing")
		return finalPath, nil
	}

	if err := p.composer.Compose(ctx, combinedPath, narrationPath, subtitlesPath, cfg.SubtitlesPosition, cfg.Color, cfg.Threads, finalPath); err != nil {
		return "", collaboratorErr("composition", err)
	}

	log.Printf("[Pipeline] Final video rendered")
	return finalPath, nil
}

func (p *Pipeline) musicStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, finalPath string) (string, error) {
	musicPath := ws.Path(project.ArtifactFinalWithMusic)
	if ws.HasArtifact(project.ArtifactFinalWithMusic) {
		log.Printf("[Pipeline] Music mix already rendered, reusing")
		return musicPath, nil
	}

	song, err := randomSong(p.songsDir)
	if err != nil {
		return "", storageErr("music", err)
	}
	if song == "" {
		log.Printf("[Pipeline] No songs found in %s, skipping music mix", p.songsDir)
		return finalPath, nil
	}

	if err := p.composer.MixMusic(ctx, finalPath, song, musicPath, cfg.Threads); err != nil {
		return "", collaboratorErr("music", err)
	}

	log.Printf("[Pipeline] Mixed background music from %s", filepath.Base(song))
	return musicPath, nil
}

// uploadRecord is the persisted upload artifact. VideoID is filled in after
// a successful upload so a re-run never uploads the same project twice.
type uploadRecord struct {
	Metadata *models.VideoMetadata `json:"metadata"`
	VideoID  string                `json:"videoId,omitempty"`
}

func (p *Pipeline) uploadStage(ctx context.Context, ws *project.Workspace, cfg models.ProjectConfig, script, videoPath string) (string, error) {
	var record uploadRecord

	if ws.HasArtifact(project.ArtifactUploadMetadata) {
		data, err := ws.ReadArtifact(project.ArtifactUploadMetadata)
		if err != nil {
			return "", storageErr("upload", err)
		}
		if err := json.Unmarshal(data, &record); err != nil {
			return "", storageErr("upload", fmt.Errorf("corrupt upload metadata artifact: %w", err))
		}
	}

	if record.VideoID != "" {
		log.Printf("[Pipeline] Already uploaded as %s, skipping", record.VideoID)
		return record.VideoID, nil
	}

	if record.Metadata == nil {
		gen := p.scripts(cfg.AIModel)
		meta, err := gen.Metadata(ctx, cfg.VideoSubject, script)
		if err != nil {
			return "", collaboratorErr("upload", err)
		}
		record.Metadata = meta

		if err := p.writeUploadRecord(ws, &record); err != nil {
			return "", err
		}
	}

	videoID, err := p.uploader.Upload(ctx, videoPath, record.Metadata)
	if err != nil {
		return "", collaboratorErr("upload", err)
	}
	if videoID == "" {
		// Uploader skipped (no credentials); leave the record uploadable
		return "", nil
	}

	record.VideoID = videoID
	if err := p.writeUploadRecord(ws, &record); err != nil {
		return "", err
	}
	return videoID, nil
}

func (p *Pipeline) writeUploadRecord(ws *project.Workspace, record *uploadRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return storageErr("upload", err)
	}
	if err := ws.WriteArtifact(project.ArtifactUploadMetadata, data); err != nil {
		return storageErr("upload", err)
	}
	return nil
}

// splitSentences splits a script on the exact two-character delimiter ". "
// and drops empty fragments. Abbreviations and decimal numbers are split
// too; narration quality depends on the script model avoiding them.
func splitSentences(script string) []string {
	parts := strings.Split(script, ". ")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		sentences = append(sentences, part)
	}
	return sentences
}

// randomSong picks one mp3 from dir, or "" when none exist.
func randomSong(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[rand.Intn(len(matches))], nil
}
