package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Named artifacts within a workspace. Presence of an artifact is the cache
// checkpoint for its pipeline stage.
const (
	ArtifactMetadata       = "metadata.json"
	ArtifactScript         = "script.txt"
	ArtifactSearchTerms    = "search_terms.json"
	ArtifactSubtitles      = "subtitles.srt"
	ArtifactNarration      = "audio_parts/tts.mp3"
	ArtifactCombinedVideo  = "output/combined.mp4"
	ArtifactFinalVideo     = "output/final.mp4"
	ArtifactFinalWithMusic = "output/final_music.mp4"
	ArtifactUploadMetadata = "upload_metadata.json"
)

// Identity returns the stable project fingerprint for a subject: the sha256
// hex digest of the subject text. Same subject, same identity, same workspace.
func Identity(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}

// Workspace is the durable namespace holding all artifacts for one project
// identity. It is the single source of truth for resumability: a stage whose
// artifact exists is skipped and the artifact read back in its place.
type Workspace struct {
	root string
}

// Open maps an identity to its workspace directory under baseDir, creating
// the root and every fixed sub-area if absent. Idempotent and safe to call
// repeatedly; a storage error here is fatal for the whole invocation.
func Open(baseDir, identity string) (*Workspace, error) {
	w := &Workspace{root: filepath.Join(baseDir, identity)}

	// Fixed sub-areas, created in full before any stage runs
	for _, dir := range []string{w.Root(), w.VideoDir(), w.AudioDir(), w.OutputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace dir %s: %w", dir, err)
		}
	}

	return w, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Path returns the stable on-disk location of a named artifact. Names may
// contain forward slashes to address the fixed sub-areas.
func (w *Workspace) Path(artifact string) string {
	return filepath.Join(w.root, filepath.FromSlash(artifact))
}

// VideoDir returns the sub-area holding acquired stock clips.
func (w *Workspace) VideoDir() string {
	return filepath.Join(w.root, "video")
}

// AudioDir returns the sub-area holding narration segments and the
// concatenated narration track.
func (w *Workspace) AudioDir() string {
	return filepath.Join(w.root, "audio_parts")
}

// OutputDir returns the sub-area holding the combined and final videos.
func (w *Workspace) OutputDir() string {
	return filepath.Join(w.root, "output")
}

// HasArtifact reports whether the named artifact exists.
func (w *Workspace) HasArtifact(artifact string) bool {
	_, err := os.Stat(w.Path(artifact))
	return err == nil
}

// ReadArtifact returns the bytes of a named artifact.
func (w *Workspace) ReadArtifact(artifact string) ([]byte, error) {
	data, err := os.ReadFile(w.Path(artifact))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", artifact, err)
	}
	return data, nil
}

// WriteArtifact durably persists a named artifact.
func (w *Workspace) WriteArtifact(artifact string, data []byte) error {
	if err := os.WriteFile(w.Path(artifact), data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", artifact, err)
	}
	return nil
}

// RemoveArtifact deletes a named artifact if present.
func (w *Workspace) RemoveArtifact(artifact string) error {
	err := os.Remove(w.Path(artifact))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact %s: %w", artifact, err)
	}
	return nil
}

// WriteMetadata persists the project metadata document at the workspace root.
func (w *Workspace) WriteMetadata(meta map[string]interface{}) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return w.WriteArtifact(ArtifactMetadata, data)
}

// ReadMetadata reads back the project metadata document.
func (w *Workspace) ReadMetadata() (map[string]interface{}, error) {
	data, err := w.ReadArtifact(ArtifactMetadata)
	if err != nil {
		return nil, err
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return meta, nil
}

// Clips returns the acquired stock clip files in the video sub-area,
// lexically sorted for stable ordering across runs.
func (w *Workspace) Clips() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(w.VideoDir(), "*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// AudioParts returns the narration segment files in index order. Segments are
// named by their sentence index ("0.mp3", "1.mp3", ...); the concatenated
// narration track is excluded.
func (w *Workspace) AudioParts() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(w.AudioDir(), "*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("failed to list audio parts: %w", err)
	}

	type part struct {
		index int
		path  string
	}
	parts := make([]part, 0, len(paths))
	for _, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), ".mp3")
		i, err := strconv.Atoi(base)
		if err != nil {
			continue // not a numbered segment (e.g. the combined track)
		}
		parts = append(parts, part{index: i, path: p})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })

	sorted := make([]string, len(parts))
	for i, p := range parts {
		sorted[i] = p.path
	}
	return sorted, nil
}

// SegmentPath returns the location for the narration segment of sentence i.
func (w *Workspace) SegmentPath(i int) string {
	return filepath.Join(w.AudioDir(), fmt.Sprintf("%d.mp3", i))
}
