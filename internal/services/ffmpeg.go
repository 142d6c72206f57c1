package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Output rendering constants — portrait 1080x1920 at 30fps.
const (
	outputWidth  = 1080
	outputHeight = 1920
	videoFPS     = 30

	subtitleFontName = "Noto Sans"
	subtitleFontSize = 20

	// Background music sits at 10% volume under the narration
	musicVolume = 0.1
)

// FFmpegService is the video compositing engine. All encoding runs through
// the ffmpeg/ffprobe binaries; threads is passed straight down as the
// encoder parallelism hint and bounds the parallel segment encodes in
// CombineClips.
type FFmpegService struct {
	tempDir string
}

var _ VideoComposer = (*FFmpegService)(nil)

func NewFFmpegService(tempDir string) *FFmpegService {
	// Create temp directory if it doesn't exist
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}

	return &FFmpegService{tempDir: tempDir}
}

// ConcatAudio joins narration segments into one MP3 track using the concat
// demuxer. Segments share codec settings, so the streams are copied.
func (s *FFmpegService) ConcatAudio(ctx context.Context, parts []string, target string) error {
	if len(parts) == 0 {
		return fmt.Errorf("no audio parts to concatenate")
	}

	listPath, err := s.writeConcatList(parts)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		target,
	}

	if err := s.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg audio concat failed: %w", err)
	}
	return nil
}

// AudioDuration returns the duration of a media file in seconds via ffprobe.
func (s *FFmpegService) AudioDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// CombineClips concatenates stock clips into one silent portrait video that
// covers maxDuration seconds. Clips are cycled in order until the target
// duration is filled; every segment is capped at maxClipDuration seconds and
// at an even share of the target (maxDuration / clip count). Segments are
// normalized (cropped, scaled, re-timed to 30fps, audio stripped) before the
// final concat; segment encodes run in parallel, bounded by threads.
func (s *FFmpegService) CombineClips(ctx context.Context, clips []string, maxDuration, maxClipDuration float64, threads int, target string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to combine")
	}
	if threads < 1 {
		threads = 1
	}

	durations := make([]float64, len(clips))
	for i, clip := range clips {
		d, err := s.AudioDuration(ctx, clip)
		if err != nil {
			return fmt.Errorf("failed to probe clip %s: %w", clip, err)
		}
		durations[i] = d
	}

	// Plan segments: cycle the clips, trimming each use so no single segment
	// dominates and the total lands on maxDuration.
	type segment struct {
		source string
		length float64
		path   string
	}

	reqDur := maxDuration / float64(len(clips))
	var segments []segment
	total := 0.0
	for total < maxDuration {
		progressed := false
		for i, clip := range clips {
			if total >= maxDuration {
				break
			}

			length := durations[i]
			if reqDur < length {
				length = reqDur
			}
			if maxClipDuration < length {
				length = maxClipDuration
			}
			if remaining := maxDuration - total; remaining < length {
				length = remaining
			}
			if length <= 0 {
				continue
			}

			segments = append(segments, segment{
				source: clip,
				length: length,
				path:   filepath.Join(s.tempDir, fmt.Sprintf("seg_%s.mp4", uuid.NewString())),
			})
			total += length
			progressed = true
		}
		if !progressed {
			break // all clips empty or unusable; avoid spinning forever
		}
	}

	if len(segments) == 0 {
		return fmt.Errorf("no usable clip segments for %0.1fs of video", maxDuration)
	}

	log.Printf("[FFmpeg] Combining %d clips into %d segments (%.1fs total, threads=%d)",
		len(clips), len(segments), total, threads)

	// Encode segments in parallel, bounded by the caller's thread hint
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for _, seg := range segments {
		g.Go(func() error {
			return s.encodeSegment(gctx, seg.source, seg.length, seg.path)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("segment encode failed: %w", err)
	}

	segPaths := make([]string, len(segments))
	for i, seg := range segments {
		segPaths[i] = seg.path
	}
	defer s.cleanup(segPaths...)

	listPath, err := s.writeConcatList(segPaths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy", // Segments are already uniform; no re-encode
		"-y",
		target,
	}

	if err := s.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg clip concat failed: %w", err)
	}
	return nil
}

// encodeSegment trims one clip use to length seconds and normalizes it to
// the portrait output format with no audio track.
func (s *FFmpegService) encodeSegment(ctx context.Context, source string, length float64, target string) error {
	// Crop to 9:16 around the center, then scale to the output resolution
	vf := fmt.Sprintf(
		"crop='min(iw,ih*%d/%d)':'min(ih,iw*%d/%d)',scale=%d:%d,fps=%d",
		outputWidth, outputHeight, outputHeight, outputWidth,
		outputWidth, outputHeight, videoFPS,
	)

	args := []string{
		"-i", source,
		"-t", fmt.Sprintf("%.3f", length),
		"-vf", vf,
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y",
		target,
	}

	if err := s.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg segment encode failed (%s): %w", source, err)
	}
	return nil
}

// Compose overlays the narration audio and the subtitle track onto the
// combined video. position is "horizontal,vertical" (e.g. "center,bottom");
// color is a named or #RRGGBB subtitle color.
func (s *FFmpegService) Compose(ctx context.Context, videoPath, audioPath, subtitlesPath, position, color string, threads int, target string) error {
	if threads < 1 {
		threads = 1
	}

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
	}

	if subtitlesPath != "" {
		style := fmt.Sprintf("FontName=%s,Fontsize=%d,Alignment=%d,PrimaryColour=%s",
			subtitleFontName, subtitleFontSize, subtitleAlignment(position), assColor(color))
		vf := fmt.Sprintf("subtitles='%s':force_style='%s'", escapeFFmpegFilterPath(subtitlesPath), style)
		args = append(args, "-vf", vf)
		log.Printf("[FFmpeg] Burning in subtitles from %s (position=%s, color=%s)", subtitlesPath, position, color)
	}

	args = append(args,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", threads),
		"-shortest",
		"-y",
		target,
	)

	if err := s.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg compose failed: %w", err)
	}
	return nil
}

// MixMusic loops background music under the video's existing audio. The
// music is cut when the video ends and held at low volume so the narration
// stays dominant.
func (s *FFmpegService) MixMusic(ctx context.Context, videoPath, musicPath, target string, threads int) error {
	if musicPath == "" {
		log.Printf("[FFmpeg] No background music path provided, skipping")
		return nil
	}

	if _, err := os.Stat(musicPath); os.IsNotExist(err) {
		log.Printf("[FFmpeg] Background music file not found at %s, skipping", musicPath)
		return nil
	}
	if threads < 1 {
		threads = 1
	}

	log.Printf("[FFmpeg] Mixing background music from %s", musicPath)

	// [0:a] narration at full volume, [1:a] music at musicVolume;
	// amix duration=first ends the mix when the video's audio ends.
	filterComplex := fmt.Sprintf(
		"[0:a]volume=1.0[narration];[1:a]volume=%.2f[music];[narration][music]amix=inputs=2:duration=first:dropout_transition=3[aout]",
		musicVolume,
	)

	args := []string{
		"-i", videoPath,
		"-stream_loop", "-1",
		"-i", musicPath,
		"-filter_complex", filterComplex,
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-threads", fmt.Sprintf("%d", threads),
		"-shortest",
		"-y",
		target,
	}

	if err := s.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg mix background music failed: %w", err)
	}
	return nil
}

func (s *FFmpegService) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// writeConcatList writes an ffmpeg concat-demuxer list file for the paths.
func (s *FFmpegService) writeConcatList(paths []string) (string, error) {
	listPath := filepath.Join(s.tempDir, fmt.Sprintf("concat_%s.txt", uuid.NewString()))
	f, err := os.Create(listPath)
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		fmt.Fprintf(f, "file '%s'\n", abs)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	return listPath, nil
}

func (s *FFmpegService) cleanup(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

// escapeFFmpegFilterPath escapes special characters in file paths for FFmpeg filter syntax.
// FFmpeg filter strings treat colons, backslashes, and single quotes specially.
func escapeFFmpegFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

// subtitleAlignment maps a "horizontal,vertical" position string to the ASS
// numpad alignment used by force_style (1-3 bottom, 4-6 middle, 7-9 top).
func subtitleAlignment(position string) int {
	horizontal, vertical := "center", "bottom"
	if parts := strings.SplitN(position, ",", 2); len(parts) == 2 {
		horizontal = strings.TrimSpace(strings.ToLower(parts[0]))
		vertical = strings.TrimSpace(strings.ToLower(parts[1]))
	}

	base := 1 // bottom row
	switch vertical {
	case "center", "middle":
		base = 4
	case "top":
		base = 7
	}

	offset := 1 // center column
	switch horizontal {
	case "left":
		offset = 0
	case "right":
		offset = 2
	}

	return base + offset
}

// assColor maps a named or #RRGGBB color to the &HAABBGGRR form that ASS
// styling expects (note: BGR, not RGB).
func assColor(color string) string {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "white":
		return "&H00FFFFFF"
	case "black":
		return "&H00000000"
	case "red":
		return "&H000000FF"
	case "green":
		return "&H0000FF00"
	case "blue":
		return "&H00FF0000"
	case "orange":
		return "&H0000A5FF"
	case "yellow":
		return "&H0000FFFF"
	}

	// #RRGGBB → swap to BGR
	c := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(c) == 6 {
		return fmt.Sprintf("&H00%s%s%s", c[4:6], c[2:4], c[0:2])
	}

	return "&H0000FFFF" // default: yellow
}
