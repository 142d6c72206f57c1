package models

// Defaults applied when a request field is absent or empty. Malformed or
// missing fields never fail a request — they fall back to these values.
const (
	DefaultVoice             = "en_us_001"
	DefaultParagraphNumber   = 1
	DefaultAIModel           = "gpt-3.5-turbo-1106"
	DefaultThreads           = 2
	DefaultSubtitlesPosition = "center,bottom"
	DefaultSubtitlesColor    = "Yellow"
)

// GenerateRequest is the body of POST /api/generate.
// Field names mirror the frontend payload exactly.
type GenerateRequest struct {
	VideoSubject          string `json:"videoSubject"`
	CustomPrompt          string `json:"customPrompt"`
	Voice                 string `json:"voice"`
	ParagraphNumber       int    `json:"paragraphNumber"`
	AIModel               string `json:"aiModel"`
	Threads               int    `json:"threads"`
	SubtitlesPosition     string `json:"subtitlesPosition"`
	Color                 string `json:"color"`
	UseMusic              bool   `json:"useMusic"`
	AutomateYoutubeUpload bool   `json:"automateYoutubeUpload"`
}

// ProjectConfig is the immutable parameter set for one generation run,
// built once per request with all defaults resolved.
type ProjectConfig struct {
	VideoSubject          string
	CustomPrompt          string
	Voice                 string
	ParagraphNumber       int
	AIModel               string
	Threads               int
	SubtitlesPosition     string
	Color                 string
	UseMusic              bool
	AutomateYoutubeUpload bool
}

// NewProjectConfig builds a ProjectConfig from a request, filling every
// absent/empty field with its default.
func NewProjectConfig(req GenerateRequest) ProjectConfig {
	cfg := ProjectConfig{
		VideoSubject:          req.VideoSubject,
		CustomPrompt:          req.CustomPrompt,
		Voice:                 req.Voice,
		ParagraphNumber:       req.ParagraphNumber,
		AIModel:               req.AIModel,
		Threads:               req.Threads,
		SubtitlesPosition:     req.SubtitlesPosition,
		Color:                 req.Color,
		UseMusic:              req.UseMusic,
		AutomateYoutubeUpload: req.AutomateYoutubeUpload,
	}

	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.ParagraphNumber <= 0 {
		cfg.ParagraphNumber = DefaultParagraphNumber
	}
	if cfg.AIModel == "" {
		cfg.AIModel = DefaultAIModel
	}
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.SubtitlesPosition == "" {
		cfg.SubtitlesPosition = DefaultSubtitlesPosition
	}
	if cfg.Color == "" {
		cfg.Color = DefaultSubtitlesColor
	}

	return cfg
}

// VoicePrefix returns the two-letter language prefix of the configured voice
// (e.g. "en" for "en_us_001"), used for subtitle alignment.
func (c ProjectConfig) VoicePrefix() string {
	if len(c.Voice) < 2 {
		return c.Voice
	}
	return c.Voice[:2]
}

// Metadata is the workspace metadata document persisted at the project root.
func (c ProjectConfig) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"title":                 c.VideoSubject,
		"customPrompt":          c.CustomPrompt,
		"voice":                 c.Voice,
		"aiModel":               c.AIModel,
		"subtitlesPosition":     c.SubtitlesPosition,
		"color":                 c.Color,
		"useMusic":              c.UseMusic,
		"automateYoutubeUpload": c.AutomateYoutubeUpload,
	}
}

// VideoMetadata is generated from the finished script and used for the
// YouTube upload (title, description, keyword tags).
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// GenerateResponse is the body of a successful POST /api/generate.
type GenerateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
