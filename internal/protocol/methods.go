package protocol

// Worker RPC method names.
const (
	MethodPing             = "ping"
	MethodGenerateCaptions = "generateCaptions"
	MethodDownloadModel    = "downloadModel"
	MethodCheckModelExists = "checkModelExists"
	MethodDeleteModel      = "deleteModel"
)

// CaptionSegment is one timed caption line, optionally carrying word-level
// timing when the transcription was split by words.
type CaptionSegment struct {
	StartMS uint64     `json:"startMs"`
	EndMS   uint64     `json:"endMs"`
	Text    string     `json:"text"`
	Words   []WordSpan `json:"words,omitempty"`
}

// WordSpan is word-level timing inside a caption segment.
type WordSpan struct {
	StartMS uint64 `json:"startMs"`
	EndMS   uint64 `json:"endMs"`
	Text    string `json:"text"`
}

// GenerateCaptionsParams drives the full captioning pipeline: probe, audio
// extraction, transcription, caption rendering, and per-format export.
type GenerateCaptionsParams struct {
	InputVideo         string   `json:"inputVideo"`
	ExportFormats      []string `json:"exportFormats"`
	Karaoke            bool     `json:"karaoke"`
	FontName           string   `json:"fontName,omitempty"`
	SplitByWords       bool     `json:"splitByWords"`
	Model              string   `json:"model,omitempty"`
	Language           string   `json:"language,omitempty"`
	Prompt             string   `json:"prompt,omitempty"`
	TextColor          string   `json:"textColor,omitempty"`
	HighlightWordColor string   `json:"highlightWordColor,omitempty"`
	OutlineColor       string   `json:"outlineColor,omitempty"`
	GlowEffect         bool     `json:"glowEffect"`
	Position           string   `json:"position,omitempty"`
	APIKey             string   `json:"apiKey,omitempty"`
}

// TranscribeResult summarizes a transcription pass.
type TranscribeResult struct {
	Segments []CaptionSegment `json:"segments"`
	FullText string           `json:"fullText"`
	Duration *float64         `json:"duration,omitempty"`
	JSONFile string           `json:"jsonFile"`
}

// CaptionedVideo is one exported video for a given aspect-ratio format.
type CaptionedVideo struct {
	Format          string `json:"format"`
	RawVideo        string `json:"rawVideo"`
	CaptionedVideo  string `json:"captionedVideo"`
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
}

// GenerateCaptionsResult is the terminal payload of generateCaptions.
type GenerateCaptionsResult struct {
	AudioFile       string           `json:"audioFile"`
	Transcription   TranscribeResult `json:"transcription"`
	CaptionedVideos []CaptionedVideo `json:"captionedVideos"`
}

// DownloadModelParams names the whisper model to fetch.
type DownloadModelParams struct {
	Model string `json:"model"`
}

// DownloadModelResult reports where the model landed and its size.
type DownloadModelResult struct {
	Model string `json:"model"`
	Path  string `json:"path"`
	Size  uint64 `json:"size"`
}

// DeleteModelParams names the whisper model to remove.
type DeleteModelParams struct {
	Model string `json:"model"`
}

// DeleteModelResult reports the removed model and its former path.
type DeleteModelResult struct {
	Model string `json:"model"`
	Path  string `json:"path"`
}
