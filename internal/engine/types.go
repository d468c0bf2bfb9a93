package engine

// --- Core guide types ---

// GuideRequest is the inbound request shape shared by the HTTP API and MCP tools.
type GuideRequest struct {
	URL              string `json:"url" jsonschema:"YouTube video URL (youtu.be, watch?v=, shorts)"`
	ManualTranscript string `json:"manualTranscript,omitempty" jsonschema:"Optional transcript text; bypasses remote caption fetching"`
	Language         string `json:"language,omitempty" jsonschema:"Preferred caption language code (default: configured, usually en)"`
}

// VideoMetadata holds the cosmetic fields of a video. Every field has a
// non-empty fallback, so a populated VideoMetadata always exists.
type VideoMetadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Thumbnail string `json:"thumbnail"`
}

// CaptionLine is one caption item as delivered by a provider.
type CaptionLine struct {
	Start float64 `json:"start"` // seconds, fractional
	Text  string  `json:"text"`
}

// StepCandidate is one raw step as returned by the synthesizer, before
// enrichment. Field names mirror the enforced output schema.
type StepCandidate struct {
	Title       string `json:"title"`
	Description string `json:"description"` // markdown prose
	Timestamp   int    `json:"timestamp"`   // seconds into the video
}

// GuideStep is a candidate plus derived media references. ImageURL and
// VideoURL are always overwritten by the enricher, never model-supplied.
type GuideStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   int    `json:"timestamp"`
	ImageURL    string `json:"imageUrl"`
	VideoURL    string `json:"videoUrl"`
}

// GuideData is the sole output of a successful pipeline run. It is assembled
// only after every stage succeeds and is never mutated afterwards.
type GuideData struct {
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Thumbnail string      `json:"thumbnail"`
	VideoID   string      `json:"videoId"`
	Steps     []GuideStep `json:"steps"`
}

// TranscriptResult is the transcript-only response shape: resolved id,
// metadata, and the formatted transcript blob.
type TranscriptResult struct {
	VideoID    string `json:"videoId"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Thumbnail  string `json:"thumbnail"`
	Transcript string `json:"transcript"`
}

// GuideExportInput asks the export tool to run the full pipeline and write
// the finished guide to disk.
type GuideExportInput struct {
	URL              string `json:"url" jsonschema:"YouTube video URL (youtu.be, watch?v=, shorts)"`
	ManualTranscript string `json:"manualTranscript,omitempty" jsonschema:"Optional transcript text; bypasses remote caption fetching"`
	Language         string `json:"language,omitempty" jsonschema:"Preferred caption language code (default: configured, usually en)"`
	Format           string `json:"format,omitempty" jsonschema:"Export format: pdf (default) or md"`
}

// GuideExportOutput reports where an exported guide was written.
type GuideExportOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Title  string `json:"title"`
	Steps  int    `json:"steps"`
}

// --- Synthesizer wire types ---

// guideResponse is the enforced shape of the model output.
type guideResponse struct {
	Steps []StepCandidate `json:"steps"`
}
