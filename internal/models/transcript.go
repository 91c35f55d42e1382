package models

// TranscriptEntry is the cached transcript for one video
type TranscriptEntry struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	// Length is the number of caption segments, not the rendered length.
	Length int `json:"length"`
}

// TranscriptSegment is a single caption line as returned by the video host
type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}
