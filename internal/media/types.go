// Package media defines shared types for the ytplay application.
package media

import "time"

// NoCodec is the codec value yt-dlp reports for a stream component that is absent.
const NoCodec = "none"

// Info is the subset of yt-dlp's info JSON that ytplay consumes.
type Info struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`       // Set when the selected format is a single direct URL
	Extractor string   `json:"extractor"` // e.g. "youtube"
	Duration  float64  `json:"duration"`  // Seconds, 0 if unknown or live
	FormatID  string   `json:"format_id"`
	VCodec    string   `json:"vcodec"`
	ACodec    string   `json:"acodec"`
	Formats   []Format `json:"formats"`
}

// Format is one entry of the available formats list.
type Format struct {
	FormatID string `json:"format_id"`
	URL      string `json:"url"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
	Ext      string `json:"ext"`
	Height   int    `json:"height"`
}

// HasVideo reports whether the format carries a video track.
func (f Format) HasVideo() bool {
	return f.VCodec != NoCodec
}

// Stream is a resolved, directly playable media URL.
type Stream struct {
	URL       string  `json:"url"`
	Title     string  `json:"title,omitempty"`
	FormatID  string  `json:"format_id,omitempty"`
	VCodec    string  `json:"vcodec,omitempty"`
	ACodec    string  `json:"acodec,omitempty"`
	Extractor string  `json:"extractor,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// HistoryEntry records one playback session.
type HistoryEntry struct {
	ID         string    // Session UUID
	Source     string    // URL as entered by the user
	Title      string    // Title reported by the extractor
	Player     string    // Engine name, e.g. "mpv"
	StartedAt  time.Time // When playback was started
	FinishedAt time.Time // When the session ended
	FinalState string    // Last observed player state
}
