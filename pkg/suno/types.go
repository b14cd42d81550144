// Package suno is a typed client for the Suno hackathon generation API.
// It wraps the three endpoints the workbench needs (generate, bulk clip
// lookup, stem separation) and maps failures into *APIError.
package suno

// Status is the lifecycle state the service reports for a clip.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusQueued    Status = "queued"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Succeeded reports whether the clip carries a usable result. The service
// starts serving audio while still streaming, so streaming counts.
func (s Status) Succeeded() bool {
	return s == StatusStreaming || s == StatusComplete
}

// Terminal reports whether polling should stop at this status.
func (s Status) Terminal() bool {
	return s.Succeeded() || s == StatusError
}

// GenerateRequest is the payload for a generation job.
type GenerateRequest struct {
	Topic            string `json:"topic,omitempty"`
	Tags             string `json:"tags,omitempty"`
	NegativeTags     string `json:"negative_tags,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	MakeInstrumental bool   `json:"make_instrumental"`
}

// Clip is the service's record of a generation or stem-separation job.
// Read-only on our side; relevant fields get mirrored into song nodes.
type Clip struct {
	ID            string         `json:"id"`
	RequestID     string         `json:"request_id,omitempty"`
	Status        Status         `json:"status"`
	Title         string         `json:"title,omitempty"`
	AudioURL      string         `json:"audio_url,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	ImageLargeURL string         `json:"image_large_url,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ErrorMessage returns the failure detail the service attached to an
// errored clip, or "" if there is none.
func (c Clip) ErrorMessage() string {
	if c.Metadata == nil {
		return ""
	}
	msg, _ := c.Metadata["error_message"].(string)
	return msg
}
