package essay

import "time"

// Essay represents a submitted essay and its correction state
type Essay struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ThemeID     int64      `json:"theme_id"`
	FileURL     string     `json:"file_url"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Correction  Correction `json:"correction"`
}

// Correction is mutated once, by the assigned professor completing it
type Correction struct {
	Status            string     `json:"status"`
	Score             *int       `json:"score,omitempty"`
	AssignedTo        *int64     `json:"assigned_to,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CorrectionFileURL string     `json:"correction_file_url,omitempty"`
	AudioFileURL      string     `json:"audio_file_url,omitempty"`
}

// Correction status
const (
	CorrectionPending  = "pending"
	CorrectionDone     = "done"
	CorrectionRejected = "rejected"
)

// Theme is an essay prompt (proposta)
type Theme struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
