package lesson

import "time"

// Lesson represents a video lesson (videoaula)
type Lesson struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Progress tracks a student's position within a lesson
type Progress struct {
	UserID    int64     `json:"user_id"`
	LessonID  int64     `json:"lesson_id"`
	Seconds   int       `json:"seconds"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}
