package dto

// CreateLessonRequest creates a video lesson
type CreateLessonRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl" validate:"required,url"`
	Position    int    `json:"position" validate:"gte=0"`
}

// SaveProgressRequest records a student's position within a lesson
type SaveProgressRequest struct {
	Seconds   int  `json:"seconds" validate:"gte=0"`
	Completed bool `json:"completed"`
}

// CreateMaterialRequest creates a didactic material
type CreateMaterialRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty"`
	FileURL     string `json:"fileUrl" validate:"required,url"`
}

// OpenTicketRequest opens a chat ticket
type OpenTicketRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Body    string `json:"body" validate:"required,min=1"`
}

// ReplyRequest appends a message to a ticket
type ReplyRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}
