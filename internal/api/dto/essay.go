package dto

// SubmitEssayRequest submits an essay for correction
type SubmitEssayRequest struct {
	ThemeID int64  `json:"themeId" validate:"required"`
	FileURL string `json:"fileUrl" validate:"required,url"`
}

// CompleteCorrectionRequest records a finished correction
type CompleteCorrectionRequest struct {
	Status            string `json:"status" validate:"required,oneof=done rejected"`
	Score             *int   `json:"score,omitempty" validate:"omitempty,gte=0,lte=1000"`
	CorrectionFileURL string `json:"correctionFileUrl,omitempty" validate:"omitempty,url"`
	AudioFileURL      string `json:"audioFileUrl,omitempty" validate:"omitempty,url"`
}

// CreateThemeRequest creates an essay prompt
type CreateThemeRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty"`
}

// UpdateThemeRequest updates an essay prompt
type UpdateThemeRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// EssayNotificationRequest asks the server to notify professors about a
// submitted essay
type EssayNotificationRequest struct {
	EssayID int64 `json:"essayId" validate:"required"`
}
