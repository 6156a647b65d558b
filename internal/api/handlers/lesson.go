package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/domain/lesson"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// LessonHandler handles video lesson requests
type LessonHandler struct {
	lessonService lesson.Service
	subService    subscription.Service
	logger        *logger.Logger
	validator     *validator.Validator
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(
	lessonService lesson.Service,
	subService subscription.Service,
	log *logger.Logger,
	val *validator.Validator,
) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		subService:    subService,
		logger:        log,
		validator:     val,
	}
}

// requireFeature checks the entitlement gate for students; staff pass through
func (h *LessonHandler) requireFeature(w http.ResponseWriter, r *http.Request, feature subscription.Feature) bool {
	if middleware.IsStaff(r) {
		return true
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return false
	}

	allowed, err := h.subService.HasFeature(r.Context(), userID, feature)
	if err != nil {
		utils.WriteAppError(w, err)
		return false
	}
	if !allowed {
		utils.WriteError(w, errors.FeatureLocked(string(feature)))
		return false
	}
	return true
}

// List lists lessons for entitled users
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireFeature(w, r, subscription.FeatureVideoaulas) {
		return
	}

	lessons, err := h.lessonService.List(r.Context())
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, lessons)
}

// Get retrieves a lesson for entitled users
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireFeature(w, r, subscription.FeatureVideoaulas) {
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid lesson ID"))
		return
	}

	l, err := h.lessonService.Get(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, l)
}

// Create creates a lesson
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	l, err := h.lessonService.Create(r.Context(), req.Title, req.Description, req.VideoURL, req.Position)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, l)
}

// Update updates a lesson
func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid lesson ID"))
		return
	}

	var req dto.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	l, err := h.lessonService.Get(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	l.Title = req.Title
	l.Description = req.Description
	l.VideoURL = req.VideoURL
	l.Position = req.Position

	if err := h.lessonService.Update(r.Context(), l); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, l)
}

// Delete deletes a lesson
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid lesson ID"))
		return
	}

	if err := h.lessonService.Delete(r.Context(), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Lesson deleted", nil)
}

// SaveProgress records the student's position within a lesson
func (h *LessonHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	if !h.requireFeature(w, r, subscription.FeatureVideoaulas) {
		return
	}

	userID, _ := middleware.GetUserID(r)

	lessonID, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid lesson ID"))
		return
	}

	var req dto.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	if err := h.lessonService.SaveProgress(r.Context(), userID, lessonID, req.Seconds, req.Completed); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Progress saved", nil)
}

// MyProgress lists the student's progress across lessons
func (h *LessonHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	progress, err := h.lessonService.ProgressFor(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, progress)
}
