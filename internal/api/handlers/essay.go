package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// EssayHandler handles essay submission and correction requests
type EssayHandler struct {
	essayService essay.Service
	logger       *logger.Logger
	validator    *validator.Validator
}

// NewEssayHandler creates a new essay handler
func NewEssayHandler(essayService essay.Service, log *logger.Logger, val *validator.Validator) *EssayHandler {
	return &EssayHandler{
		essayService: essayService,
		logger:       log,
		validator:    val,
	}
}

// Submit handles essay submission
func (h *EssayHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.SubmitEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	e, err := h.essayService.Submit(r.Context(), userID, req.ThemeID, req.FileURL)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, e)
}

// ListMine lists the authenticated student's essays
func (h *EssayHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	params := utils.ParsePaginationParams(r)

	essays, total, err := h.essayService.ListMine(r.Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(essays, params.Page, params.PageSize, total))
}

// ListPending lists essays awaiting correction
func (h *EssayHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	essays, total, err := h.essayService.ListPending(r.Context(), params.PageSize, params.Offset)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(essays, params.Page, params.PageSize, total))
}

// Get retrieves a single essay
func (h *EssayHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid essay ID"))
		return
	}

	e, err := h.essayService.Get(r.Context(), userID, middleware.IsStaff(r), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, e)
}

// CompleteCorrection records a finished correction
func (h *EssayHandler) CompleteCorrection(w http.ResponseWriter, r *http.Request) {
	professorID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid essay ID"))
		return
	}

	var req dto.CompleteCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	e, err := h.essayService.CompleteCorrection(r.Context(), id, professorID, req.Status, req.Score, req.CorrectionFileURL, req.AudioFileURL)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"essay_id":     id,
		"professor_id": professorID,
		"status":       req.Status,
	}).Info("Correction completed")

	utils.WriteSuccess(w, http.StatusOK, e)
}

// Notify re-sends the professor notification for an essay
func (h *EssayHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req dto.EssayNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	if err := h.essayService.NotifyProfessors(r.Context(), req.EssayID); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Notification sent", nil)
}
