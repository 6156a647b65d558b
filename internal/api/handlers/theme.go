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

// ThemeHandler handles essay prompt requests
type ThemeHandler struct {
	essayService essay.Service
	logger       *logger.Logger
	validator    *validator.Validator
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(essayService essay.Service, log *logger.Logger, val *validator.Validator) *ThemeHandler {
	return &ThemeHandler{
		essayService: essayService,
		logger:       log,
		validator:    val,
	}
}

// List lists themes. Students only see active prompts; staff see everything.
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := !middleware.IsStaff(r)

	themes, err := h.essayService.ListThemes(r.Context(), activeOnly)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, themes)
}

// Get retrieves a theme
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid theme ID"))
		return
	}

	t, err := h.essayService.GetTheme(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, t)
}

// Create creates a new theme
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	t, err := h.essayService.CreateTheme(r.Context(), req.Title, req.Description)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, t)
}

// Update updates a theme
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid theme ID"))
		return
	}

	var req dto.UpdateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	t, err := h.essayService.GetTheme(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Active = req.Active

	if err := h.essayService.UpdateTheme(r.Context(), t); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, t)
}

// Retire deactivates a theme so it stops appearing to students
func (h *ThemeHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid theme ID"))
		return
	}

	if err := h.essayService.RetireTheme(r.Context(), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Theme retired", nil)
}
