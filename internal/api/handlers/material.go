package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/domain/material"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// MaterialHandler handles didactic material requests
type MaterialHandler struct {
	materialService material.Service
	subService      subscription.Service
	logger          *logger.Logger
	validator       *validator.Validator
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(
	materialService material.Service,
	subService subscription.Service,
	log *logger.Logger,
	val *validator.Validator,
) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		subService:      subService,
		logger:          log,
		validator:       val,
	}
}

func (h *MaterialHandler) requireMateriais(w http.ResponseWriter, r *http.Request) bool {
	if middleware.IsStaff(r) {
		return true
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return false
	}

	allowed, err := h.subService.HasFeature(r.Context(), userID, subscription.FeatureMateriais)
	if err != nil {
		utils.WriteAppError(w, err)
		return false
	}
	if !allowed {
		utils.WriteError(w, errors.FeatureLocked(string(subscription.FeatureMateriais)))
		return false
	}
	return true
}

// List lists materials for entitled users
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireMateriais(w, r) {
		return
	}

	materials, err := h.materialService.List(r.Context())
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, materials)
}

// Get retrieves a material for entitled users
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireMateriais(w, r) {
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid material ID"))
		return
	}

	m, err := h.materialService.Get(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, m)
}

// Create creates a material
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	m, err := h.materialService.Create(r.Context(), req.Title, req.Description, req.FileURL)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, m)
}

// Update updates a material
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid material ID"))
		return
	}

	var req dto.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	m, err := h.materialService.Get(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	m.Title = req.Title
	m.Description = req.Description
	m.FileURL = req.FileURL

	if err := h.materialService.Update(r.Context(), m); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, m)
}

// Delete deletes a material
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid material ID"))
		return
	}

	if err := h.materialService.Delete(r.Context(), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Material deleted", nil)
}
