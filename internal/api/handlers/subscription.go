package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// SubscriptionHandler handles subscription and entitlement requests
type SubscriptionHandler struct {
	subService subscription.Service
	logger     *logger.Logger
	validator  *validator.Validator
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subService subscription.Service, log *logger.Logger, val *validator.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
		logger:     log,
		validator:  val,
	}
}

// Me returns the authenticated user's subscription
func (h *SubscriptionHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	sub, err := h.subService.GetForUser(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSubscriptionDTO(sub))
}

// Entitlements returns the feature snapshot for the authenticated user
func (h *SubscriptionHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	ent, err := h.subService.EntitlementsForUser(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, ent)
}

// ChangePlan assigns a new plan to a student and records the audit entry
func (h *SubscriptionHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	changedBy, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	sub, err := h.subService.ChangePlan(r.Context(), req.StudentID, changedBy, req.NewPlan, req.Reason, req.TokensAdded)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"student_id": req.StudentID,
		"new_plan":   req.NewPlan,
		"changed_by": changedBy,
	}).Info("Plan changed")

	utils.WriteSuccess(w, http.StatusOK, dto.NewSubscriptionDTO(sub))
}

// PlanChanges returns the plan change audit trail for a student
func (h *SubscriptionHandler) PlanChanges(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid student ID"))
		return
	}

	logs, err := h.subService.PlanChanges(r.Context(), studentID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, logs)
}

// Cancel cancels the authenticated user's subscription in place
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.subService.Cancel(r.Context(), userID); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Subscription cancelled", nil)
}
