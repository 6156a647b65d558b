package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// ResetHandler handles the password reset flow
type ResetHandler struct {
	resetService passwordreset.Service
	logger       *logger.Logger
	validator    *validator.Validator
}

// NewResetHandler creates a new reset handler
func NewResetHandler(resetService passwordreset.Service, log *logger.Logger, val *validator.Validator) *ResetHandler {
	return &ResetHandler{
		resetService: resetService,
		logger:       log,
		validator:    val,
	}
}

// SendResetEmail issues a reset token and emails the reset link. The response
// is identical whether or not the email matches an account.
func (h *ResetHandler) SendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.SendResetEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	if err := h.resetService.Request(r.Context(), req.Email); err != nil {
		h.logger.ErrorWithErr(err, "Failed to send reset email")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "If the email exists, a reset link has been sent", nil)
}

// ResetPassword validates the token and stages the new password
func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	result, err := h.resetService.SubmitNewPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// FinalizeReset authenticates the account and applies the staged password
func (h *ResetHandler) FinalizeReset(w http.ResponseWriter, r *http.Request) {
	var req dto.FinalizeResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	if err := h.resetService.Finalize(r.Context(), req.Email, req.CurrentPassword); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Password reset completed", nil)
}

// CheckResetPassword reports whether a credential pair currently authenticates
func (h *ResetHandler) CheckResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	valid, err := h.resetService.CheckCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.CheckResetPasswordResponse{Valid: valid})
}
