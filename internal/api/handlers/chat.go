package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/api/dto"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/domain/chat"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
)

// ChatHandler handles support ticket requests
type ChatHandler struct {
	chatService chat.Service
	subService  subscription.Service
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	chatService chat.Service,
	subService subscription.Service,
	log *logger.Logger,
	val *validator.Validator,
) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		subService:  subService,
		logger:      log,
		validator:   val,
	}
}

func (h *ChatHandler) requireChat(w http.ResponseWriter, r *http.Request) bool {
	if middleware.IsStaff(r) {
		return true
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return false
	}

	allowed, err := h.subService.HasFeature(r.Context(), userID, subscription.FeatureChat)
	if err != nil {
		utils.WriteAppError(w, err)
		return false
	}
	if !allowed {
		utils.WriteError(w, errors.FeatureLocked(string(subscription.FeatureChat)))
		return false
	}
	return true
}

// Open opens a new ticket
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	if !h.requireChat(w, r) {
		return
	}

	userID, _ := middleware.GetUserID(r)

	var req dto.OpenTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	t, err := h.chatService.Open(r.Context(), userID, req.Subject, req.Body)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, t)
}

// ListMine lists the student's tickets
func (h *ChatHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	tickets, err := h.chatService.ListMine(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, tickets)
}

// ListOpen lists open tickets for professors
func (h *ChatHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.chatService.ListOpen(r.Context())
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, tickets)
}

// Get retrieves a ticket with its messages
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid ticket ID"))
		return
	}

	t, messages, err := h.chatService.Get(r.Context(), userID, middleware.IsStaff(r), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"ticket":   t,
		"messages": messages,
	})
}

// Reply appends a message to a ticket
func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid ticket ID"))
		return
	}

	var req dto.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	msg, err := h.chatService.Reply(r.Context(), userID, middleware.IsStaff(r), id, req.Body)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, msg)
}

// Close closes a ticket
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid ticket ID"))
		return
	}

	if err := h.chatService.Close(r.Context(), userID, middleware.IsStaff(r), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Ticket closed", nil)
}
