package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/utils"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
	"github.com/mestre-da-redacao/backend/internal/storage"
)

// FileHandler hands out presigned URLs for the object store. Clients upload
// and download directly against the bucket; the API never proxies file bytes.
type FileHandler struct {
	store     *storage.Storage
	logger    *logger.Logger
	validator *validator.Validator
}

// NewFileHandler creates a new file handler
func NewFileHandler(store *storage.Storage, log *logger.Logger, val *validator.Validator) *FileHandler {
	return &FileHandler{
		store:     store,
		logger:    log,
		validator: val,
	}
}

type uploadURLRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=essay correction material"`
	Filename string `json:"filename" validate:"required"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// UploadURL returns a presigned PUT URL for a new object
func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	prefix := storage.PrefixEssays
	switch req.Kind {
	case "correction":
		prefix = storage.PrefixCorrections
	case "material":
		prefix = storage.PrefixMaterials
	}

	url, key, err := h.store.PresignedPutURL(r.Context(), prefix, req.Filename)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate upload URL")
		utils.WriteError(w, errors.StorageError(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, uploadURLResponse{UploadURL: url, Key: key})
}

// DownloadURL returns a presigned GET URL for an existing object
func (h *FileHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		utils.WriteError(w, errors.BadRequest("Missing object key"))
		return
	}

	url, err := h.store.PresignedGetURL(r.Context(), key)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate download URL")
		utils.WriteError(w, errors.StorageError(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{"downloadUrl": url})
}
