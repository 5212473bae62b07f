package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/service"
	"github.com/kireshiki/Universalis/pkg/apierror"
	"github.com/kireshiki/Universalis/pkg/response"
)

// UploadHandler accepts client snapshots and feeds them to the pipeline.
type UploadHandler struct {
	upload *service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(upload *service.UploadService) *UploadHandler {
	return &UploadHandler{upload: upload}
}

// Upload handles POST /upload/{apiKey}
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	apiKey := chi.URLParam(r, "apiKey")

	source, err := h.upload.Authenticate(r.Context(), apiKey)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.Error(w, apierror.Forbidden(""))
			return
		}
		response.Error(w, mapUploadError(err))
		return
	}

	var params model.UploadParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		response.Error(w, apierror.BadRequest("malformed upload body"))
		return
	}
	defer r.Body.Close()

	if err := h.upload.Process(r.Context(), source, &params); err != nil {
		response.Error(w, mapUploadError(err))
		return
	}

	response.OK(w, map[string]string{"status": "ok"})
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidUpload):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierror.GatewayTimeout("")
	default:
		return apierror.InternalError("")
	}
}
