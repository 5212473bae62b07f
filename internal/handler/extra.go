package handler

import (
	"net/http"

	"github.com/kireshiki/Universalis/internal/gamedata"
	"github.com/kireshiki/Universalis/internal/repository"
	"github.com/kireshiki/Universalis/pkg/apierror"
	"github.com/kireshiki/Universalis/pkg/response"
)

// ExtraHandler serves the ingestion side-products: per-world tax rates and
// the rolling upload-count history.
type ExtraHandler struct {
	resolver *gamedata.Resolver
	taxes    repository.TaxRatesRepository
	counts   repository.UploadCountRepository
}

// NewExtraHandler creates a new extra-data handler.
func NewExtraHandler(resolver *gamedata.Resolver, taxes repository.TaxRatesRepository, counts repository.UploadCountRepository) *ExtraHandler {
	return &ExtraHandler{resolver: resolver, taxes: taxes, counts: counts}
}

// TaxRates handles GET /api/v2/tax-rates?world={world}
func (h *ExtraHandler) TaxRates(w http.ResponseWriter, r *http.Request) {
	target, err := h.resolver.Resolve(r.URL.Query().Get("world"))
	if err != nil || !target.IsWorld() {
		response.Error(w, apierror.NotFound("unknown world"))
		return
	}

	rates, err := h.taxes.Retrieve(r.Context(), target.World.ID)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	if rates == nil {
		response.Error(w, apierror.NotFound("no tax rates reported for world"))
		return
	}
	response.OK(w, rates)
}

// UploadHistory handles GET /api/v2/extra/stats/upload-history
func (h *ExtraHandler) UploadHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.counts.Get(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, history)
}
