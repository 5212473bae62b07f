package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kireshiki/Universalis/internal/gamedata"
	"github.com/kireshiki/Universalis/internal/service"
	"github.com/kireshiki/Universalis/pkg/apierror"
	"github.com/kireshiki/Universalis/pkg/response"
)

// MarketHandler serves the current-listings and sale-history views.
type MarketHandler struct {
	market *service.MarketService
}

// NewMarketHandler creates a new market query handler.
func NewMarketHandler(market *service.MarketService) *MarketHandler {
	return &MarketHandler{market: market}
}

// CurrentListings handles GET /api/v2/{itemId}/{worldOrDc}
func (h *MarketHandler) CurrentListings(w http.ResponseWriter, r *http.Request) {
	itemID, token, ok := h.marketParams(w, r)
	if !ok {
		return
	}

	view, err := h.market.CurrentListings(r.Context(), itemID, token)
	if err != nil {
		response.Error(w, mapMarketError(err))
		return
	}
	response.OK(w, view)
}

// History handles GET /api/v2/history/{itemId}/{worldOrDc}
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	itemID, token, ok := h.marketParams(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("entries"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, apierror.BadRequest("entries must be an integer"))
			return
		}
		limit = n
	}

	view, err := h.market.History(r.Context(), itemID, token, limit)
	if err != nil {
		response.Error(w, mapMarketError(err))
		return
	}
	response.OK(w, view)
}

// marketParams parses and gate-checks the shared path parameters. Queries
// for unmarketable items or empty tokens are not servable.
func (h *MarketHandler) marketParams(w http.ResponseWriter, r *http.Request) (int32, string, bool) {
	rawItem := chi.URLParam(r, "itemId")
	token := chi.URLParam(r, "worldOrDc")

	itemID, err := strconv.ParseInt(rawItem, 10, 32)
	if err != nil {
		response.Error(w, apierror.NotFound("unknown item"))
		return 0, "", false
	}
	if token == "" || !h.market.IsMarketable(int32(itemID)) {
		response.Error(w, apierror.NotFound("unknown item or world"))
		return 0, "", false
	}
	return int32(itemID), token, true
}

func mapMarketError(err error) error {
	if errors.Is(err, gamedata.ErrUnknownWorldOrDc) {
		return apierror.NotFound("unknown world or data center")
	}
	return apierror.InternalError("")
}
