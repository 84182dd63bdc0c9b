// Package handler implements the HTTP handlers behind the dashboard API.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/basketwatch/indexd/internal/service"
)

// IndexHandler serves the index resolution endpoints.
type IndexHandler struct {
	indexes *service.IndexService
	logger  *slog.Logger
}

// NewIndexHandler creates an IndexHandler.
func NewIndexHandler(indexes *service.IndexService, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{indexes: indexes, logger: logger}
}

// ListIndexes returns the lightweight view of every catalogued index.
// GET /api/indexes
func (h *IndexHandler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.indexes.ListBasic(r.Context()))
}

// GetIndex returns the full view of one index, constituents included.
// GET /api/indexes/{id}
func (h *IndexHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing index id")
		return
	}
	writeJSON(w, http.StatusOK, h.indexes.Get(r.Context(), id))
}

// GetHistory returns the index-level trade series, oldest first.
// GET /api/indexes/{id}/history
func (h *IndexHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing index id")
		return
	}
	writeJSON(w, http.StatusOK, h.indexes.History(r.Context(), id))
}

// GetOrderBook returns the aggregated order book keyed by asset id.
// GET /api/indexes/{id}/orderbook
func (h *IndexHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing index id")
		return
	}
	writeJSON(w, http.StatusOK, h.indexes.OrderBook(r.Context(), id))
}

// GetCandles returns OHLCV candles bucketed by the "hours" query parameter,
// defaulting to 24-hour candles.
// GET /api/indexes/{id}/candles?hours=N
func (h *IndexHandler) GetCandles(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing index id")
		return
	}

	hours := queryInt(r, "hours", 24)
	candles, err := h.indexes.Candles(r.Context(), id, hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, candles)
}
