package handler

import (
	"log/slog"
	"net/http"

	"github.com/basketwatch/indexd/internal/service"
)

// CacheHandler serves the cache administration endpoint.
type CacheHandler struct {
	indexes *service.IndexService
	logger  *slog.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(indexes *service.IndexService, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{indexes: indexes, logger: logger}
}

// ClearCache drops all cached market data and resolved indexes.
// POST /api/cache/clear
func (h *CacheHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.indexes.ClearCache(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "cache clear failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
