package handler

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/basketwatch/indexd/internal/service"
)

// TradeHandler serves the mint, redeem, and balance endpoints.
type TradeHandler struct {
	trades *service.TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(trades *service.TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, logger: logger}
}

// tradeRequest is the body of mint and redeem requests. Amount is a decimal
// string in the collateral token's smallest unit.
type tradeRequest struct {
	IndexID string `json:"index_id"`
	Amount  string `json:"amount"`
}

// parse validates the request body and converts the amount.
func (req *tradeRequest) parse(r *http.Request) (*big.Int, string) {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, "invalid request body"
	}
	if req.IndexID == "" {
		return nil, "missing index_id"
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, "amount must be a positive decimal string"
	}
	return amount, ""
}

// Mint deposits collateral into an index vault, minting index tokens.
// POST /api/trade/mint
func (h *TradeHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	amount, msg := req.parse(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	receipt, err := h.trades.Mint(r.Context(), req.IndexID, amount)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "mint failed",
			slog.String("index_id", req.IndexID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// Redeem withdraws index tokens from a vault back into collateral.
// POST /api/trade/redeem
func (h *TradeHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	amount, msg := req.parse(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	receipt, err := h.trades.Redeem(r.Context(), req.IndexID, amount)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "redeem failed",
			slog.String("index_id", req.IndexID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// Balance returns the session account's collateral balance.
// GET /api/trade/balance
func (h *TradeHandler) Balance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.trades.Balance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address": h.trades.Address(),
		"balance": bal.String(),
	})
}
