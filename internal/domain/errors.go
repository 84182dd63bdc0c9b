package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	ErrWalletLocked  = errors.New("wallet not connected")
	ErrChainMismatch = errors.New("wrong chain")
	ErrTxReverted    = errors.New("transaction reverted")
	ErrWSDisconnect  = errors.New("websocket disconnected")
)
