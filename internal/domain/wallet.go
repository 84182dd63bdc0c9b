package domain

import "context"

// WalletSession tracks the connected wallet used for trading. Implementations
// fail with ErrWalletLocked when an operation requires a connection that has
// not been established.
type WalletSession interface {
	Connected() bool
	Address() string
	ChainID() int64
	Connect(ctx context.Context) error
	SwitchNetwork(ctx context.Context, chainID int64) error
}
