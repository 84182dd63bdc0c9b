package domain

import (
	"context"
	"math/big"
)

// Receipt confirms a submitted on-chain operation.
type Receipt struct {
	ID        string `json:"id"`
	TxHash    string `json:"txHash"`
	Block     uint64 `json:"block"`
	GasUsed   uint64 `json:"gasUsed"`
	Succeeded bool   `json:"succeeded"`
}

// Ledger performs the on-chain token operations behind minting and redeeming
// index tokens. Amounts are in the collateral token's smallest unit.
type Ledger interface {
	// Balance returns the collateral token balance of account.
	Balance(ctx context.Context, account string) (*big.Int, error)

	// Allowance returns how much spender may move on owner's behalf.
	Allowance(ctx context.Context, owner, spender string) (*big.Int, error)

	// Approve grants spender permission to move amount of collateral.
	Approve(ctx context.Context, spender string, amount *big.Int) (Receipt, error)

	// Deposit supplies collateral to an index vault, minting index tokens.
	Deposit(ctx context.Context, vault string, amount *big.Int) (Receipt, error)

	// Withdraw redeems index tokens from a vault for collateral.
	Withdraw(ctx context.Context, vault string, amount *big.Int) (Receipt, error)
}
