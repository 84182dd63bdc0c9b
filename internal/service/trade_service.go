package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/index"
)

// TradeService drives the mint and redeem flows: it connects the wallet
// session, secures the collateral allowance, and moves funds through the
// index vault on chain.
type TradeService struct {
	catalog *index.Catalog
	session domain.WalletSession
	ledger  domain.Ledger
	logger  *slog.Logger
}

// NewTradeService creates a TradeService.
func NewTradeService(catalog *index.Catalog, session domain.WalletSession, ledger domain.Ledger, logger *slog.Logger) *TradeService {
	return &TradeService{
		catalog: catalog,
		session: session,
		ledger:  ledger,
		logger:  logger,
	}
}

// Mint deposits amount of collateral into the index's vault, minting index
// tokens for the session account. The collateral allowance is topped up
// first when it does not cover the amount.
func (s *TradeService) Mint(ctx context.Context, indexID string, amount *big.Int) (domain.Receipt, error) {
	vault, err := s.vaultFor(indexID)
	if err != nil {
		return domain.Receipt{}, err
	}
	if err := s.ensureConnected(ctx); err != nil {
		return domain.Receipt{}, err
	}

	allowance, err := s.ledger.Allowance(ctx, s.session.Address(), vault)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("trade_service: allowance: %w", err)
	}
	if allowance.Cmp(amount) < 0 {
		receipt, err := s.ledger.Approve(ctx, vault, amount)
		if err != nil {
			return receipt, fmt.Errorf("trade_service: approve: %w", err)
		}
		s.logger.InfoContext(ctx, "allowance approved",
			slog.String("index_id", indexID),
			slog.String("tx_hash", receipt.TxHash),
		)
	}

	receipt, err := s.ledger.Deposit(ctx, vault, amount)
	if err != nil {
		return receipt, fmt.Errorf("trade_service: deposit: %w", err)
	}

	s.logger.InfoContext(ctx, "minted index tokens",
		slog.String("index_id", indexID),
		slog.String("amount", amount.String()),
		slog.String("tx_hash", receipt.TxHash),
	)
	return receipt, nil
}

// Redeem withdraws amount of index tokens from the index's vault back into
// collateral for the session account.
func (s *TradeService) Redeem(ctx context.Context, indexID string, amount *big.Int) (domain.Receipt, error) {
	vault, err := s.vaultFor(indexID)
	if err != nil {
		return domain.Receipt{}, err
	}
	if err := s.ensureConnected(ctx); err != nil {
		return domain.Receipt{}, err
	}

	receipt, err := s.ledger.Withdraw(ctx, vault, amount)
	if err != nil {
		return receipt, fmt.Errorf("trade_service: withdraw: %w", err)
	}

	s.logger.InfoContext(ctx, "redeemed index tokens",
		slog.String("index_id", indexID),
		slog.String("amount", amount.String()),
		slog.String("tx_hash", receipt.TxHash),
	)
	return receipt, nil
}

// Balance returns the session account's collateral balance.
func (s *TradeService) Balance(ctx context.Context) (*big.Int, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}
	bal, err := s.ledger.Balance(ctx, s.session.Address())
	if err != nil {
		return nil, fmt.Errorf("trade_service: balance: %w", err)
	}
	return bal, nil
}

// Address returns the session account address.
func (s *TradeService) Address() string {
	return s.session.Address()
}

// vaultFor resolves an index id to its vault contract address.
func (s *TradeService) vaultFor(indexID string) (string, error) {
	def, err := s.catalog.Lookup(indexID)
	if err != nil {
		return "", fmt.Errorf("trade_service: %w", err)
	}
	if def.ContractAddress == "" {
		return "", fmt.Errorf("trade_service: index %q has no vault contract: %w", indexID, domain.ErrNotFound)
	}
	return def.ContractAddress, nil
}

// ensureConnected lazily connects the wallet session.
func (s *TradeService) ensureConnected(ctx context.Context) error {
	if s.session.Connected() {
		return nil
	}
	if err := s.session.Connect(ctx); err != nil {
		return fmt.Errorf("trade_service: connect wallet: %w", err)
	}
	return nil
}
