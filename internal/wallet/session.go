package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/basketwatch/indexd/internal/domain"
)

// Session is a key-backed wallet session. The address is derived from the
// configured private key; Connect marks the session usable and SwitchNetwork
// retargets the chain the ledger should transact on.
type Session struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address

	mu        sync.RWMutex
	chainID   int64
	connected bool
}

// NewSession derives the account from cfg and creates a disconnected session
// on the given chain.
func NewSession(cfg KeyConfig, chainID int64) (*Session, error) {
	keyHex, err := LoadKey(cfg)
	if err != nil {
		return nil, err
	}

	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key: %w", err)
	}

	return &Session{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
		chainID:    chainID,
	}, nil
}

// Connected reports whether Connect has been called.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Address returns the checksummed account address.
func (s *Session) Address() string {
	return s.address.Hex()
}

// ChainID returns the currently selected chain.
func (s *Session) ChainID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chainID
}

// Connect marks the session connected. Idempotent.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

// SwitchNetwork retargets the session to another chain. The session must be
// connected first.
func (s *Session) SwitchNetwork(ctx context.Context, chainID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return fmt.Errorf("wallet: switch network: %w", domain.ErrWalletLocked)
	}
	s.chainID = chainID
	return nil
}

// PrivateKey exposes the signing key for the ledger's transaction signer.
func (s *Session) PrivateKey() *ecdsa.PrivateKey {
	return s.privateKey
}

// Compile-time interface check.
var _ domain.WalletSession = (*Session)(nil)
