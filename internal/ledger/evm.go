// Package ledger executes the on-chain token operations behind minting and
// redeeming index tokens: collateral balance and allowance reads, approvals,
// and vault deposits/withdrawals.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"

	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/wallet"
)

const erc20ABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const vaultABIJSON = `[
	{"name":"deposit","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// EVMLedger implements domain.Ledger against a JSON-RPC endpoint. All
// transactions are signed with the session's key and submitted as EIP-1559
// dynamic-fee transactions; calls block until the transaction is mined.
type EVMLedger struct {
	client  *ethclient.Client
	session *wallet.Session
	token   common.Address
	erc20   abi.ABI
	vault   abi.ABI
	logger  *slog.Logger
}

// New dials the RPC endpoint and prepares the contract ABIs. token is the
// collateral token address used for balances, allowances, and approvals.
func New(ctx context.Context, rpcURL, token string, session *wallet.Session, logger *slog.Logger) (*EVMLedger, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", rpcURL, err)
	}

	erc20, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse erc20 abi: %w", err)
	}
	vault, err := abi.JSON(strings.NewReader(vaultABIJSON))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse vault abi: %w", err)
	}

	return &EVMLedger{
		client:  client,
		session: session,
		token:   common.HexToAddress(token),
		erc20:   erc20,
		vault:   vault,
		logger:  logger.With(slog.String("component", "ledger")),
	}, nil
}

// Close releases the RPC connection.
func (l *EVMLedger) Close() {
	l.client.Close()
}

// Balance returns the collateral balance of account.
func (l *EVMLedger) Balance(ctx context.Context, account string) (*big.Int, error) {
	data, err := l.erc20.Pack("balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, fmt.Errorf("ledger: pack balanceOf: %w", err)
	}
	return l.callUint(ctx, "balanceOf", data)
}

// Allowance returns how much spender may move on owner's behalf.
func (l *EVMLedger) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	data, err := l.erc20.Pack("allowance", common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, fmt.Errorf("ledger: pack allowance: %w", err)
	}
	return l.callUint(ctx, "allowance", data)
}

// Approve grants spender permission to move amount of collateral.
func (l *EVMLedger) Approve(ctx context.Context, spender string, amount *big.Int) (domain.Receipt, error) {
	data, err := l.erc20.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: pack approve: %w", err)
	}
	return l.submit(ctx, l.token, data)
}

// Deposit supplies collateral to an index vault, minting index tokens.
func (l *EVMLedger) Deposit(ctx context.Context, vault string, amount *big.Int) (domain.Receipt, error) {
	data, err := l.vault.Pack("deposit", amount)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: pack deposit: %w", err)
	}
	return l.submit(ctx, common.HexToAddress(vault), data)
}

// Withdraw redeems index tokens from a vault for collateral.
func (l *EVMLedger) Withdraw(ctx context.Context, vault string, amount *big.Int) (domain.Receipt, error) {
	data, err := l.vault.Pack("withdraw", amount)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: pack withdraw: %w", err)
	}
	return l.submit(ctx, common.HexToAddress(vault), data)
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// callUint performs a read-only contract call against the collateral token
// and unpacks a single uint256 result.
func (l *EVMLedger) callUint(ctx context.Context, method string, data []byte) (*big.Int, error) {
	out, err := l.client.CallContract(ctx, ethereum.CallMsg{To: &l.token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: call %s: %w", method, err)
	}

	results, err := l.erc20.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("ledger: unpack %s: %w", method, err)
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("ledger: %s: unexpected result count %d", method, len(results))
	}
	v, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("ledger: %s: unexpected result type %T", method, results[0])
	}
	return v, nil
}

// submit signs, sends, and waits for a transaction to the given contract.
// It requires a connected session whose selected chain matches the RPC
// endpoint's chain.
func (l *EVMLedger) submit(ctx context.Context, to common.Address, data []byte) (domain.Receipt, error) {
	if !l.session.Connected() {
		return domain.Receipt{}, fmt.Errorf("ledger: submit: %w", domain.ErrWalletLocked)
	}

	chainID, err := l.client.ChainID(ctx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: chain id: %w", err)
	}
	if chainID.Int64() != l.session.ChainID() {
		return domain.Receipt{}, fmt.Errorf("ledger: session on chain %d, node on %d: %w",
			l.session.ChainID(), chainID.Int64(), domain.ErrChainMismatch)
	}

	from := common.HexToAddress(l.session.Address())

	nonce, err := l.client.PendingNonceAt(ctx, from)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: nonce: %w", err)
	}

	gasTip, err := l.client.SuggestGasTipCap(ctx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: gas tip: %w", err)
	}
	head, err := l.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: head: %w", err)
	}
	// feeCap = 2*baseFee + tip gives headroom for two full base-fee bumps.
	gasFeeCap := new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		gasTip,
	)

	gasLimit, err := l.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: estimate gas: %w", err)
	}

	tx, err := types.SignNewTx(l.session.PrivateKey(), types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasTip,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		To:        &to,
		Data:      data,
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: sign: %w", err)
	}

	if err := l.client.SendTransaction(ctx, tx); err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: send: %w", err)
	}

	l.logger.InfoContext(ctx, "transaction submitted",
		slog.String("tx_hash", tx.Hash().Hex()),
		slog.String("to", to.Hex()),
	)

	mined, err := bind.WaitMined(ctx, l.client, tx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("ledger: wait mined: %w", err)
	}

	receipt := domain.Receipt{
		ID:        uuid.NewString(),
		TxHash:    tx.Hash().Hex(),
		Block:     mined.BlockNumber.Uint64(),
		GasUsed:   mined.GasUsed,
		Succeeded: mined.Status == types.ReceiptStatusSuccessful,
	}
	if !receipt.Succeeded {
		return receipt, fmt.Errorf("ledger: tx %s: %w", receipt.TxHash, domain.ErrTxReverted)
	}
	return receipt, nil
}

// Compile-time interface check.
var _ domain.Ledger = (*EVMLedger)(nil)
