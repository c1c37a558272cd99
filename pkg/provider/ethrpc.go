package provider

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	// DefaultConfirmTimeout bounds the confirmation wait before the attempt
	// is reported as failed.
	DefaultConfirmTimeout = 90 * time.Second

	// DefaultPollInterval is how often the receipt is polled while confirming.
	DefaultPollInterval = 3 * time.Second
)

// userRejectedRPCCode is the EIP-1193 code injected wallets use when the user
// declines to sign.
const userRejectedRPCCode = 4001

// EthProvider implements WalletProvider against an Ethereum JSON-RPC endpoint
// with a locally-held signing key.
type EthProvider struct {
	Client         *ethclient.Client
	ChainID        *big.Int
	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	key  *ecdsa.PrivateKey
	from common.Address
}

// Make sure we conform to the interfaces
var _ WalletProvider = (*EthProvider)(nil)
var _ BalanceReader = (*EthProvider)(nil)

// NewEthProvider dials the RPC endpoint and prepares the signing account.
func NewEthProvider(ctx context.Context, rpcURL, privateKeyHex string) (*EthProvider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain ID: %w", err)
	}

	return &EthProvider{
		Client:         client,
		ChainID:        chainID,
		ConfirmTimeout: DefaultConfirmTimeout,
		PollInterval:   DefaultPollInterval,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// SenderAddress returns the address of the signing account.
func (p *EthProvider) SenderAddress() string {
	return p.from.Hex()
}

// GetFeeQuote returns the node's suggested legacy gas price.
func (p *EthProvider) GetFeeQuote(ctx context.Context) (*big.Int, error) {
	price, err := p.Client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, NewError(CodeNetworkFailure, "fee quote", err)
	}
	return price, nil
}

// EstimateOperationCost simulates the operation and returns its gas limit.
func (p *EthProvider) EstimateOperationCost(ctx context.Context, req models.TransferRequest) (uint64, error) {
	to := common.HexToAddress(req.To)
	msg := ethereum.CallMsg{
		From:  p.from,
		To:    &to,
		Value: models.ToBaseUnits(req.Amount),
	}

	gas, err := p.Client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, NewError(CodeNetworkFailure, "gas estimate", err)
	}
	return gas, nil
}

// Submit signs and broadcasts the operation, returning its transaction hash.
func (p *EthProvider) Submit(ctx context.Context, req models.TransferRequest) (string, error) {
	nonce, err := p.Client.PendingNonceAt(ctx, p.from)
	if err != nil {
		return "", NewError(CodeNetworkFailure, "submit", fmt.Errorf("failed to read nonce: %w", err))
	}

	gasPrice := req.FeeOverride
	if gasPrice == nil {
		if gasPrice, err = p.GetFeeQuote(ctx); err != nil {
			return "", err
		}
	}

	gasLimit, err := p.EstimateOperationCost(ctx, req)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(req.To), models.ToBaseUnits(req.Amount), gasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(p.ChainID), p.key)
	if err != nil {
		return "", NewError(CodeNetworkFailure, "submit", fmt.Errorf("failed to sign transaction: %w", err))
	}

	if err := p.Client.SendTransaction(ctx, signed); err != nil {
		return "", NewError(classifySendError(err), "submit", err)
	}

	return signed.Hash().Hex(), nil
}

// WaitForConfirmation polls for the receipt until inclusion or timeout.
func (p *EthProvider) WaitForConfirmation(ctx context.Context, txID string) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, p.ConfirmTimeout)
	defer cancel()

	hash := common.HexToHash(txID)
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.Client.TransactionReceipt(ctx, hash)
		if err == nil {
			return toReceipt(txID, receipt), nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, NewError(CodeNetworkFailure, "confirmation", err)
		}

		select {
		case <-ctx.Done():
			return nil, NewError(CodeTimeout, "confirmation", fmt.Errorf("transaction %s not confirmed within %s", txID, p.ConfirmTimeout))
		case <-ticker.C:
		}
	}
}

// AvailableBalance reads the signing account's spendable balance.
func (p *EthProvider) AvailableBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	wei, err := p.Client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, NewError(CodeNetworkFailure, "balance read", err)
	}
	return models.FromBaseUnits(wei), nil
}

func toReceipt(txID string, r *types.Receipt) *Receipt {
	status := ReceiptReverted
	if r.Status == types.ReceiptStatusSuccessful {
		status = ReceiptSuccess
	}

	var feeUsed *big.Int
	if r.EffectiveGasPrice != nil {
		feeUsed = new(big.Int).Mul(new(big.Int).SetUint64(r.GasUsed), r.EffectiveGasPrice)
	}

	return &Receipt{TxID: txID, Status: status, FeeUsed: feeUsed}
}

// classifySendError maps a broadcast error onto a failure code. Injected
// wallets surface a dedicated RPC code when the user declines to sign.
func classifySendError(err error) Code {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedRPCCode {
		return CodeUserRejected
	}
	if strings.Contains(strings.ToLower(err.Error()), "user denied") {
		return CodeUserRejected
	}
	return CodeNetworkFailure
}
