package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vworld-labs/world-sdk-go/pkg/retry"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

const defaultPollInterval = time.Second

type Options struct {
	Executor     *retry.Executor
	Logger       *slog.Logger
	PollInterval time.Duration
}

// Contract binds an interface descriptor to an address on a Backend.
type Contract struct {
	address      common.Address
	abi          abi.ABI
	backend      Backend
	executor     *retry.Executor
	logger       *slog.Logger
	pollInterval time.Duration

	chainMu sync.Mutex
	chainID *big.Int
}

// NewContract binds descriptor at address.
func NewContract(address common.Address, descriptor abi.ABI, backend Backend, options Options) (*Contract, error) {
	if backend == nil {
		return nil, fmt.Errorf("ledger backend is required")
	}
	executor := options.Executor
	if executor == nil {
		defaultExecutor, err := retry.NewExecutor(retry.Config{Logger: options.Logger})
		if err != nil {
			return nil, err
		}
		executor = defaultExecutor
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Contract{
		address:      address,
		abi:          descriptor,
		backend:      backend,
		executor:     executor,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Call executes a read-only method and returns its unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	output, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s result: %w", method, err)
	}
	return values, nil
}

// CallInto executes a read-only method and copies its outputs into out.
func (c *Contract) CallInto(ctx context.Context, out any, method string, args ...any) error {
	output, err := c.call(ctx, method, args...)
	if err != nil {
		return err
	}
	if err := c.abi.UnpackIntoInterface(out, method, output); err != nil {
		return fmt.Errorf("unpack %s result: %w", method, err)
	}
	return nil
}

func (c *Contract) call(ctx context.Context, method string, args ...any) ([]byte, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := c.address
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, classifyFailure(err))
	}
	return output, nil
}

// Transact submits a state-changing method call signed by cred and waits for
// its receipt.
func (c *Contract) Transact(ctx context.Context, cred signing.Credential, method string, args ...any) (*types.Receipt, error) {
	return c.TransactValue(ctx, cred, nil, method, args...)
}

// TransactValue is Transact for payable methods. A failed receipt is returned
// together with a transaction_reverted or authorization_mismatch error.
//
// Pack, nonce, gas, sign and send are retried as one unit. Before signing
// again, the previous attempt is looked up by hash; if the node already holds
// it, that transaction is awaited instead. A send whose response is lost
// before the node records it can still be signed twice under consecutive
// nonces, and the second copy of a single-use authorization then reverts.
func (c *Contract) TransactValue(
	ctx context.Context,
	cred signing.Credential,
	value *big.Int,
	method string,
	args ...any,
) (*types.Receipt, error) {
	txSigner, err := signing.RequireTxSigner(cred)
	if err != nil {
		return nil, err
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	chainID, err := c.resolveChainID(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = new(big.Int)
	}

	from := cred.Address()
	to := c.address
	var lastSigned *types.Transaction
	tx, err := retry.Do(ctx, c.executor, func(ctx context.Context) (*types.Transaction, error) {
		if lastSigned != nil {
			_, _, err := c.backend.TransactionByHash(ctx, lastSigned.Hash())
			if err == nil {
				c.logger.Debug("previous attempt reached the node", "method", method, "tx_hash", lastSigned.Hash().Hex())
				return lastSigned, nil
			}
			if !errors.Is(err, ethereum.NotFound) {
				return nil, fmt.Errorf("look up previous attempt: %w", err)
			}
		}

		nonce, err := c.backend.PendingNonceAt(ctx, from)
		if err != nil {
			return nil, fmt.Errorf("pending nonce: %w", err)
		}
		gasPrice, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
		gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     from,
			To:       &to,
			GasPrice: gasPrice,
			Value:    value,
			Data:     input,
		})
		if err != nil {
			return nil, fmt.Errorf("estimate %s: %w", method, classifyFailure(err))
		}

		unsigned := types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     input,
		})
		signed, err := txSigner.SignTx(unsigned, chainID)
		if err != nil {
			return nil, shared.NewError(shared.ErrorCodeSigningUnavailable, "sign transaction", err)
		}
		lastSigned = signed

		if err := c.backend.SendTransaction(ctx, signed); err != nil {
			// The node already holds this exact transaction; wait for it
			// instead of resubmitting under a fresh nonce.
			if retry.Classify(err) == shared.ErrorCodeDuplicateSubmission {
				c.logger.Debug("transaction already pending", "method", method, "tx_hash", signed.Hash().Hex())
				return signed, nil
			}
			return nil, fmt.Errorf("send %s: %w", method, classifyFailure(err))
		}
		return signed, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("transaction submitted", "method", method, "tx_hash", tx.Hash().Hex(), "nonce", tx.Nonce())

	receipt, err := c.WaitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, c.failedReceiptError(ctx, from, tx, receipt)
	}
	return receipt, nil
}

// WaitMined polls until the receipt for txHash is available. Missing receipts
// and transient transport failures keep polling; cancellation of ctx stops
// the wait but not the transaction.
func (c *Contract) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return WaitMined(ctx, c.backend, txHash, c.pollInterval, c.logger)
}

func (c *Contract) failedReceiptError(ctx context.Context, from common.Address, tx *types.Transaction, receipt *types.Receipt) error {
	_, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}, receipt.BlockNumber)
	if err != nil {
		if reason, ok := RevertReason(err); ok {
			return revertError(reason, err)
		}
	}
	return &shared.Error{
		Code:    shared.ErrorCodeTransactionReverted,
		Message: fmt.Sprintf("transaction %s failed", tx.Hash().Hex()),
	}
}

func (c *Contract) resolveChainID(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}
	chainID, err := retry.Do(ctx, c.executor, c.backend.ChainID)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	c.chainID = chainID
	return chainID, nil
}

// WaitMined polls backend for the receipt of txHash every interval.
func WaitMined(
	ctx context.Context,
	backend Backend,
	txHash common.Hash,
	interval time.Duration,
	logger *slog.Logger,
) (*types.Receipt, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			logger.Debug("receipt mined", "tx_hash", txHash.Hex(), "status", receipt.Status, "logs", len(receipt.Logs))
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			if !retry.IsRetryable(err) {
				return nil, fmt.Errorf("receipt %s: %w", txHash.Hex(), err)
			}
			logger.Debug("receipt poll failed", "tx_hash", txHash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
