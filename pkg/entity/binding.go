package entity

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/ledger"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

// Outcome is the mined receipt of a write and its decoded events.
type Outcome struct {
	Receipt *types.Receipt
	Events  events.Result
}

// binding is the thin call core every wrapper and capability shares.
type binding struct {
	kind       contracts.Kind
	contract   *ledger.Contract
	correlator *events.Correlator
	rules      []events.DiscoveryRule
	logger     *slog.Logger
}

func (b *binding) call(ctx context.Context, method string, args ...any) ([]any, error) {
	return b.contract.Call(ctx, method, args...)
}

func (b *binding) callInto(ctx context.Context, out any, method string, args ...any) error {
	return b.contract.CallInto(ctx, out, method, args...)
}

// transact submits method, decodes the receipt and registers any entities the
// receipt reveals. A failed receipt is returned alongside its error.
func (b *binding) transact(
	ctx context.Context,
	cred signing.Credential,
	value *big.Int,
	method string,
	args ...any,
) (Outcome, error) {
	receipt, err := b.contract.TransactValue(ctx, cred, value, method, args...)
	if err != nil {
		return Outcome{Receipt: receipt}, err
	}

	result := b.correlator.DecodeReceipt(receipt)
	if _, err := b.correlator.Discover(result, b.rules); err != nil {
		b.logger.Warn("entity discovery incomplete", "method", method, "tx_hash", receipt.TxHash.Hex(), "error", err)
	}
	return Outcome{Receipt: receipt, Events: result}, nil
}

func (b *binding) address() common.Address {
	return b.contract.Address()
}
