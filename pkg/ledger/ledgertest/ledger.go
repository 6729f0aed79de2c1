// Package ledgertest provides an in-memory ledger for tests. Contracts are Go
// handlers keyed by address. Transactions are applied one at a time in
// submission order; a handler error discards every staged effect of that
// transaction and mines a failed receipt.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	DefaultChainID  = 1337
	DefaultGasLimit = 300_000
)

var defaultGasPrice = big.NewInt(1_000_000_000)

// Handler executes one call against a simulated contract. Every effect is
// staged on call (value transfers, logs and OnCommit state changes) and
// applied only when a non-static call returns without error.
type Handler func(call *Call) ([]byte, error)

// Ledger implements ledger.Backend.
type Ledger struct {
	mu sync.Mutex

	chainID  *big.Int
	signer   types.Signer
	block    uint64
	handlers map[common.Address]Handler
	nonces   map[common.Address]uint64
	balances map[common.Address]*big.Int
	receipts map[common.Hash]*types.Receipt
	txs      map[common.Hash]*types.Transaction

	// LenientEstimate skips execution during gas estimation so failing calls
	// are mined as failed receipts instead of being rejected up front.
	LenientEstimate bool

	sendFaults    []error
	lostResponses []error
	receiptFaults []error
	callFaults    []error
}

func New() *Ledger {
	chainID := big.NewInt(DefaultChainID)
	return &Ledger{
		chainID:  chainID,
		signer:   types.LatestSignerForChainID(chainID),
		handlers: map[common.Address]Handler{},
		nonces:   map[common.Address]uint64{},
		balances: map[common.Address]*big.Int{},
		receipts: map[common.Hash]*types.Receipt{},
		txs:      map[common.Hash]*types.Transaction{},
	}
}

// Install places handler at address, replacing any previous handler.
func (l *Ledger) Install(address common.Address, handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[address] = handler
}

func (l *Ledger) Fund(address common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] = new(big.Int).Add(l.balanceLocked(address), amount)
}

func (l *Ledger) Balance(address common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceLocked(address))
}

func (l *Ledger) Nonce(address common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonces[address]
}

// BlockNumber returns the number of the last mined block.
func (l *Ledger) BlockNumber() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.block
}

// FailSends makes the next sends fail with errs, in order, before the
// transaction is looked at.
func (l *Ledger) FailSends(errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendFaults = append(l.sendFaults, errs...)
}

// LoseSendResponses makes the next sends accept and mine the transaction but
// report errs to the caller, as when the response is lost in transit.
func (l *Ledger) LoseSendResponses(errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lostResponses = append(l.lostResponses, errs...)
}

// FailReceipts makes the next receipt lookups fail with errs, in order.
func (l *Ledger) FailReceipts(errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receiptFaults = append(l.receiptFaults, errs...)
}

// FailCalls makes the next read calls fail with errs, in order.
func (l *Ledger) FailCalls(errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callFaults = append(l.callFaults, errs...)
}

func (l *Ledger) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(l.chainID), nil
}

func (l *Ledger) SuggestGasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(defaultGasPrice), nil
}

func (l *Ledger) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonces[account], nil
}

func (l *Ledger) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fault, ok := pop(&l.callFaults); ok {
		return nil, fault
	}
	if msg.To == nil {
		return nil, errors.New("contract creation is not supported")
	}
	call, err := l.newCall(msg.From, *msg.To, msg.Value, msg.Data, true)
	if err != nil {
		return nil, err
	}
	return l.execute(call)
}

func (l *Ledger) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LenientEstimate {
		return DefaultGasLimit, nil
	}
	if msg.To == nil {
		return 0, errors.New("contract creation is not supported")
	}
	call, err := l.newCall(msg.From, *msg.To, msg.Value, msg.Data, true)
	if err != nil {
		return 0, err
	}
	if _, err := l.execute(call); err != nil {
		return 0, err
	}
	return DefaultGasLimit, nil
}

func (l *Ledger) SendTransaction(_ context.Context, tx *types.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if fault, ok := pop(&l.sendFaults); ok {
		return fault
	}
	if _, exists := l.txs[tx.Hash()]; exists {
		return errors.New("already known")
	}
	from, err := types.Sender(l.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	expected := l.nonces[from]
	switch {
	case tx.Nonce() < expected:
		return fmt.Errorf("nonce too low: address %s, tx: %d state: %d", from.Hex(), tx.Nonce(), expected)
	case tx.Nonce() > expected:
		return fmt.Errorf("nonce too high: address %s, tx: %d state: %d", from.Hex(), tx.Nonce(), expected)
	}
	if tx.To() == nil {
		return errors.New("contract creation is not supported")
	}

	l.nonces[from] = expected + 1
	l.block++
	l.txs[tx.Hash()] = tx

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           tx.Gas(),
		CumulativeGasUsed: tx.Gas(),
		BlockNumber:       new(big.Int).SetUint64(l.block),
		BlockHash:         common.BigToHash(new(big.Int).SetUint64(l.block)),
		Logs:              []*types.Log{},
	}

	call, err := l.newCall(from, *tx.To(), tx.Value(), tx.Data(), false)
	if err == nil {
		_, err = l.execute(call)
	}
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		l.commit(call)
		for index, log := range call.logs {
			log.TxHash = tx.Hash()
			log.TxIndex = 0
			log.Index = uint(index)
			log.BlockNumber = l.block
			log.BlockHash = receipt.BlockHash
			receipt.Logs = append(receipt.Logs, log)
		}
	}
	l.receipts[tx.Hash()] = receipt
	if lost, ok := pop(&l.lostResponses); ok {
		return lost
	}
	return nil
}

// TransactionByHash reports transactions the ledger has accepted. Every
// accepted transaction is mined at once, so none is ever pending.
func (l *Ledger) TransactionByHash(_ context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[txHash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func (l *Ledger) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fault, ok := pop(&l.receiptFaults); ok {
		return nil, fault
	}
	receipt, ok := l.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (l *Ledger) newCall(from, to common.Address, value *big.Int, data []byte, static bool) (*Call, error) {
	if value == nil {
		value = new(big.Int)
	}
	call := &Call{
		From:    from,
		To:      to,
		Value:   new(big.Int).Set(value),
		Data:    append([]byte(nil), data...),
		Static:  static,
		Block:   l.block,
		ledger:  l,
		credits: map[common.Address]*big.Int{},
	}
	if value.Sign() > 0 {
		if err := call.Transfer(from, to, value); err != nil {
			return nil, err
		}
	}
	return call, nil
}

func (l *Ledger) execute(call *Call) ([]byte, error) {
	handler, ok := l.handlers[call.To]
	if !ok {
		if len(call.Data) == 0 {
			return nil, nil
		}
		return nil, Revert("no contract at address")
	}
	return handler(call)
}

func (l *Ledger) commit(call *Call) {
	for address, delta := range call.credits {
		l.balances[address] = new(big.Int).Add(l.balanceLocked(address), delta)
	}
	for _, effect := range call.effects {
		effect()
	}
}

func (l *Ledger) balanceLocked(address common.Address) *big.Int {
	balance, ok := l.balances[address]
	if !ok {
		return new(big.Int)
	}
	return balance
}

func pop(queue *[]error) (error, bool) {
	if len(*queue) == 0 {
		return nil, false
	}
	fault := (*queue)[0]
	*queue = (*queue)[1:]
	return fault, true
}
