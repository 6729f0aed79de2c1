package ledgertest

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Call is one execution against a handler. Static calls come from
// CallContract and EstimateGas; their staged effects are always discarded.
type Call struct {
	From   common.Address
	To     common.Address
	Value  *big.Int
	Data   []byte
	Static bool
	Block  uint64

	ledger  *Ledger
	credits map[common.Address]*big.Int
	logs    []*types.Log
	effects []func()
}

// OnCommit stages a handler state change. It runs under the ledger lock after
// the call succeeds and never for static calls.
func (c *Call) OnCommit(effect func()) {
	c.effects = append(c.effects, effect)
}

// Balance returns the balance of address including effects staged by this
// call.
func (c *Call) Balance(address common.Address) *big.Int {
	balance := new(big.Int).Set(c.ledger.balanceLocked(address))
	if delta, ok := c.credits[address]; ok {
		balance.Add(balance, delta)
	}
	return balance
}

// Transfer stages a value movement. It fails when from cannot cover amount.
func (c *Call) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return Revert("negative transfer")
	}
	if c.Balance(from).Cmp(amount) < 0 {
		return Revert("insufficient balance")
	}
	c.credit(from, new(big.Int).Neg(amount))
	c.credit(to, amount)
	return nil
}

func (c *Call) credit(address common.Address, delta *big.Int) {
	current, ok := c.credits[address]
	if !ok {
		current = new(big.Int)
	}
	c.credits[address] = new(big.Int).Add(current, delta)
}

// Emit stages a log emitted by the called contract for event with args in
// declaration order.
func (c *Call) Emit(event abi.Event, args ...any) error {
	return c.EmitFrom(c.To, event, args...)
}

// EmitFrom stages a log emitted by another contract during this call.
func (c *Call) EmitFrom(emitter common.Address, event abi.Event, args ...any) error {
	if len(args) != len(event.Inputs) {
		return fmt.Errorf("event %s takes %d arguments, got %d", event.Name, len(event.Inputs), len(args))
	}

	topics := []common.Hash{event.ID}
	data := make([]any, 0, len(args))
	for i, input := range event.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		encoded, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			return fmt.Errorf("encode %s.%s topic: %w", event.Name, input.Name, err)
		}
		topics = append(topics, encoded[0][0])
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("encode %s data: %w", event.Name, err)
	}

	c.logs = append(c.logs, &types.Log{Address: emitter, Topics: topics, Data: packed})
	return nil
}
