package events

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
)

// Interface is the decode capability registered for one contract address.
type Interface struct {
	Kind contracts.Kind
	ABI  abi.ABI
}

// InterfaceFor resolves the descriptor for a known contract kind.
func InterfaceFor(kind contracts.Kind) (Interface, error) {
	descriptor, err := contracts.ABI(kind)
	if err != nil {
		return Interface{}, err
	}
	return Interface{Kind: kind, ABI: descriptor}, nil
}

// SeedEntry is one well-known contract from a deployment snapshot.
type SeedEntry struct {
	Name    string
	Address common.Address
	Kind    contracts.Kind
}

type Arg struct {
	Name    string
	Type    string
	Indexed bool
	Value   any
}

// DecodedEvent is one successfully decoded log. Args follow the event's
// declared input order.
type DecodedEvent struct {
	Name        string
	Emitter     common.Address
	Args        []Arg
	LogIndex    uint
	TxHash      common.Hash
	BlockNumber uint64
}

func (e DecodedEvent) Arg(name string) (any, bool) {
	for _, arg := range e.Args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// AddressArg returns the named address argument.
func (e DecodedEvent) AddressArg(name string) (common.Address, error) {
	value, ok := e.Arg(name)
	if !ok {
		return common.Address{}, fmt.Errorf("event %s has no argument %q", e.Name, name)
	}
	address, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event %s argument %q is %T, not an address", e.Name, name, value)
	}
	return address, nil
}

// BigIntArg returns the named integer argument.
func (e DecodedEvent) BigIntArg(name string) (*big.Int, error) {
	value, ok := e.Arg(name)
	if !ok {
		return nil, fmt.Errorf("event %s has no argument %q", e.Name, name)
	}
	integer, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("event %s argument %q is %T, not an integer", e.Name, name, value)
	}
	return new(big.Int).Set(integer), nil
}

func (e DecodedEvent) StringArg(name string) (string, error) {
	value, ok := e.Arg(name)
	if !ok {
		return "", fmt.Errorf("event %s has no argument %q", e.Name, name)
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("event %s argument %q is %T, not a string", e.Name, name, value)
	}
	return text, nil
}

// Result maps event names to every decoded occurrence in emission order.
type Result map[string][]DecodedEvent

// First returns the earliest occurrence of name.
func (r Result) First(name string) (DecodedEvent, bool) {
	occurrences := r[name]
	if len(occurrences) == 0 {
		return DecodedEvent{}, false
	}
	return occurrences[0], true
}

func (r Result) All(name string) []DecodedEvent {
	return append([]DecodedEvent(nil), r[name]...)
}

func (r Result) Count(name string) int {
	return len(r[name])
}

// Names lists the decoded event names in sorted order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromEmitter returns occurrences of name emitted by address.
func (r Result) FromEmitter(name string, address common.Address) []DecodedEvent {
	matches := make([]DecodedEvent, 0)
	for _, event := range r[name] {
		if event.Emitter == address {
			matches = append(matches, event)
		}
	}
	return matches
}

// SkippedLog records a log the correlator could not decode.
type SkippedLog struct {
	Index   uint
	Address common.Address
	Err     error
}

// DiscoveryRule names an event argument that carries the address of a newly
// created entity of the given kind.
type DiscoveryRule struct {
	Event      string
	AddressArg string
	Kind       contracts.Kind
}

// DefaultDiscoveryRules covers the entity-creating events of the platform.
func DefaultDiscoveryRules() []DiscoveryRule {
	return []DiscoveryRule{
		{Event: "RegistrarAddedWorld", AddressArg: "world", Kind: contracts.KindWorld},
		{Event: "WorldAddedCompany", AddressArg: "company", Kind: contracts.KindCompany},
		{Event: "CompanyAddedExperience", AddressArg: "experience", Kind: contracts.KindExperience},
	}
}
