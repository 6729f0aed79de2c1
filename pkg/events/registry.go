package events

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry maps contract addresses to decode interfaces. It is built in two
// phases over the same map: a one-time seed from a deployment snapshot and
// runtime discovery of addresses learned from decoded receipts.
type Registry struct {
	mu      sync.RWMutex
	entries map[common.Address]Interface
	seeded  bool
}

func NewRegistry() *Registry {
	return &Registry{entries: map[common.Address]Interface{}}
}

// Register adds or overwrites the interface for address.
func (r *Registry) Register(address common.Address, iface Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[address] = iface
}

// Add registers iface only when address is unknown. It reports whether the
// entry was added.
func (r *Registry) Add(address common.Address, iface Interface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[address]; exists {
		return false
	}
	r.entries[address] = iface
	return true
}

func (r *Registry) Lookup(address common.Address) (Interface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iface, ok := r.entries[address]
	return iface, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Addresses returns the registered addresses in byte order.
func (r *Registry) Addresses() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addresses := make([]common.Address, 0, len(r.entries))
	for address := range r.entries {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].Cmp(addresses[j]) < 0
	})
	return addresses
}

func (r *Registry) Seeded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seeded
}

// Seed populates the registry from entries. It runs at most once and is a
// no-op when the registry already holds entries. It reports whether the seed
// was applied. On error nothing is registered.
func (r *Registry) Seed(entries []SeedEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seeded || len(r.entries) > 0 {
		return false, nil
	}

	staged := make(map[common.Address]Interface, len(entries))
	for _, entry := range entries {
		if entry.Address == (common.Address{}) {
			return false, fmt.Errorf("seed entry %q has a zero address", entry.Name)
		}
		iface, err := InterfaceFor(entry.Kind)
		if err != nil {
			return false, fmt.Errorf("seed entry %q: %w", entry.Name, err)
		}
		if _, exists := staged[entry.Address]; exists {
			continue
		}
		staged[entry.Address] = iface
	}

	for address, iface := range staged {
		r.entries[address] = iface
	}
	r.seeded = true
	return true, nil
}
