package events

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
)

func seedEntries() []SeedEntry {
	return []SeedEntry{
		{Name: "registry", Address: common.HexToAddress("0x0000000000000000000000000000000000000101"), Kind: contracts.KindRegistry},
		{Name: "registrar", Address: common.HexToAddress("0x0000000000000000000000000000000000000102"), Kind: contracts.KindRegistrar},
		{Name: "world", Address: world, Kind: contracts.KindWorld},
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	applied, err := registry.Seed(seedEntries())
	if err != nil || !applied {
		t.Fatalf("expected first seed to apply, applied=%v err=%v", applied, err)
	}
	before := registry.Addresses()

	extra := append(seedEntries(), SeedEntry{Name: "token", Address: tokenA, Kind: contracts.KindERC20Asset})
	applied, err = registry.Seed(extra)
	if err != nil || applied {
		t.Fatalf("expected second seed to be a no-op, applied=%v err=%v", applied, err)
	}
	after := registry.Addresses()
	if len(before) != 3 || len(after) != len(before) {
		t.Fatalf("registry changed size: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("registry contents changed at %d", i)
		}
	}
	if !registry.Seeded() {
		t.Fatalf("expected registry to report seeded")
	}
}

func TestSeedSkippedWhenRegistryNonEmpty(t *testing.T) {
	registry := NewRegistry()
	registry.Register(tokenA, mustInterface(t, contracts.KindERC20Asset))
	applied, err := registry.Seed(seedEntries())
	if err != nil || applied {
		t.Fatalf("expected seed to be skipped, applied=%v err=%v", applied, err)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected only the runtime entry, got %d", registry.Len())
	}
}

func TestSeedRejectsUnknownKindAtomically(t *testing.T) {
	registry := NewRegistry()
	entries := append(seedEntries(), SeedEntry{Name: "bogus", Address: tokenB, Kind: contracts.Kind("Bogus")})
	if _, err := registry.Seed(entries); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
	if registry.Len() != 0 || registry.Seeded() {
		t.Fatalf("expected failed seed to leave registry untouched")
	}
}

func TestAddFirstRegistrationWins(t *testing.T) {
	registry := NewRegistry()
	if !registry.Add(tokenA, mustInterface(t, contracts.KindERC20Asset)) {
		t.Fatalf("expected first add to succeed")
	}
	if registry.Add(tokenA, mustInterface(t, contracts.KindERC721Asset)) {
		t.Fatalf("expected second add to be rejected")
	}
	iface, _ := registry.Lookup(tokenA)
	if iface.Kind != contracts.KindERC20Asset {
		t.Fatalf("expected first interface retained, got %s", iface.Kind)
	}

	registry.Register(tokenA, mustInterface(t, contracts.KindERC721Asset))
	iface, _ = registry.Lookup(tokenA)
	if iface.Kind != contracts.KindERC721Asset {
		t.Fatalf("expected explicit register to overwrite, got %s", iface.Kind)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	iface := mustInterface(t, contracts.KindAvatar)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address := common.BigToAddress(common.Big1)
			if i%2 == 0 {
				registry.Add(address, iface)
				return
			}
			registry.Lookup(address)
		}(i)
	}
	wg.Wait()
	if registry.Len() != 1 {
		t.Fatalf("expected one entry, got %d", registry.Len())
	}
}
