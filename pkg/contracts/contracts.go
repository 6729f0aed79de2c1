package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var fragments embed.FS

type Kind string

const (
	KindRegistry    Kind = "Registry"
	KindRegistrar   Kind = "Registrar"
	KindWorld       Kind = "World"
	KindCompany     Kind = "Company"
	KindExperience  Kind = "Experience"
	KindAvatar      Kind = "Avatar"
	KindERC20Asset  Kind = "ERC20Asset"
	KindERC721Asset Kind = "ERC721Asset"
)

type Capability string

const (
	CapabilitySignable    Capability = "signable"
	CapabilityRemovable   Capability = "removable"
	CapabilityVectored    Capability = "vectored"
	CapabilityUpgradeable Capability = "upgradeable"
)

type composition struct {
	fragment     string
	capabilities []Capability
}

var compositions = map[Kind]composition{
	KindRegistry:  {fragment: "registry", capabilities: []Capability{CapabilityUpgradeable}},
	KindRegistrar: {fragment: "registrar", capabilities: []Capability{CapabilitySignable}},
	KindWorld: {fragment: "world", capabilities: []Capability{
		CapabilitySignable, CapabilityRemovable, CapabilityVectored, CapabilityUpgradeable,
	}},
	KindCompany: {fragment: "company", capabilities: []Capability{
		CapabilitySignable, CapabilityRemovable, CapabilityVectored, CapabilityUpgradeable,
	}},
	KindExperience: {fragment: "experience", capabilities: []Capability{
		CapabilityRemovable, CapabilityVectored, CapabilityUpgradeable,
	}},
	KindAvatar:      {fragment: "avatar", capabilities: []Capability{CapabilityUpgradeable}},
	KindERC20Asset:  {fragment: "erc20asset", capabilities: []Capability{CapabilityRemovable, CapabilityUpgradeable}},
	KindERC721Asset: {fragment: "erc721asset", capabilities: []Capability{CapabilityRemovable, CapabilityUpgradeable}},
}

var (
	parsedMutex sync.Mutex
	parsed      = map[Kind]abi.ABI{}
)

// ParseKind validates a kind name as it appears in deployment files.
func ParseKind(name string) (Kind, error) {
	kind := Kind(name)
	if _, ok := compositions[kind]; !ok {
		return "", fmt.Errorf("unknown contract kind %q", name)
	}
	return kind, nil
}

// Kinds lists every supported contract kind in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(compositions))
	for kind := range compositions {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Capabilities returns the capability set composed into kind.
func Capabilities(kind Kind) []Capability {
	entry, ok := compositions[kind]
	if !ok {
		return nil
	}
	return append([]Capability{}, entry.capabilities...)
}

// Has reports whether kind carries capability.
func Has(kind Kind, capability Capability) bool {
	for _, candidate := range compositions[kind].capabilities {
		if candidate == capability {
			return true
		}
	}
	return false
}

// ABI returns the merged interface descriptor for kind. Descriptors are
// parsed once and shared.
func ABI(kind Kind) (abi.ABI, error) {
	parsedMutex.Lock()
	defer parsedMutex.Unlock()

	if cached, ok := parsed[kind]; ok {
		return cached, nil
	}

	entry, ok := compositions[kind]
	if !ok {
		return abi.ABI{}, fmt.Errorf("unknown contract kind %q", kind)
	}

	names := []string{entry.fragment}
	for _, capability := range entry.capabilities {
		names = append(names, string(capability))
	}

	merged := make([]json.RawMessage, 0)
	for _, name := range names {
		raw, err := fragments.ReadFile("abi/" + name + ".json")
		if err != nil {
			return abi.ABI{}, fmt.Errorf("read %s fragment: %w", name, err)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return abi.ABI{}, fmt.Errorf("decode %s fragment: %w", name, err)
		}
		merged = append(merged, items...)
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("encode %s descriptor: %w", kind, err)
	}
	descriptor, err := abi.JSON(bytes.NewReader(encoded))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s descriptor: %w", kind, err)
	}

	parsed[kind] = descriptor
	return descriptor, nil
}

// MustABI is ABI for statically known kinds.
func MustABI(kind Kind) abi.ABI {
	descriptor, err := ABI(kind)
	if err != nil {
		panic(err)
	}
	return descriptor
}
