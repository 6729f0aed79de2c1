package deployment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

const maxSnapshotBytes = 16 << 20

// Load reads a deployment snapshot from path. Files ending in .br are
// brotli-compressed; the remaining extension selects JSON or YAML.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deployment %s: %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	name := path
	if strings.EqualFold(filepath.Ext(name), ".br") {
		reader = brotli.NewReader(file)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxSnapshotBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read deployment %s: %w", path, err)
	}
	if len(data) > maxSnapshotBytes {
		return nil, fmt.Errorf("deployment %s exceeds %d bytes", path, maxSnapshotBytes)
	}

	if strings.EqualFold(filepath.Ext(name), ".json") {
		return ParseJSON(data)
	}
	return Parse(data)
}

// Parse parses a YAML snapshot. JSON is valid YAML and parses here too.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("decode deployment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func ParseJSON(data []byte) (*Config, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("decode deployment json: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks network names, addresses and kinds, and fills Network.Name.
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("deployment defines no networks")
	}
	normalized := make(map[string]Network, len(c.Networks))
	for rawName, network := range c.Networks {
		name, err := shared.NormalizeNetwork(rawName)
		if err != nil {
			return err
		}
		if _, exists := normalized[name]; exists {
			return fmt.Errorf("network %q defined twice", name)
		}
		network.Name = name
		for contractName, ref := range network.Contracts {
			if !common.IsHexAddress(ref.Address) {
				return fmt.Errorf("network %s contract %s: invalid address %q", name, contractName, ref.Address)
			}
			if _, err := contracts.ParseKind(string(ref.Kind)); err != nil {
				return fmt.Errorf("network %s contract %s: %w", name, contractName, err)
			}
		}
		signerFields := map[string]string{
			"termsSigner":     network.Signers.TermsSigner,
			"vectorAuthority": network.Signers.VectorAuthority,
		}
		for field, value := range signerFields {
			if value != "" && !common.IsHexAddress(value) {
				return fmt.Errorf("network %s signer %s: invalid address %q", name, field, value)
			}
		}
		for _, admin := range network.Signers.Admins {
			if !common.IsHexAddress(admin) {
				return fmt.Errorf("network %s admin: invalid address %q", name, admin)
			}
		}
		normalized[name] = network
	}
	c.Networks = normalized
	return nil
}

// Network selects a network by name. An empty name selects testnet.
func (c *Config) Network(name string) (Network, error) {
	normalized, err := shared.NormalizeNetwork(name)
	if err != nil {
		return Network{}, err
	}
	network, ok := c.Networks[normalized]
	if !ok {
		return Network{}, &shared.Error{
			Code:    shared.ErrorCodeAddressNotFound,
			Message: fmt.Sprintf("deployment has no network %q", normalized),
		}
	}
	return network, nil
}

// Address returns the address of a named contract.
func (n Network) Address(name string) (common.Address, error) {
	ref, ok := n.Contracts[name]
	if !ok {
		return common.Address{}, shared.AddressNotFound(name, n.Name)
	}
	return ref.HexAddress(), nil
}

// Contract returns the full reference of a named contract.
func (n Network) Contract(name string) (ContractRef, error) {
	ref, ok := n.Contracts[name]
	if !ok {
		return ContractRef{}, shared.AddressNotFound(name, n.Name)
	}
	return ref, nil
}

// ContractNames lists contract names in sorted order.
func (n Network) ContractNames() []string {
	names := make([]string, 0, len(n.Contracts))
	for name := range n.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeedEntries converts the network's contracts into registry seed entries.
func (n Network) SeedEntries() []events.SeedEntry {
	entries := make([]events.SeedEntry, 0, len(n.Contracts))
	for _, name := range n.ContractNames() {
		ref := n.Contracts[name]
		entries = append(entries, events.SeedEntry{
			Name:    name,
			Address: ref.HexAddress(),
			Kind:    ref.Kind,
		})
	}
	return entries
}

func (n Network) DefaultTermsSigner() (common.Address, error) {
	if n.Signers.TermsSigner == "" {
		return common.Address{}, shared.AddressNotFound("termsSigner", n.Name)
	}
	return common.HexToAddress(n.Signers.TermsSigner), nil
}

func (n Network) DefaultVectorAuthority() (common.Address, error) {
	if n.Signers.VectorAuthority == "" {
		return common.Address{}, shared.AddressNotFound("vectorAuthority", n.Name)
	}
	return common.HexToAddress(n.Signers.VectorAuthority), nil
}

// IsAdmin reports whether address is one of the network's admin signers.
func (n Network) IsAdmin(address common.Address) bool {
	for _, admin := range n.Signers.Admins {
		if common.HexToAddress(admin) == address {
			return true
		}
	}
	return false
}
