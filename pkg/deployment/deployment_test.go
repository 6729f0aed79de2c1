package deployment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

func TestLoadYAML(t *testing.T) {
	config, err := Load(filepath.Join("testdata", "deployment.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	network, err := config.Network("")
	if err != nil {
		t.Fatalf("Network failed: %v", err)
	}
	if network.Name != shared.NetworkTestnet || network.ChainID != 296 {
		t.Fatalf("unexpected network: %+v", network)
	}
	world, err := network.Address("world")
	if err != nil {
		t.Fatalf("Address failed: %v", err)
	}
	if world != common.HexToAddress("0x1000000000000000000000000000000000000003") {
		t.Fatalf("unexpected world address: %s", world.Hex())
	}

	signer, err := network.DefaultTermsSigner()
	if err != nil {
		t.Fatalf("DefaultTermsSigner failed: %v", err)
	}
	if signer != common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23") {
		t.Fatalf("unexpected terms signer: %s", signer.Hex())
	}
	if !network.IsAdmin(signer) {
		t.Fatalf("expected terms signer to be an admin")
	}

	local, err := config.Network("LOCAL")
	if err != nil {
		t.Fatalf("expected mixed-case network key to normalize: %v", err)
	}
	if local.ChainID != 31337 {
		t.Fatalf("unexpected local chain id: %d", local.ChainID)
	}
	if _, err := local.DefaultVectorAuthority(); !errors.Is(err, shared.ErrAddressNotFound) {
		t.Fatalf("expected address_not_found for missing authority, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	config, err := Load(filepath.Join("testdata", "deployment.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	network, err := config.Network(shared.NetworkMainnet)
	if err != nil {
		t.Fatalf("Network failed: %v", err)
	}
	ref, err := network.Contract("gold")
	if err != nil {
		t.Fatalf("Contract failed: %v", err)
	}
	if ref.Kind != contracts.KindERC20Asset {
		t.Fatalf("unexpected kind: %s", ref.Kind)
	}
}

func TestLoadBrotliCompressedSnapshot(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "deployment.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "deployment.yaml.br")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	writer := brotli.NewWriter(file)
	if _, err := writer.Write(raw); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := config.Network(shared.NetworkTestnet); err != nil {
		t.Fatalf("expected testnet in compressed snapshot: %v", err)
	}
}

func TestMissingContractIsAddressNotFound(t *testing.T) {
	config, err := Load(filepath.Join("testdata", "deployment.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	network, _ := config.Network(shared.NetworkTestnet)
	_, err = network.Address("avatarFactory")
	if !errors.Is(err, shared.ErrAddressNotFound) {
		t.Fatalf("expected address_not_found, got %v", err)
	}
	if _, err := config.Network(shared.NetworkMainnet); !errors.Is(err, shared.ErrAddressNotFound) {
		t.Fatalf("expected missing network to be address_not_found, got %v", err)
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"bad address": `networks:
  testnet:
    contracts:
      registry: {address: "0x1234", kind: Registry}
`,
		"bad kind": `networks:
  testnet:
    contracts:
      registry: {address: "0x1000000000000000000000000000000000000001", kind: Oracle}
`,
		"bad network": `networks:
  devnet:
    contracts: {}
`,
		"bad signer": `networks:
  testnet:
    signers: {termsSigner: "nope"}
`,
		"empty": `networks: {}`,
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSeedEntriesFeedRegistry(t *testing.T) {
	config, err := Load(filepath.Join("testdata", "deployment.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	network, _ := config.Network(shared.NetworkTestnet)
	entries := network.SeedEntries()
	if len(entries) != 3 || entries[0].Name != "registrar" {
		t.Fatalf("expected sorted seed entries, got %+v", entries)
	}

	registry := events.NewRegistry()
	if _, err := registry.Seed(entries); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	iface, ok := registry.Lookup(common.HexToAddress("0x1000000000000000000000000000000000000003"))
	if !ok || iface.Kind != contracts.KindWorld {
		t.Fatalf("expected world interface seeded, got %+v", iface)
	}
}
