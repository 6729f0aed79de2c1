package shared

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var operatorEnvKeys = []string{
	"WORLD_NETWORK",
	"NETWORK",
	"WORLD_RPC_URL",
	"RPC_URL",
	"ETH_RPC_URL",
	"WORLD_PRIVATE_KEY",
	"PRIVATE_KEY",
	"OPERATOR_KEY",
	"WORLD_CHAIN_ID",
	"WORLD_DEPLOYMENT",
	"MAINNET_WORLD_RPC_URL",
	"MAINNET_WORLD_PRIVATE_KEY",
	"MAINNET_WORLD_CHAIN_ID",
	"TESTNET_WORLD_RPC_URL",
	"TESTNET_WORLD_PRIVATE_KEY",
	"TESTNET_WORLD_DEPLOYMENT",
	"LOCAL_WORLD_RPC_URL",
}

func resetOperatorEnv(t *testing.T) {
	t.Helper()
	dotenvLoadOnce = sync.Once{}
	dotenvLoadOnce.Do(func() {})
	for _, key := range operatorEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestIsValidEnvKey(t *testing.T) {
	for _, key := range []string{"A", "WORLD_RPC_URL", "a_b", "_LEADING", "A1"} {
		if !isValidEnvKey(key) {
			t.Fatalf("expected %q to be valid", key)
		}
	}
	for _, key := range []string{"", "1ABC", "A B", "A-B", "A.B"} {
		if isValidEnvKey(key) {
			t.Fatalf("expected %q to be invalid", key)
		}
	}
}

func TestLoadDotEnvFileSkipsExisting(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("WORLD_NETWORK", "mainnet")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nexport WORLD_RPC_URL=\"http://localhost:8545\"\nWORLD_NETWORK=local\nnot a line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	if !loadDotEnvFile(path) {
		t.Fatalf("expected at least one variable to load")
	}
	if os.Getenv("WORLD_RPC_URL") != "http://localhost:8545" {
		t.Fatalf("unexpected WORLD_RPC_URL: %q", os.Getenv("WORLD_RPC_URL"))
	}
	if os.Getenv("WORLD_NETWORK") != "mainnet" {
		t.Fatalf("expected existing WORLD_NETWORK to be preserved")
	}
}

func TestParseDotEnvQuotesAndExport(t *testing.T) {
	values := parseDotEnv(strings.NewReader("export A='single'\nB=\"double\"\nC = plain \n=novalue\n1BAD=x\n"))
	expected := map[string]string{"A": "single", "B": "double", "C": "plain"}
	if len(values) != len(expected) {
		t.Fatalf("unexpected values: %v", values)
	}
	for key, value := range expected {
		if values[key] != value {
			t.Fatalf("expected %s=%q, got %q", key, value, values[key])
		}
	}
}

func TestFindDotEnvWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	path, ok := findDotEnv([]string{nested})
	if !ok || path != filepath.Join(root, ".env") {
		t.Fatalf("expected %s, got %q (%v)", filepath.Join(root, ".env"), path, ok)
	}
}

func TestOperatorConfigFromEnvMissingPrivateKey(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("WORLD_RPC_URL", "http://localhost:8545")

	if _, err := OperatorConfigFromEnv(); err == nil {
		t.Fatal("expected error for missing private key")
	}
}

func TestOperatorConfigFromEnvDefaults(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("WORLD_PRIVATE_KEY", testPrivateKey)
	t.Setenv("WORLD_RPC_URL", "http://localhost:8545")
	t.Setenv("WORLD_CHAIN_ID", "31337")

	config, err := OperatorConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Network != NetworkTestnet {
		t.Fatalf("expected testnet default, got %q", config.Network)
	}
	if config.ChainID != 31337 {
		t.Fatalf("unexpected chain ID: %d", config.ChainID)
	}
}

func TestOperatorConfigFromEnvScopedOverrides(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("WORLD_NETWORK", "mainnet")
	t.Setenv("WORLD_RPC_URL", "http://unscoped")
	t.Setenv("WORLD_PRIVATE_KEY", testPrivateKey)
	t.Setenv("MAINNET_WORLD_RPC_URL", "https://mainnet.example")
	t.Setenv("MAINNET_WORLD_CHAIN_ID", "1")
	t.Setenv("TESTNET_WORLD_RPC_URL", "https://testnet.example")

	config, err := OperatorConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.RPCURL != "https://mainnet.example" {
		t.Fatalf("expected scoped mainnet RPC URL, got %q", config.RPCURL)
	}
	if config.ChainID != 1 {
		t.Fatalf("expected scoped chain ID 1, got %d", config.ChainID)
	}
}

func TestOperatorConfigFromEnvAliases(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("PRIVATE_KEY", testPrivateKey)
	t.Setenv("RPC_URL", "http://alias")

	config, err := OperatorConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.RPCURL != "http://alias" || config.PrivateKey != testPrivateKey {
		t.Fatalf("unexpected aliased config: %+v", config)
	}
}

func TestOperatorConfigFromEnvBadNetwork(t *testing.T) {
	resetOperatorEnv(t)
	t.Setenv("WORLD_NETWORK", "devnet")
	t.Setenv("WORLD_PRIVATE_KEY", testPrivateKey)

	if _, err := OperatorConfigFromEnv(); err == nil {
		t.Fatal("expected error for unsupported network")
	}
}

func TestParsePrivateKeyHex(t *testing.T) {
	key, err := ParsePrivateKey("0x" + testPrivateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	if address != "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23" {
		t.Fatalf("unexpected address: %s", address)
	}
}

func TestParsePrivateKeyDER(t *testing.T) {
	generated, err := hedera.PrivateKeyGenerateEcdsa()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	fromDER, err := ParsePrivateKey(generated.StringDer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromRaw, err := ParsePrivateKey(generated.StringRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameKey(fromDER, fromRaw) {
		t.Fatalf("DER and raw forms parsed to different keys")
	}
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "notavalidkey", "0xinvalidhex"} {
		if _, err := ParsePrivateKey(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func sameKey(left *ecdsa.PrivateKey, right *ecdsa.PrivateKey) bool {
	return left.D.Cmp(right.D) == 0
}
