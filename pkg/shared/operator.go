package shared

import (
	"bufio"
	"crypto/ecdsa"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/crypto"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type OperatorConfig struct {
	Network        string `env:"WORLD_NETWORK"`
	RPCURL         string `env:"WORLD_RPC_URL"`
	PrivateKey     string `env:"WORLD_PRIVATE_KEY"`
	ChainID        uint64 `env:"WORLD_CHAIN_ID"`
	DeploymentPath string `env:"WORLD_DEPLOYMENT"`
}

var dotenvLoadOnce sync.Once

// OperatorConfigFromEnv resolves the operator configuration from the environment.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	var config OperatorConfig
	if err := env.Parse(&config); err != nil {
		return OperatorConfig{}, fmt.Errorf("parse operator env: %w", err)
	}
	if config.Network == "" {
		config.Network = firstNonEmptyEnv("NETWORK")
	}

	network, err := NormalizeNetwork(config.Network)
	if err != nil {
		return OperatorConfig{}, err
	}
	config.Network = network

	var scoped OperatorConfig
	if err := env.ParseWithOptions(&scoped, env.Options{Prefix: strings.ToUpper(network) + "_"}); err != nil {
		return OperatorConfig{}, fmt.Errorf("parse %s operator env: %w", network, err)
	}
	mergeOperatorConfig(&config, scoped)

	if config.RPCURL == "" {
		config.RPCURL = firstNonEmptyEnv("RPC_URL", "ETH_RPC_URL")
	}
	if config.PrivateKey == "" {
		config.PrivateKey = firstNonEmptyEnv("PRIVATE_KEY", "OPERATOR_KEY")
	}

	if strings.TrimSpace(config.PrivateKey) == "" {
		return OperatorConfig{}, fmt.Errorf("WORLD_PRIVATE_KEY is required")
	}

	return config, nil
}

func mergeOperatorConfig(dst *OperatorConfig, scoped OperatorConfig) {
	if strings.TrimSpace(scoped.RPCURL) != "" {
		dst.RPCURL = strings.TrimSpace(scoped.RPCURL)
	}
	if strings.TrimSpace(scoped.PrivateKey) != "" {
		dst.PrivateKey = strings.TrimSpace(scoped.PrivateKey)
	}
	if scoped.ChainID != 0 {
		dst.ChainID = scoped.ChainID
	}
	if strings.TrimSpace(scoped.DeploymentPath) != "" {
		dst.DeploymentPath = strings.TrimSpace(scoped.DeploymentPath)
	}
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		if path, ok := findDotEnv(dotEnvSearchRoots()); ok {
			loadDotEnvFile(path)
		}
	})
}

// dotEnvSearchRoots returns the working directory and this package's source
// directory, the two places a .env file is looked for.
func dotEnvSearchRoots() []string {
	roots := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	if _, currentFile, _, ok := runtime.Caller(0); ok {
		roots = append(roots, filepath.Dir(currentFile))
	}
	return roots
}

// findDotEnv walks from each root towards the filesystem root and returns the
// first .env file found.
func findDotEnv(roots []string) (string, bool) {
	visited := make(map[string]bool)
	for _, root := range roots {
		for dir := root; ; dir = filepath.Dir(dir) {
			candidate := filepath.Join(dir, ".env")
			if !visited[candidate] {
				visited[candidate] = true
				if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
					return candidate, true
				}
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}
	return "", false
}

// loadDotEnvFile sets the variables defined in path that are not already
// present in the environment.
func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loaded := false
	for key, value := range parseDotEnv(file) {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if os.Setenv(key, value) == nil {
			loaded = true
		}
	}
	return loaded
}

func parseDotEnv(r io.Reader) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		key = strings.TrimSpace(key)
		if !found || !isValidEnvKey(key) {
			continue
		}
		values[key] = unquote(strings.TrimSpace(value))
	}
	return values
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	if quote := value[0]; (quote == '"' || quote == '\'') && value[len(value)-1] == quote {
		return value[1 : len(value)-1]
	}
	return value
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, character := range key {
		switch {
		case character == '_':
		case character >= 'A' && character <= 'Z':
		case character >= 'a' && character <= 'z':
		case character >= '0' && character <= '9' && index > 0:
		default:
			return false
		}
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}

// ParsePrivateKey parses a secp256k1 private key given as raw hex or as a
// DER-encoded ECDSA key string.
func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	hexKey, hexErr := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(candidate, "0x"), "0X"))
	if hexErr == nil {
		return hexKey, nil
	}

	derKey, derErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if derErr == nil {
		rawKey, rawErr := crypto.HexToECDSA(derKey.StringRaw())
		if rawErr == nil {
			return rawKey, nil
		}
		derErr = rawErr
	}

	return nil, fmt.Errorf(
		"failed to parse private key as hex (%v) or DER-encoded ECDSA (%v)",
		hexErr,
		derErr,
	)
}
