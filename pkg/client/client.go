package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/deployment"
	"github.com/vworld-labs/world-sdk-go/pkg/entity"
	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/jump"
	"github.com/vworld-labs/world-sdk-go/pkg/ledger"
	"github.com/vworld-labs/world-sdk-go/pkg/mirror"
	"github.com/vworld-labs/world-sdk-go/pkg/retry"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

// Config configures a Client. Backend replaces dialing RPCURL when set.
type Config struct {
	Network           string
	RPCURL            string
	DeploymentPath    string
	Deployment        *deployment.Config
	Backend           ledger.Backend
	PrivateKey        string
	MaxAttempts       int
	RequestsPerSecond float64
	PollInterval      time.Duration
	MirrorBaseURL     string
	MirrorAPIKey      string
	Logger            *slog.Logger
	Registerer        prometheus.Registerer
}

// Client wires one deployment network to a ledger backend. All wrappers it
// binds share the same retry executor and event registry.
type Client struct {
	network    deployment.Network
	backend    ledger.Backend
	closeFn    func()
	operator   signing.Credential
	executor   *retry.Executor
	correlator *events.Correlator
	binder     *entity.Binder
	jumps      *jump.Coordinator
	mirror     *mirror.Client
	logger     *slog.Logger
}

// NewClient creates a new Client.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deploymentConfig := config.Deployment
	if deploymentConfig == nil {
		if strings.TrimSpace(config.DeploymentPath) == "" {
			return nil, fmt.Errorf("deployment or deployment path is required")
		}
		loaded, err := deployment.Load(config.DeploymentPath)
		if err != nil {
			return nil, err
		}
		deploymentConfig = loaded
	} else if err := deploymentConfig.Validate(); err != nil {
		return nil, err
	}
	network, err := deploymentConfig.Network(config.Network)
	if err != nil {
		return nil, err
	}
	logger = logger.With("network", network.Name)

	var operator signing.Credential
	if strings.TrimSpace(config.PrivateKey) != "" {
		key, err := shared.ParsePrivateKey(config.PrivateKey)
		if err != nil {
			return nil, err
		}
		operator = signing.NewKeySigner(key)
	}

	backend := config.Backend
	closeFn := func() {}
	if backend == nil {
		rpcURL := strings.TrimSpace(config.RPCURL)
		if rpcURL == "" {
			rpcURL = network.RPCURL
		}
		dialed, err := shared.DialLedger(ctx, rpcURL)
		if err != nil {
			return nil, err
		}
		backend = dialed
		closeFn = dialed.Close
	}
	if err := checkChainID(ctx, backend, network); err != nil {
		closeFn()
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	executor, err := retry.NewExecutor(retry.Config{
		MaxAttempts: config.MaxAttempts,
		Limiter:     limiter,
		Logger:      logger,
		Registerer:  config.Registerer,
	})
	if err != nil {
		closeFn()
		return nil, err
	}

	registry := events.NewRegistry()
	seeded, err := registry.Seed(network.SeedEntries())
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("seed event registry: %w", err)
	}
	correlator, err := events.NewCorrelator(registry, events.CorrelatorConfig{
		Logger:     logger,
		Registerer: config.Registerer,
	})
	if err != nil {
		closeFn()
		return nil, err
	}

	binder, err := entity.NewBinder(entity.BinderConfig{
		Backend:      backend,
		Executor:     executor,
		Correlator:   correlator,
		Logger:       logger,
		PollInterval: config.PollInterval,
	})
	if err != nil {
		closeFn()
		return nil, err
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network.Name,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
		Logger:  logger,
	})
	if err != nil {
		closeFn()
		return nil, err
	}

	logger.Debug("world client ready", "seeded", seeded, "contracts", registry.Len())
	return &Client{
		network:    network,
		backend:    backend,
		closeFn:    closeFn,
		operator:   operator,
		executor:   executor,
		correlator: correlator,
		binder:     binder,
		jumps:      jump.NewCoordinator(jump.Config{Logger: logger}),
		mirror:     mirrorClient,
		logger:     logger,
	}, nil
}

// NewClientFromEnv builds a client from WORLD_* environment variables.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	operatorConfig, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, Config{
		Network:        operatorConfig.Network,
		RPCURL:         operatorConfig.RPCURL,
		DeploymentPath: operatorConfig.DeploymentPath,
		PrivateKey:     operatorConfig.PrivateKey,
	})
}

func checkChainID(ctx context.Context, backend ledger.Backend, network deployment.Network) error {
	if network.ChainID == 0 {
		return nil
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return shared.NewError(shared.ErrorCodeTransientRPC, "read chain id", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != network.ChainID {
		return fmt.Errorf("ledger chain id %s does not match deployment %s (%d)", chainID, network.Name, network.ChainID)
	}
	return nil
}

func (c *Client) Close() {
	c.closeFn()
}

func (c *Client) Network() deployment.Network {
	return c.network
}

func (c *Client) Backend() ledger.Backend {
	return c.backend
}

// Operator returns the configured credential, or nil when the client is
// read-only.
func (c *Client) Operator() signing.Credential {
	return c.operator
}

func (c *Client) Binder() *entity.Binder {
	return c.binder
}

func (c *Client) Jumps() *jump.Coordinator {
	return c.jumps
}

func (c *Client) Correlator() *events.Correlator {
	return c.correlator
}

func (c *Client) Registry() *events.Registry {
	return c.correlator.Registry()
}

func (c *Client) Executor() *retry.Executor {
	return c.executor
}

func (c *Client) Mirror() *mirror.Client {
	return c.mirror
}

// RegistryContract binds the deployment's "registry" contract.
func (c *Client) RegistryContract() (*entity.Registry, error) {
	address, err := entity.Resolve(c.network, "registry", contracts.KindRegistry)
	if err != nil {
		return nil, err
	}
	return c.binder.Registry(address)
}

// RegistrarContract binds the deployment's "registrar" contract.
func (c *Client) RegistrarContract() (*entity.Registrar, error) {
	address, err := entity.Resolve(c.network, "registrar", contracts.KindRegistrar)
	if err != nil {
		return nil, err
	}
	return c.binder.Registrar(address)
}

// DecodeTransaction fetches the receipt for hash and decodes its events. When
// the ledger node no longer serves the receipt, the mirror node is used.
func (c *Client) DecodeTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, events.Result, error) {
	receipt, err := retry.Do(ctx, c.executor, func(ctx context.Context) (*types.Receipt, error) {
		return c.backend.TransactionReceipt(ctx, hash)
	})
	if errors.Is(err, ethereum.NotFound) && c.mirror != nil {
		c.logger.Debug("receipt not on ledger node, trying mirror", "tx_hash", hash.Hex())
		receipt, err = retry.Do(ctx, c.executor, func(ctx context.Context) (*types.Receipt, error) {
			return c.mirror.Receipt(ctx, hash)
		})
	}
	if err != nil {
		return nil, nil, err
	}
	return receipt, c.correlator.DecodeReceipt(receipt), nil
}
