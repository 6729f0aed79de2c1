package entity

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/deployment"
	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/ledger"
	"github.com/vworld-labs/world-sdk-go/pkg/retry"
)

type BinderConfig struct {
	Backend        ledger.Backend
	Executor       *retry.Executor
	Correlator     *events.Correlator
	DiscoveryRules []events.DiscoveryRule
	Logger         *slog.Logger
	PollInterval   time.Duration
}

// Binder builds entity wrappers that share one backend, executor and
// correlator. Every bound address is added to the correlator's registry.
type Binder struct {
	backend      ledger.Backend
	executor     *retry.Executor
	correlator   *events.Correlator
	rules        []events.DiscoveryRule
	logger       *slog.Logger
	pollInterval time.Duration
}

func NewBinder(config BinderConfig) (*Binder, error) {
	if config.Backend == nil {
		return nil, fmt.Errorf("ledger backend is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	executor := config.Executor
	if executor == nil {
		defaultExecutor, err := retry.NewExecutor(retry.Config{Logger: logger})
		if err != nil {
			return nil, err
		}
		executor = defaultExecutor
	}
	correlator := config.Correlator
	if correlator == nil {
		defaultCorrelator, err := events.NewCorrelator(events.NewRegistry(), events.CorrelatorConfig{Logger: logger})
		if err != nil {
			return nil, err
		}
		correlator = defaultCorrelator
	}
	rules := config.DiscoveryRules
	if rules == nil {
		rules = events.DefaultDiscoveryRules()
	}

	return &Binder{
		backend:      config.Backend,
		executor:     executor,
		correlator:   correlator,
		rules:        rules,
		logger:       logger,
		pollInterval: config.PollInterval,
	}, nil
}

func (b *Binder) Correlator() *events.Correlator {
	return b.correlator
}

func (b *Binder) Executor() *retry.Executor {
	return b.executor
}

func (b *Binder) bind(kind contracts.Kind, address common.Address) (*binding, error) {
	if address == (common.Address{}) {
		return nil, fmt.Errorf("cannot bind %s to the zero address", kind)
	}
	iface, err := events.InterfaceFor(kind)
	if err != nil {
		return nil, err
	}
	contract, err := ledger.NewContract(address, iface.ABI, b.backend, ledger.Options{
		Executor:     b.executor,
		Logger:       b.logger,
		PollInterval: b.pollInterval,
	})
	if err != nil {
		return nil, err
	}
	b.correlator.Registry().Add(address, iface)

	return &binding{
		kind:       kind,
		contract:   contract,
		correlator: b.correlator,
		rules:      b.rules,
		logger:     b.logger.With("kind", string(kind), "address", address.Hex()),
	}, nil
}

func (b *Binder) Registry(address common.Address) (*Registry, error) {
	core, err := b.bind(contracts.KindRegistry, address)
	if err != nil {
		return nil, err
	}
	return &Registry{upgradeable: upgradeable{core}, binding: core}, nil
}

func (b *Binder) Registrar(address common.Address) (*Registrar, error) {
	core, err := b.bind(contracts.KindRegistrar, address)
	if err != nil {
		return nil, err
	}
	return &Registrar{signable: signable{core}, binding: core}, nil
}

func (b *Binder) World(address common.Address) (*World, error) {
	core, err := b.bind(contracts.KindWorld, address)
	if err != nil {
		return nil, err
	}
	return &World{
		signable:    signable{core},
		removable:   removable{core},
		vectored:    vectored{core},
		upgradeable: upgradeable{core},
		binding:     core,
	}, nil
}

func (b *Binder) Company(address common.Address) (*Company, error) {
	core, err := b.bind(contracts.KindCompany, address)
	if err != nil {
		return nil, err
	}
	return &Company{
		signable:    signable{core},
		removable:   removable{core},
		vectored:    vectored{core},
		upgradeable: upgradeable{core},
		binding:     core,
	}, nil
}

func (b *Binder) Experience(address common.Address) (*Experience, error) {
	core, err := b.bind(contracts.KindExperience, address)
	if err != nil {
		return nil, err
	}
	return &Experience{
		removable:   removable{core},
		vectored:    vectored{core},
		upgradeable: upgradeable{core},
		binding:     core,
	}, nil
}

func (b *Binder) Avatar(address common.Address) (*Avatar, error) {
	core, err := b.bind(contracts.KindAvatar, address)
	if err != nil {
		return nil, err
	}
	return &Avatar{upgradeable: upgradeable{core}, binding: core}, nil
}

func (b *Binder) ERC20Asset(address common.Address) (*ERC20Asset, error) {
	core, err := b.bind(contracts.KindERC20Asset, address)
	if err != nil {
		return nil, err
	}
	return &ERC20Asset{removable: removable{core}, upgradeable: upgradeable{core}, binding: core}, nil
}

func (b *Binder) ERC721Asset(address common.Address) (*ERC721Asset, error) {
	core, err := b.bind(contracts.KindERC721Asset, address)
	if err != nil {
		return nil, err
	}
	return &ERC721Asset{removable: removable{core}, upgradeable: upgradeable{core}, binding: core}, nil
}

// Resolve looks up name in network and checks that it is deployed as kind.
func Resolve(network deployment.Network, name string, kind contracts.Kind) (common.Address, error) {
	ref, err := network.Contract(name)
	if err != nil {
		return common.Address{}, err
	}
	if ref.Kind != kind {
		return common.Address{}, fmt.Errorf("contract %s on %s is a %s, not a %s", name, network.Name, ref.Kind, kind)
	}
	return ref.HexAddress(), nil
}
