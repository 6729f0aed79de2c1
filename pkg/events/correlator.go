package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

type CorrelatorConfig struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// Correlator decodes receipt logs against the interfaces held by a Registry.
// Logs it cannot decode are skipped, never fatal.
type Correlator struct {
	registry *Registry
	logger   *slog.Logger
	decoded  *prometheus.CounterVec
}

// NewCorrelator creates a correlator reading from registry.
func NewCorrelator(registry *Registry, config CorrelatorConfig) (*Correlator, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	decoded, err := newDecodedCounter(config.Registerer)
	if err != nil {
		return nil, err
	}
	return &Correlator{registry: registry, logger: logger, decoded: decoded}, nil
}

func (c *Correlator) Registry() *Registry {
	return c.registry
}

// Decode decodes every log in receipt and reports the logs it skipped.
func (c *Correlator) Decode(receipt *types.Receipt) (Result, []SkippedLog) {
	if receipt == nil {
		return Result{}, nil
	}
	return c.DecodeLogs(receipt.Logs)
}

// DecodeReceipt decodes receipt, logging skipped logs at debug level.
func (c *Correlator) DecodeReceipt(receipt *types.Receipt) Result {
	result, skipped := c.Decode(receipt)
	for _, skip := range skipped {
		c.logger.Debug(
			"skipped undecodable log",
			"tx_hash", receipt.TxHash.Hex(),
			"log_index", skip.Index,
			"address", skip.Address.Hex(),
			"error", skip.Err,
		)
	}
	return result
}

// DecodeLogs decodes logs in the order given.
func (c *Correlator) DecodeLogs(logs []*types.Log) (Result, []SkippedLog) {
	result := Result{}
	skipped := make([]SkippedLog, 0)

	for _, log := range logs {
		if log == nil {
			continue
		}
		event, err := c.decodeLog(log)
		if err != nil {
			skipped = append(skipped, SkippedLog{Index: log.Index, Address: log.Address, Err: err})
			c.observe("skipped")
			continue
		}
		result[event.Name] = append(result[event.Name], event)
		c.observe("decoded")
	}

	return result, skipped
}

func (c *Correlator) decodeLog(log *types.Log) (DecodedEvent, error) {
	iface, ok := c.registry.Lookup(log.Address)
	if !ok {
		return DecodedEvent{}, decodeFailure("no interface registered for emitter", nil)
	}
	if len(log.Topics) == 0 {
		return DecodedEvent{}, decodeFailure("log has no topics", nil)
	}

	event, err := iface.ABI.EventByID(log.Topics[0])
	if err != nil {
		return DecodedEvent{}, decodeFailure(fmt.Sprintf("unknown event for %s", iface.Kind), err)
	}

	indexed := make(abi.Arguments, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(log.Topics)-1 != len(indexed) {
		return DecodedEvent{}, decodeFailure(
			fmt.Sprintf("%s expects %d indexed topics, log has %d", event.Name, len(indexed), len(log.Topics)-1),
			nil,
		)
	}

	values := map[string]any{}
	if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
		return DecodedEvent{}, decodeFailure(fmt.Sprintf("parse %s topics", event.Name), err)
	}
	if err := event.Inputs.UnpackIntoMap(values, log.Data); err != nil {
		return DecodedEvent{}, decodeFailure(fmt.Sprintf("unpack %s data", event.Name), err)
	}

	args := make([]Arg, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		args = append(args, Arg{
			Name:    input.Name,
			Type:    input.Type.String(),
			Indexed: input.Indexed,
			Value:   values[input.Name],
		})
	}

	return DecodedEvent{
		Name:        event.Name,
		Emitter:     log.Address,
		Args:        args,
		LogIndex:    log.Index,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
	}, nil
}

// Discover registers entity addresses carried by rule events in result. The
// first registration for an address wins. It returns the newly added
// addresses.
func (c *Correlator) Discover(result Result, rules []DiscoveryRule) ([]common.Address, error) {
	added := make([]common.Address, 0)
	var errs []error

	for _, rule := range rules {
		occurrences := result[rule.Event]
		if len(occurrences) == 0 {
			continue
		}
		iface, err := InterfaceFor(rule.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("discovery rule %s: %w", rule.Event, err))
			continue
		}
		for _, occurrence := range occurrences {
			address, err := occurrence.AddressArg(rule.AddressArg)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if c.registry.Add(address, iface) {
				added = append(added, address)
				c.logger.Debug("discovered entity", "kind", string(rule.Kind), "address", address.Hex())
			}
		}
	}

	return added, errors.Join(errs...)
}

func (c *Correlator) observe(result string) {
	c.decoded.WithLabelValues(result).Inc()
}

func decodeFailure(message string, cause error) error {
	return &shared.Error{Code: shared.ErrorCodeDecodeFailure, Message: message, Cause: cause}
}

func newDecodedCounter(registerer prometheus.Registerer) (*prometheus.CounterVec, error) {
	decoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "world_sdk",
		Name:      "decoded_logs_total",
		Help:      "Receipt logs processed by the event correlator.",
	}, []string{"result"})

	if registerer == nil {
		return decoded, nil
	}
	if err := registerer.Register(decoded); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register correlator metrics: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register correlator metrics: unexpected collector %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return decoded, nil
}
