package retry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess   = "success"
	outcomeRetryable = "retryable"
	outcomeFatal     = "fatal"
	outcomeExhausted = "exhausted"
)

type metrics struct {
	attempts *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "world_sdk",
		Name:      "submission_attempts_total",
		Help:      "Ledger submission attempts by outcome.",
	}, []string{"outcome"})

	if registerer != nil {
		if err := registerer.Register(attempts); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, fmt.Errorf("register retry metrics: %w", err)
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, fmt.Errorf("register retry metrics: unexpected collector %T", already.ExistingCollector)
			}
			attempts = existing
		}
	}

	return &metrics{attempts: attempts}, nil
}

func (m *metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}
