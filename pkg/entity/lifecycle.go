package entity

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

type Lifecycle string

const (
	// LifecycleActive: within the paid coverage period.
	LifecycleActive Lifecycle = "active"
	// LifecycleExpired: coverage lapsed; the entity may be deactivated.
	LifecycleExpired Lifecycle = "expired"
	// LifecycleRemovable: the grace period after expiration has elapsed.
	LifecycleRemovable Lifecycle = "removable"
)

const secondsPerDay = 24 * 60 * 60

// LifecycleAt derives the subscription state of an entity whose terms expire
// at expiration (unix seconds).
func LifecycleAt(terms signing.RegistrationTerms, expiration *big.Int, now time.Time) (Lifecycle, error) {
	if expiration == nil {
		return "", fmt.Errorf("terms expiration is required")
	}
	if err := terms.Validate(); err != nil {
		return "", err
	}

	current := big.NewInt(now.Unix())
	if current.Cmp(expiration) <= 0 {
		return LifecycleActive, nil
	}
	grace := new(big.Int).Mul(terms.GracePeriodDays, big.NewInt(secondsPerDay))
	graceEnd := new(big.Int).Add(expiration, grace)
	if current.Cmp(graceEnd) <= 0 {
		return LifecycleExpired, nil
	}
	return LifecycleRemovable, nil
}

// Lifecycle reads terms and expiration from the ledger and evaluates them at now.
func (r removable) Lifecycle(ctx context.Context, now time.Time) (Lifecycle, error) {
	terms, err := r.Terms(ctx)
	if err != nil {
		return "", err
	}
	expiration, err := r.TermsExpiration(ctx)
	if err != nil {
		return "", err
	}
	return LifecycleAt(terms, expiration, now)
}
