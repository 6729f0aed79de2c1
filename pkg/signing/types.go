package signing

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// VectorAddress locates an entity in the world -> company -> experience
// hierarchy. Field names match the on-chain tuple so values pack directly.
type VectorAddress struct {
	X    string
	Y    string
	Z    string
	T    *big.Int
	P    *big.Int
	PSub *big.Int
}

type RegistrationTerms struct {
	Fee                *big.Int
	CoveragePeriodDays *big.Int
	GracePeriodDays    *big.Int
}

// SignedAuthorization is a signature over a canonical payload digest. It is
// consumed by exactly one submission.
type SignedAuthorization struct {
	Digest     common.Hash
	Signer     common.Address
	Expiration *big.Int
	Signature  []byte
}

// Validate checks that every coordinate is present and non-negative.
func (v VectorAddress) Validate() error {
	if strings.TrimSpace(v.X) == "" || strings.TrimSpace(v.Y) == "" || strings.TrimSpace(v.Z) == "" {
		return fmt.Errorf("vector address requires x, y and z")
	}
	for name, value := range map[string]*big.Int{"t": v.T, "p": v.P, "p_sub": v.PSub} {
		if value == nil {
			return fmt.Errorf("vector address requires %s", name)
		}
		if value.Sign() < 0 {
			return fmt.Errorf("vector address %s cannot be negative", name)
		}
	}
	return nil
}

func (v VectorAddress) String() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", v.X, v.Y, v.Z, bigString(v.T), bigString(v.P), bigString(v.PSub))
}

// Validate checks that the fee and both periods are present and non-negative.
func (t RegistrationTerms) Validate() error {
	for name, value := range map[string]*big.Int{
		"fee":                t.Fee,
		"coveragePeriodDays": t.CoveragePeriodDays,
		"gracePeriodDays":    t.GracePeriodDays,
	} {
		if value == nil {
			return fmt.Errorf("registration terms require %s", name)
		}
		if value.Sign() < 0 {
			return fmt.Errorf("registration terms %s cannot be negative", name)
		}
	}
	return nil
}

// Hex returns the 0x-prefixed wire form of the signature.
func (a SignedAuthorization) Hex() string {
	return hexutil.Encode(a.Signature)
}

// Expired reports whether the authorization can no longer be accepted at now.
// Authorizations without an expiration never expire.
func (a SignedAuthorization) Expired(now time.Time) bool {
	return Expired(a.Expiration, now)
}

// Expired reports whether now is strictly after the unix-seconds expiration.
func Expired(expiration *big.Int, now time.Time) bool {
	if expiration == nil {
		return false
	}
	return big.NewInt(now.Unix()).Cmp(expiration) > 0
}

// ExpirationAfter returns the unix-seconds expiration ttl from now.
func ExpirationAfter(now time.Time, ttl time.Duration) *big.Int {
	return big.NewInt(now.Add(ttl).Unix())
}

func bigString(value *big.Int) string {
	if value == nil {
		return "<nil>"
	}
	return value.String()
}
