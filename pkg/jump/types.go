package jump

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vworld-labs/world-sdk-go/pkg/events"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

type Path string

const (
	// PathDirect: the avatar submits under the destination company's signature.
	PathDirect Path = "direct"
	// PathDelegated: the company submits under the avatar owner's signature
	// and pays the fee.
	PathDelegated Path = "delegated"
)

// Request is a signed jump ready for submission. The signature covers exactly
// (PortalID, AgreedFee, Nonce).
type Request struct {
	Path          Path
	Avatar        common.Address
	Company       common.Address
	PortalID      *big.Int
	AgreedFee     *big.Int
	Nonce         *big.Int
	Authorization signing.SignedAuthorization
}

func (r Request) Validate() error {
	switch r.Path {
	case PathDirect, PathDelegated:
	default:
		return fmt.Errorf("unknown jump path %q", r.Path)
	}
	if r.PortalID == nil || r.AgreedFee == nil {
		return fmt.Errorf("jump request requires portal id and agreed fee")
	}
	if r.AgreedFee.Sign() < 0 {
		return fmt.Errorf("agreed fee cannot be negative")
	}
	if len(r.Authorization.Signature) != signing.SignatureLength {
		return fmt.Errorf("jump request requires a %d-byte signature", signing.SignatureLength)
	}
	return nil
}

// Result describes the outcome of a submitted jump.
type Result struct {
	State       State
	Path        Path
	PortalID    *big.Int
	Fee         *big.Int
	Destination common.Address
	Receipt     *types.Receipt
	Events      events.Result
}
