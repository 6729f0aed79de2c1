package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

// RegisterWorldRequest registers a world under a vector claim signed by the
// registrar's vector authority.
type RegisterWorldRequest struct {
	Owner  common.Address
	Name   string
	Vector signing.VectorAddress
	Claim  signing.SignedAuthorization
	Fee    *big.Int
}

// RegisterCompanyRequest registers a company under terms signed by the
// world's terms signer.
type RegisterCompanyRequest struct {
	Owner common.Address
	Name  string
	Terms signing.RegistrationTerms
	Grant signing.SignedAuthorization
	Fee   *big.Int
}

type AddExperienceRequest struct {
	Name              string
	EntryFee          *big.Int
	ConnectionDetails []byte
}

// Registration is the result of a write that creates an entity.
type Registration struct {
	Address common.Address
	Outcome Outcome
}

// ExperienceRegistration carries the portal assigned to a new experience.
type ExperienceRegistration struct {
	Address  common.Address
	PortalID *big.Int
	Outcome  Outcome
}
