package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	uint256Type = mustType("uint256")
	addressType = mustType("address")
	stringType  = mustType("string")
)

// Field order is part of the wire format. Never reorder.
var (
	termsArguments = abi.Arguments{
		{Name: "termsOwner", Type: addressType},
		{Name: "fee", Type: uint256Type},
		{Name: "coveragePeriodDays", Type: uint256Type},
		{Name: "gracePeriodDays", Type: uint256Type},
		{Name: "expiration", Type: uint256Type},
	}
	vectorArguments = abi.Arguments{
		{Name: "x", Type: stringType},
		{Name: "y", Type: stringType},
		{Name: "z", Type: stringType},
		{Name: "t", Type: uint256Type},
		{Name: "p", Type: uint256Type},
		{Name: "p_sub", Type: uint256Type},
		{Name: "scope", Type: addressType},
		{Name: "expiration", Type: uint256Type},
	}
	jumpArguments = abi.Arguments{
		{Name: "portalId", Type: uint256Type},
		{Name: "agreedFee", Type: uint256Type},
		{Name: "nonce", Type: uint256Type},
	}
)

func mustType(name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// TermsDigest hashes (termsOwner, fee, coveragePeriodDays, gracePeriodDays, expiration).
func TermsDigest(termsOwner common.Address, terms RegistrationTerms, expiration *big.Int) (common.Hash, error) {
	if err := terms.Validate(); err != nil {
		return common.Hash{}, err
	}
	if expiration == nil {
		return common.Hash{}, fmt.Errorf("terms authorization requires an expiration")
	}
	encoded, err := termsArguments.Pack(
		termsOwner,
		terms.Fee,
		terms.CoveragePeriodDays,
		terms.GracePeriodDays,
		expiration,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode terms: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// VectorDigest hashes (x, y, z, t, p, p_sub, scope, expiration).
func VectorDigest(vector VectorAddress, scope common.Address, expiration *big.Int) (common.Hash, error) {
	if err := vector.Validate(); err != nil {
		return common.Hash{}, err
	}
	if expiration == nil {
		return common.Hash{}, fmt.Errorf("vector authorization requires an expiration")
	}
	encoded, err := vectorArguments.Pack(
		vector.X,
		vector.Y,
		vector.Z,
		vector.T,
		vector.P,
		vector.PSub,
		scope,
		expiration,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode vector: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// JumpDigest hashes (portalId, agreedFee, nonce).
func JumpDigest(portalID *big.Int, agreedFee *big.Int, nonce *big.Int) (common.Hash, error) {
	for name, value := range map[string]*big.Int{"portalId": portalID, "agreedFee": agreedFee, "nonce": nonce} {
		if value == nil {
			return common.Hash{}, fmt.Errorf("jump authorization requires %s", name)
		}
		if value.Sign() < 0 {
			return common.Hash{}, fmt.Errorf("jump authorization %s cannot be negative", name)
		}
	}
	encoded, err := jumpArguments.Pack(portalID, agreedFee, nonce)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode jump: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// PersonalDigest applies the personal-message prefix to digest. This is the
// hash that signatures are produced over and recovered against.
func PersonalDigest(digest common.Hash) common.Hash {
	return common.BytesToHash(accounts.TextHash(digest.Bytes()))
}
