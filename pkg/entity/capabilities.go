package entity

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

var (
	DefaultAdminRole = [32]byte{}
	SignerRole       = [32]byte(crypto.Keccak256Hash([]byte("SIGNER_ROLE")))
)

// Signable entities keep a set of authorized off-chain signers.
type Signable interface {
	IsSigner(ctx context.Context, account common.Address) (bool, error)
	HasRole(ctx context.Context, role [32]byte, account common.Address) (bool, error)
	AddSigners(ctx context.Context, cred signing.Credential, signers []common.Address) (Outcome, error)
	RemoveSigners(ctx context.Context, cred signing.Credential, signers []common.Address) (Outcome, error)
}

// Removable entities hold registration terms and can be deactivated or
// removed by their registrar.
type Removable interface {
	IsActive(ctx context.Context) (bool, error)
	Terms(ctx context.Context) (signing.RegistrationTerms, error)
	TermsExpiration(ctx context.Context) (*big.Int, error)
	Deactivate(ctx context.Context, cred signing.Credential, reason string) (Outcome, error)
	Reactivate(ctx context.Context, cred signing.Credential) (Outcome, error)
	Remove(ctx context.Context, cred signing.Credential, reason string) (Outcome, error)
}

// Vectored entities occupy a vector address.
type Vectored interface {
	VectorAddress(ctx context.Context) (signing.VectorAddress, error)
}

type Upgradeable interface {
	Version(ctx context.Context) (*big.Int, error)
	Upgrade(ctx context.Context, cred signing.Credential, initData []byte) (Outcome, error)
}

type signable struct{ b *binding }

func (s signable) IsSigner(ctx context.Context, account common.Address) (bool, error) {
	return readBool(ctx, s.b, "isSigner", account)
}

func (s signable) HasRole(ctx context.Context, role [32]byte, account common.Address) (bool, error) {
	return readBool(ctx, s.b, "hasRole", role, account)
}

func (s signable) AddSigners(ctx context.Context, cred signing.Credential, signers []common.Address) (Outcome, error) {
	if len(signers) == 0 {
		return Outcome{}, fmt.Errorf("at least one signer is required")
	}
	return s.b.transact(ctx, cred, nil, "addSigners", signers)
}

func (s signable) RemoveSigners(ctx context.Context, cred signing.Credential, signers []common.Address) (Outcome, error) {
	if len(signers) == 0 {
		return Outcome{}, fmt.Errorf("at least one signer is required")
	}
	return s.b.transact(ctx, cred, nil, "removeSigners", signers)
}

type removable struct{ b *binding }

func (r removable) IsActive(ctx context.Context) (bool, error) {
	return readBool(ctx, r.b, "isActive")
}

func (r removable) Terms(ctx context.Context) (signing.RegistrationTerms, error) {
	var terms signing.RegistrationTerms
	if err := r.b.callInto(ctx, &terms, "getTerms"); err != nil {
		return signing.RegistrationTerms{}, err
	}
	return terms, nil
}

func (r removable) TermsExpiration(ctx context.Context) (*big.Int, error) {
	return readBigInt(ctx, r.b, "termsExpiration")
}

func (r removable) Deactivate(ctx context.Context, cred signing.Credential, reason string) (Outcome, error) {
	return r.b.transact(ctx, cred, nil, "deactivate", reason)
}

func (r removable) Reactivate(ctx context.Context, cred signing.Credential) (Outcome, error) {
	return r.b.transact(ctx, cred, nil, "reactivate")
}

func (r removable) Remove(ctx context.Context, cred signing.Credential, reason string) (Outcome, error) {
	return r.b.transact(ctx, cred, nil, "remove", reason)
}

type vectored struct{ b *binding }

func (v vectored) VectorAddress(ctx context.Context) (signing.VectorAddress, error) {
	var vector signing.VectorAddress
	if err := v.b.callInto(ctx, &vector, "vectorAddress"); err != nil {
		return signing.VectorAddress{}, err
	}
	return vector, nil
}

type upgradeable struct{ b *binding }

func (u upgradeable) Version(ctx context.Context) (*big.Int, error) {
	return readBigInt(ctx, u.b, "version")
}

func (u upgradeable) Upgrade(ctx context.Context, cred signing.Credential, initData []byte) (Outcome, error) {
	return u.b.transact(ctx, cred, nil, "upgrade", initData)
}

func readBool(ctx context.Context, b *binding, method string, args ...any) (bool, error) {
	var value bool
	if err := b.callInto(ctx, &value, method, args...); err != nil {
		return false, err
	}
	return value, nil
}

func readBigInt(ctx context.Context, b *binding, method string, args ...any) (*big.Int, error) {
	var value *big.Int
	if err := b.callInto(ctx, &value, method, args...); err != nil {
		return nil, err
	}
	return value, nil
}

func readAddress(ctx context.Context, b *binding, method string, args ...any) (common.Address, error) {
	var value common.Address
	if err := b.callInto(ctx, &value, method, args...); err != nil {
		return common.Address{}, err
	}
	return value, nil
}

func readString(ctx context.Context, b *binding, method string, args ...any) (string, error) {
	var value string
	if err := b.callInto(ctx, &value, method, args...); err != nil {
		return "", err
	}
	return value, nil
}
