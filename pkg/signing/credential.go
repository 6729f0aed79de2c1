package signing

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

// Credential identifies the account a call is made from. A bare Credential
// can read but cannot sign.
type Credential interface {
	Address() common.Address
}

// Signer signs 32-byte digests, returning [R || S || V] with V in {0, 1}.
type Signer interface {
	Credential
	SignDigest(digest []byte) ([]byte, error)
}

// TxSigner signs ledger transactions.
type TxSigner interface {
	Credential
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner wraps a secp256k1 private key as a message and transaction signer.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// KeySignerFromString parses raw (hex or DER) and wraps it as a KeySigner.
func KeySignerFromString(raw string) (*KeySigner, error) {
	key, err := shared.ParsePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(key), nil
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

func (s *KeySigner) SignDigest(digest []byte) ([]byte, error) {
	return crypto.Sign(digest, s.key)
}

func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

type readOnlyCredential common.Address

// ReadOnly returns a credential for address that carries no signing capability.
func ReadOnly(address common.Address) Credential {
	return readOnlyCredential(address)
}

func (c readOnlyCredential) Address() common.Address {
	return common.Address(c)
}

// RequireSigner returns cred as a Signer or fails with signing_unavailable.
func RequireSigner(cred Credential) (Signer, error) {
	if cred == nil {
		return nil, shared.NewError(shared.ErrorCodeSigningUnavailable, "no credential supplied", nil)
	}
	signer, ok := cred.(Signer)
	if !ok {
		return nil, &shared.Error{
			Code:    shared.ErrorCodeSigningUnavailable,
			Message: "credential cannot sign messages",
			Reason:  cred.Address().Hex(),
		}
	}
	return signer, nil
}

// RequireTxSigner returns cred as a TxSigner or fails with signing_unavailable.
func RequireTxSigner(cred Credential) (TxSigner, error) {
	if cred == nil {
		return nil, shared.NewError(shared.ErrorCodeSigningUnavailable, "no credential supplied", nil)
	}
	signer, ok := cred.(TxSigner)
	if !ok {
		return nil, &shared.Error{
			Code:    shared.ErrorCodeSigningUnavailable,
			Message: "credential cannot sign transactions",
			Reason:  cred.Address().Hex(),
		}
	}
	return signer, nil
}
