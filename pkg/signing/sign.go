package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const SignatureLength = 65

// Sign produces a personal-message signature over digest with V in {27, 28}.
func Sign(cred Credential, digest common.Hash) (SignedAuthorization, error) {
	signer, err := RequireSigner(cred)
	if err != nil {
		return SignedAuthorization{}, err
	}

	signature, err := signer.SignDigest(PersonalDigest(digest).Bytes())
	if err != nil {
		return SignedAuthorization{}, fmt.Errorf("sign digest: %w", err)
	}
	if len(signature) != SignatureLength {
		return SignedAuthorization{}, fmt.Errorf("signer returned %d bytes, expected %d", len(signature), SignatureLength)
	}
	if signature[64] < 27 {
		signature[64] += 27
	}

	return SignedAuthorization{
		Digest:    digest,
		Signer:    signer.Address(),
		Signature: signature,
	}, nil
}

// SignTerms authorizes registration terms owned by termsOwner until expiration.
func SignTerms(
	cred Credential,
	termsOwner common.Address,
	terms RegistrationTerms,
	expiration *big.Int,
) (SignedAuthorization, error) {
	if _, err := RequireSigner(cred); err != nil {
		return SignedAuthorization{}, err
	}
	digest, err := TermsDigest(termsOwner, terms, expiration)
	if err != nil {
		return SignedAuthorization{}, err
	}
	authorization, err := Sign(cred, digest)
	if err != nil {
		return SignedAuthorization{}, err
	}
	authorization.Expiration = new(big.Int).Set(expiration)
	return authorization, nil
}

// SignVector authorizes a spatial claim on vector within scope until expiration.
func SignVector(
	cred Credential,
	vector VectorAddress,
	scope common.Address,
	expiration *big.Int,
) (SignedAuthorization, error) {
	if _, err := RequireSigner(cred); err != nil {
		return SignedAuthorization{}, err
	}
	digest, err := VectorDigest(vector, scope, expiration)
	if err != nil {
		return SignedAuthorization{}, err
	}
	authorization, err := Sign(cred, digest)
	if err != nil {
		return SignedAuthorization{}, err
	}
	authorization.Expiration = new(big.Int).Set(expiration)
	return authorization, nil
}

// SignJump authorizes a jump through portalID for agreedFee at nonce.
func SignJump(
	cred Credential,
	portalID *big.Int,
	agreedFee *big.Int,
	nonce *big.Int,
) (SignedAuthorization, error) {
	if _, err := RequireSigner(cred); err != nil {
		return SignedAuthorization{}, err
	}
	digest, err := JumpDigest(portalID, agreedFee, nonce)
	if err != nil {
		return SignedAuthorization{}, err
	}
	return Sign(cred, digest)
}
