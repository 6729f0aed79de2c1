package signing

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

func newTestSigner(t *testing.T) *KeySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return NewKeySigner(key)
}

func testTerms(fee int64) RegistrationTerms {
	return RegistrationTerms{
		Fee:                big.NewInt(fee),
		CoveragePeriodDays: big.NewInt(365),
		GracePeriodDays:    big.NewInt(30),
	}
}

func testVector() VectorAddress {
	return VectorAddress{
		X:    "1.5",
		Y:    "-20",
		Z:    "300",
		T:    big.NewInt(0),
		P:    big.NewInt(2),
		PSub: big.NewInt(0),
	}
}

func TestSignTermsRoundTrip(t *testing.T) {
	termsOwner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	expiration := big.NewInt(time.Now().Add(time.Hour).Unix())

	for index := 0; index < 16; index++ {
		signer := newTestSigner(t)
		terms := testTerms(int64(index * 1000))

		authorization, err := SignTerms(signer, termsOwner, terms, expiration)
		if err != nil {
			t.Fatalf("SignTerms failed: %v", err)
		}
		if len(authorization.Signature) != SignatureLength {
			t.Fatalf("unexpected signature length: %d", len(authorization.Signature))
		}
		if v := authorization.Signature[64]; v != 27 && v != 28 {
			t.Fatalf("unexpected V byte: %d", v)
		}

		recovered, err := RecoverSigner(authorization.Digest, authorization.Signature)
		if err != nil {
			t.Fatalf("RecoverSigner failed: %v", err)
		}
		if recovered != signer.Address() {
			t.Fatalf("expected %s, recovered %s", signer.Address().Hex(), recovered.Hex())
		}
		if authorization.Signer != signer.Address() {
			t.Fatalf("authorization signer mismatch")
		}
	}
}

func TestRecoverSignerMatchesGoEthereum(t *testing.T) {
	signer := newTestSigner(t)
	digest, err := JumpDigest(big.NewInt(7), big.NewInt(100), big.NewInt(3))
	if err != nil {
		t.Fatalf("JumpDigest failed: %v", err)
	}
	authorization, err := Sign(signer, digest)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	normalized := append([]byte{}, authorization.Signature...)
	normalized[64] -= 27
	publicKey, err := crypto.SigToPub(PersonalDigest(digest).Bytes(), normalized)
	if err != nil {
		t.Fatalf("SigToPub failed: %v", err)
	}
	if crypto.PubkeyToAddress(*publicKey) != signer.Address() {
		t.Fatalf("go-ethereum recovery disagrees with signer")
	}
}

func TestJumpSignatureIntegrity(t *testing.T) {
	company := newTestSigner(t)
	authorization, err := SignJump(company, big.NewInt(7), big.NewInt(100), big.NewInt(0))
	if err != nil {
		t.Fatalf("SignJump failed: %v", err)
	}

	cases := []struct {
		name      string
		portalID  int64
		agreedFee int64
		nonce     int64
	}{
		{"fee zeroed", 7, 0, 0},
		{"portal changed", 8, 100, 0},
		{"nonce advanced", 7, 100, 1},
		{"fields swapped", 100, 7, 0},
	}

	for _, tc := range cases {
		tampered, err := JumpDigest(big.NewInt(tc.portalID), big.NewInt(tc.agreedFee), big.NewInt(tc.nonce))
		if err != nil {
			t.Fatalf("%s: JumpDigest failed: %v", tc.name, err)
		}
		if Verify(company.Address(), tampered, authorization.Signature) {
			t.Fatalf("%s: signature must not verify against altered payload", tc.name)
		}
	}

	if !Verify(company.Address(), authorization.Digest, authorization.Signature) {
		t.Fatalf("signature must verify against the original payload")
	}
}

func TestJumpDigestIsTupleEncoding(t *testing.T) {
	digest, err := JumpDigest(big.NewInt(7), big.NewInt(100), big.NewInt(2))
	if err != nil {
		t.Fatalf("JumpDigest failed: %v", err)
	}

	encoded := make([]byte, 0, 96)
	encoded = append(encoded, common.LeftPadBytes(big.NewInt(7).Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(big.NewInt(100).Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(big.NewInt(2).Bytes(), 32)...)
	if digest != crypto.Keccak256Hash(encoded) {
		t.Fatalf("unexpected jump digest encoding")
	}
}

func TestTermsDigestDependsOnEveryField(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	expiration := big.NewInt(1_900_000_000)
	base, err := TermsDigest(owner, testTerms(10), expiration)
	if err != nil {
		t.Fatalf("TermsDigest failed: %v", err)
	}

	variants := []struct {
		owner      common.Address
		terms      RegistrationTerms
		expiration *big.Int
	}{
		{common.HexToAddress("0x00000000000000000000000000000000000000ab"), testTerms(10), expiration},
		{owner, testTerms(11), expiration},
		{owner, RegistrationTerms{Fee: big.NewInt(10), CoveragePeriodDays: big.NewInt(364), GracePeriodDays: big.NewInt(30)}, expiration},
		{owner, RegistrationTerms{Fee: big.NewInt(10), CoveragePeriodDays: big.NewInt(365), GracePeriodDays: big.NewInt(31)}, expiration},
		{owner, testTerms(10), big.NewInt(1_900_000_001)},
	}
	for index, variant := range variants {
		digest, err := TermsDigest(variant.owner, variant.terms, variant.expiration)
		if err != nil {
			t.Fatalf("variant %d: TermsDigest failed: %v", index, err)
		}
		if digest == base {
			t.Fatalf("variant %d: expected a different digest", index)
		}
	}

	again, _ := TermsDigest(owner, testTerms(10), expiration)
	if again != base {
		t.Fatalf("expected deterministic digest")
	}
}

func TestSignVectorRoundTrip(t *testing.T) {
	authority := newTestSigner(t)
	scope := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	expiration := big.NewInt(time.Now().Add(time.Hour).Unix())

	authorization, err := SignVector(authority, testVector(), scope, expiration)
	if err != nil {
		t.Fatalf("SignVector failed: %v", err)
	}
	if !Verify(authority.Address(), authorization.Digest, authorization.Signature) {
		t.Fatalf("vector authorization did not verify")
	}

	other := testVector()
	other.PSub = big.NewInt(1)
	otherDigest, err := VectorDigest(other, scope, expiration)
	if err != nil {
		t.Fatalf("VectorDigest failed: %v", err)
	}
	if Verify(authority.Address(), otherDigest, authorization.Signature) {
		t.Fatalf("vector authorization must not verify for a different p_sub")
	}
}

func TestReadOnlyCredentialCannotSign(t *testing.T) {
	credential := ReadOnly(common.HexToAddress("0x00000000000000000000000000000000000000dd"))

	_, err := SignJump(credential, big.NewInt(1), big.NewInt(1), big.NewInt(0))
	if !errors.Is(err, shared.ErrSigningUnavailable) {
		t.Fatalf("expected signing unavailable, got %v", err)
	}
	_, err = SignTerms(credential, common.Address{}, testTerms(1), big.NewInt(1))
	if !errors.Is(err, shared.ErrSigningUnavailable) {
		t.Fatalf("expected signing unavailable, got %v", err)
	}
	if _, err := RequireTxSigner(credential); !errors.Is(err, shared.ErrSigningUnavailable) {
		t.Fatalf("expected signing unavailable for transactions, got %v", err)
	}
	if _, err := RequireSigner(nil); !errors.Is(err, shared.ErrSigningUnavailable) {
		t.Fatalf("expected signing unavailable for nil credential, got %v", err)
	}
}

func TestExpiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	expiration := big.NewInt(now.Unix())

	if Expired(expiration, now) {
		t.Fatalf("authorization is valid while now equals expiration")
	}
	if !Expired(expiration, now.Add(time.Second)) {
		t.Fatalf("authorization must expire after expiration")
	}
	if Expired(nil, now) {
		t.Fatalf("nil expiration never expires")
	}
	if ExpirationAfter(now, time.Minute).Int64() != now.Unix()+60 {
		t.Fatalf("unexpected ExpirationAfter result")
	}
}

func TestValidationErrors(t *testing.T) {
	if _, err := JumpDigest(nil, big.NewInt(1), big.NewInt(0)); err == nil {
		t.Fatalf("expected error for nil portal ID")
	}
	if _, err := JumpDigest(big.NewInt(1), big.NewInt(-1), big.NewInt(0)); err == nil {
		t.Fatalf("expected error for negative fee")
	}
	if _, err := TermsDigest(common.Address{}, RegistrationTerms{Fee: big.NewInt(1)}, big.NewInt(1)); err == nil {
		t.Fatalf("expected error for incomplete terms")
	}
	if _, err := TermsDigest(common.Address{}, testTerms(1), nil); err == nil {
		t.Fatalf("expected error for missing expiration")
	}
	vector := testVector()
	vector.X = " "
	if _, err := VectorDigest(vector, common.Address{}, big.NewInt(1)); err == nil {
		t.Fatalf("expected error for empty coordinate")
	}
	if _, err := RecoverSigner(common.Hash{}, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short signature")
	}
}

func TestKeySignerFromString(t *testing.T) {
	signer, err := KeySignerFromString("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	if err != nil {
		t.Fatalf("KeySignerFromString failed: %v", err)
	}
	if signer.Address() != common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23") {
		t.Fatalf("unexpected signer address: %s", signer.Address().Hex())
	}
	if _, err := KeySignerFromString(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestAuthorizationHex(t *testing.T) {
	signer := newTestSigner(t)
	authorization, err := SignJump(signer, big.NewInt(1), big.NewInt(2), big.NewInt(3))
	if err != nil {
		t.Fatalf("SignJump failed: %v", err)
	}
	if got := len(authorization.Hex()); got != 2+2*SignatureLength {
		t.Fatalf("unexpected hex length: %d", got)
	}
}
