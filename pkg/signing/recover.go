package signing

import (
	"fmt"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverSigner returns the address that produced signature over the
// personal-message form of digest. Submissions never call this; the ledger
// performs its own recovery.
func RecoverSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(signature))
	}

	recoveryID := signature[64]
	if recoveryID >= 27 {
		recoveryID -= 27
	}
	if recoveryID > 1 {
		return common.Address{}, fmt.Errorf("invalid signature recovery id %d", signature[64])
	}

	compact := make([]byte, SignatureLength)
	compact[0] = 27 + recoveryID
	copy(compact[1:], signature[:64])

	publicKey, _, err := btcecdsa.RecoverCompact(compact, PersonalDigest(digest).Bytes())
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}

	uncompressed := publicKey.SerializeUncompressed()
	return common.BytesToAddress(crypto.Keccak256(uncompressed[1:])[12:]), nil
}

// Verify reports whether signature over digest recovers to expected.
func Verify(expected common.Address, digest common.Hash, signature []byte) bool {
	recovered, err := RecoverSigner(digest, signature)
	if err != nil {
		return false
	}
	return recovered == expected
}
