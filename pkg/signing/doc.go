// Package signing builds and signs the off-chain authorizations consumed by
// the platform's contracts: registration terms, spatial (vector) claims and
// jump requests.
//
// Every payload is ABI tuple-encoded in a fixed field order, hashed with
// keccak256, prefixed as a personal message and signed. The resulting
// 65-byte [R || S || V] signature is only valid for recovery against that
// exact prefixed digest, so changing any field after signing makes the
// ledger recover a different address.
//
//	signer, err := signing.KeySignerFromString(os.Getenv("WORLD_PRIVATE_KEY"))
//	auth, err := signing.SignJump(signer, big.NewInt(7), big.NewInt(100), nonce)
//	fmt.Println(auth.Hex())
//
// A read-only credential (signing.ReadOnly) fails every signing call with
// shared.ErrSigningUnavailable.
package signing
