// Package jump moves avatars between experiences through portals.
//
// Two authorization paths exist. In a direct jump the destination company
// signs (portalId, agreedFee, nonce) with the nonce the avatar keeps for that
// company, and the avatar submits and pays. In a delegated jump the avatar's
// owner signs the same tuple with the avatar-wide nonce, and the company
// submits and pays from its own balance. Nonces are always read from the
// avatar contract before signing.
//
// The ledger recovers the signer from the submitted tuple, so changing any
// field after signing is rejected as authorization_mismatch, and a consumed
// nonce makes a replayed request fail the same way. Fee settlement and the
// location change happen in the same transaction.
package jump
