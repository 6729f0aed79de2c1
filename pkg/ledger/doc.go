// Package ledger binds interface descriptors to contract addresses and
// submits calls through a JSON-RPC backend.
//
// A write is packed, priced, estimated, signed and sent as one unit under a
// retry.Executor, so a nonce conflict re-reads the pending nonce on the next
// attempt. The receipt is then polled separately. Reverts are converted into
// coded errors carrying the ledger's reason; reasons that concern signatures
// or authorization are reported as authorization_mismatch.
package ledger
