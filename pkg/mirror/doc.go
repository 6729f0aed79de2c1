// Package mirror reads already-mined contract results from a mirror node's
// REST API and converts them into ledger receipts and logs, so historic
// transactions can be correlated without an archive JSON-RPC node.
//
// Server errors and rate limiting surface as transient_rpc errors, which the
// retry executor treats as retryable.
package mirror
