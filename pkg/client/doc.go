// Package client is the entry point of the SDK. It loads a deployment
// snapshot, connects to the ledger, seeds the event registry with the
// deployment's contracts, and hands out entity wrappers and the jump
// coordinator built on shared infrastructure.
package client
