// The World SDK for Go is a client library for the world platform contracts:
// a registry of worlds, companies and experiences addressed by spatial
// vectors, and avatars that move between experiences by jumping through
// portals under off-chain signed authorizations.
//
// # Packages
//
//   - pkg/signing: canonical payload digests, signing and recovery
//   - pkg/events: contract registry and receipt event correlation
//   - pkg/ledger: contract calls and transaction submission
//   - pkg/retry: bounded retry of transient submission failures
//   - pkg/entity: typed wrappers for every contract kind
//   - pkg/jump: the direct and delegated jump protocol
//   - pkg/deployment: per-network deployment snapshots
//   - pkg/mirror: historic receipts from a mirror node
//   - pkg/client: the facade that wires everything together
//
// # Installation
//
//	go get github.com/vworld-labs/world-sdk-go@latest
package world_sdk_go
