// Package deployment loads per-network deployment snapshots: the well-known
// contract addresses and kinds used to seed the event registry, and the
// administrative signers used as defaults for terms and vector claims.
//
// Snapshots are YAML or JSON, optionally brotli-compressed with a trailing
// .br extension (for example deployment.yaml.br).
package deployment
