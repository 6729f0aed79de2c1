// Package contracts holds the interface descriptors of the platform's
// registry and entity contracts.
//
// Descriptors are composed rather than inherited: each concrete kind (World,
// Company, Experience, Avatar, assets, registries) is its own fragment plus
// the capability fragments it carries (signable, removable, vectored,
// upgradeable).
//
//	worldABI, err := contracts.ABI(contracts.KindWorld)
package contracts
