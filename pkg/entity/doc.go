// Package entity exposes typed wrappers over the platform's contracts.
//
// Each wrapper composes the capabilities its contract implements (Signable,
// Removable, Vectored, Upgradeable) over one shared call core instead of a
// wrapper hierarchy. Writes return an Outcome holding the receipt and its
// decoded events; writes that create entities also report the new address,
// which is registered for decoding before the call returns.
package entity
