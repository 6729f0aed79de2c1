// Package shared provides common utilities used across the World SDK for Go.
// It includes network normalization, operator configuration loading from
// environment variables and .env files, private key parsing, ledger RPC
// dialing, and the error taxonomy shared by every other package.
//
// # Environment Variables
//
// OperatorConfigFromEnv reads WORLD_NETWORK, WORLD_RPC_URL,
// WORLD_PRIVATE_KEY, WORLD_CHAIN_ID and WORLD_DEPLOYMENT. Each of them may be
// scoped to a network by prefixing MAINNET_, TESTNET_ or LOCAL_; a scoped
// value wins over the unscoped one for the selected network.
//
// # Errors
//
// Failures that callers branch on carry an ErrorCode. Use errors.Is with the
// exported sentinels:
//
//	if errors.Is(err, shared.ErrAuthorizationMismatch) {
//		// the ledger recovered an unexpected signer
//	}
package shared
