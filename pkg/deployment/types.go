package deployment

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
)

// Config holds per-network deployment snapshots keyed by network name.
type Config struct {
	Networks map[string]Network `yaml:"networks" json:"networks"`
}

type Network struct {
	Name      string                 `yaml:"-" json:"-"`
	ChainID   uint64                 `yaml:"chainId" json:"chainId"`
	RPCURL    string                 `yaml:"rpcUrl,omitempty" json:"rpcUrl,omitempty"`
	Contracts map[string]ContractRef `yaml:"contracts" json:"contracts"`
	Signers   Signers                `yaml:"signers" json:"signers"`
}

type ContractRef struct {
	Address string         `yaml:"address" json:"address"`
	Kind    contracts.Kind `yaml:"kind" json:"kind"`
}

// Signers are the administrative signer assignments of a network.
type Signers struct {
	TermsSigner     string   `yaml:"termsSigner,omitempty" json:"termsSigner,omitempty"`
	VectorAuthority string   `yaml:"vectorAuthority,omitempty" json:"vectorAuthority,omitempty"`
	Admins          []string `yaml:"admins,omitempty" json:"admins,omitempty"`
}

func (r ContractRef) HexAddress() common.Address {
	return common.HexToAddress(r.Address)
}
