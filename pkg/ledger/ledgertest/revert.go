package ledgertest

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}
	stringType, _ = abi.NewType("string", "", nil)
)

// RevertError mimics the JSON-RPC error a node returns for a reverted call:
// code 3 with the Error(string) payload as hex data.
type RevertError struct {
	Reason string
}

func Revert(reason string) error {
	return &RevertError{Reason: reason}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

func (e *RevertError) ErrorCode() int {
	return 3
}

func (e *RevertError) ErrorData() interface{} {
	encoded, err := abi.Arguments{{Type: stringType}}.Pack(e.Reason)
	if err != nil {
		return nil
	}
	return hexutil.Encode(append(append([]byte{}, errorSelector...), encoded...))
}
