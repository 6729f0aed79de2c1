package ledgertest

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Method handles one decoded method call and returns its outputs in
// declaration order.
type Method func(call *Call, args []any) ([]any, error)

// Dispatch routes calls to methods by selector and packs their outputs.
func Dispatch(descriptor abi.ABI, methods map[string]Method) Handler {
	return func(call *Call) ([]byte, error) {
		if len(call.Data) < 4 {
			return nil, Revert("missing selector")
		}
		method, err := descriptor.MethodById(call.Data[:4])
		if err != nil {
			return nil, Revert("unknown selector")
		}
		handle, ok := methods[method.Name]
		if !ok {
			return nil, Revert(fmt.Sprintf("%s not implemented", method.Name))
		}
		if !method.IsPayable() && call.Value.Sign() > 0 {
			return nil, Revert("non-payable method")
		}
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, Revert(fmt.Sprintf("decode %s arguments", method.Name))
		}
		outputs, err := handle(call, args)
		if err != nil {
			return nil, err
		}
		if len(method.Outputs) == 0 {
			return nil, nil
		}
		return method.Outputs.Pack(outputs...)
	}
}

// Selector returns the 4-byte selector of name in descriptor.
func Selector(descriptor abi.ABI, name string) []byte {
	method, ok := descriptor.Methods[name]
	if !ok {
		return nil
	}
	return bytes.Clone(method.ID)
}
