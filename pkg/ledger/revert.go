package ledger

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

const revertPrefix = "execution reverted"

var authorizationMarkers = []string{"signature", "signer", "authoriz"}

// RevertReason extracts the ledger-supplied revert reason from err. The
// JSON-RPC error data is preferred; the message text is the fallback.
func RevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := decodeRevertData(dataErr.ErrorData()); ok {
			return reason, true
		}
	}

	message := err.Error()
	index := strings.Index(strings.ToLower(message), revertPrefix)
	if index < 0 {
		return "", false
	}
	reason := strings.TrimSpace(message[index+len(revertPrefix):])
	reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
	return reason, true
}

func decodeRevertData(data any) (string, bool) {
	var raw []byte
	switch value := data.(type) {
	case string:
		decoded, err := hexutil.Decode(value)
		if err != nil {
			return "", false
		}
		raw = decoded
	case []byte:
		raw = value
	default:
		return "", false
	}
	if len(raw) == 0 {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}

// classifyFailure converts revert errors into coded SDK errors and returns
// anything else unchanged.
func classifyFailure(err error) error {
	if err == nil || shared.CodeOf(err) != "" {
		return err
	}
	reason, ok := RevertReason(err)
	if !ok {
		return err
	}
	return revertError(reason, err)
}

func revertError(reason string, cause error) *shared.Error {
	code := shared.ErrorCodeTransactionReverted
	lower := strings.ToLower(reason)
	for _, marker := range authorizationMarkers {
		if strings.Contains(lower, marker) {
			code = shared.ErrorCodeAuthorizationMismatch
			break
		}
	}
	return &shared.Error{
		Code:    code,
		Message: revertPrefix,
		Reason:  reason,
		Cause:   cause,
	}
}
