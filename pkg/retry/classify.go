package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

// Classifier maps a failure to an error code. An empty code or a code that is
// not Retryable means the failure is fatal.
type Classifier func(err error) shared.ErrorCode

var (
	nonceConflictMarkers = []string{
		"nonce too low",
		"nonce already used",
		"nonce has already been used",
		"replacement transaction underpriced",
	}
	duplicateMarkers = []string{
		"already known",
		"known transaction",
	}
	transientMarkers = []string{
		"connection refused",
		"connection reset",
		"econnreset",
		"econnrefused",
		"socket hang up",
		"network error",
		"timeout",
		"timed out",
		"temporarily unavailable",
		"broken pipe",
		"too many requests",
	}
)

// Classify inspects structured error information first and falls back to
// message substrings only when the transport provides nothing typed.
func Classify(err error) shared.ErrorCode {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ""
	}

	if code := shared.CodeOf(err); code != "" {
		return code
	}
	if code := classifyTyped(err); code != "" {
		return code
	}
	return classifyMessage(err.Error())
}

func classifyTyped(err error) shared.ErrorCode {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError {
			return shared.ErrorCodeTransientRPC
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return shared.ErrorCodeTransientRPC
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return shared.ErrorCodeTransientRPC
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return shared.ErrorCodeTransientRPC
	}

	return ""
}

func classifyMessage(message string) shared.ErrorCode {
	lower := strings.ToLower(message)
	if lower == "" {
		return ""
	}
	// Revert text can mention anything, including "timeout"; never retry it.
	if strings.Contains(lower, "execution reverted") || strings.Contains(lower, "revert") {
		return ""
	}

	for _, marker := range nonceConflictMarkers {
		if strings.Contains(lower, marker) {
			return shared.ErrorCodeNonceConflict
		}
	}
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return shared.ErrorCodeDuplicateSubmission
		}
	}
	// A dropped connection often reaches us only as flattened text.
	if lower == "eof" || strings.HasSuffix(lower, ": eof") {
		return shared.ErrorCodeTransientRPC
	}
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return shared.ErrorCodeTransientRPC
		}
	}
	return ""
}

// IsRetryable reports whether err is a transient, non-semantic failure.
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}
