package platform

import (
	"context"
	"errors"
	"net/http"
)

func classifyStatus(code int) FailureKind {
	if code >= 500 || code == http.StatusTooManyRequests {
		return FailureTransient
	}
	return FailureRejected
}

// statusMessage keeps revoked-token responses recognizable so the credential
// refresh job can be pointed at them.
func statusMessage(platform string, code int) string {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return platform + " rejected the access token (refresh required)"
	}
	return platform + " returned unexpected status"
}

func classifyErr(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTransient
	}
	// Transport-level failures are retryable in principle.
	return FailureTransient
}
