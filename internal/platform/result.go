package platform

// FailureKind categorizes why a single platform delivery did not happen.
type FailureKind string

const (
	// FailureNotConfigured: the brand has no active, posting-enabled
	// credential for the platform. Expected, not a system fault.
	FailureNotConfigured FailureKind = "not_configured"
	// FailureNotAutomatable: the platform capability is manual or
	// organize-only; rejected before any network call.
	FailureNotAutomatable FailureKind = "not_automatable"
	// FailureTransient: timeout, network error or 5xx from the platform.
	// Retryable in principle, but retries are a manual reschedule decision.
	FailureTransient FailureKind = "transient"
	// FailureRejected: definitive rejection (invalid content, revoked token).
	FailureRejected FailureKind = "rejected"
)

// PublishResult is the normalized outcome of one publish attempt on one
// platform. Failures are values, never errors escaping the dispatcher.
type PublishResult struct {
	Platform       Platform
	Success        bool
	PlatformPostID string
	FailureKind    FailureKind
	Message        string
}

func Succeeded(p Platform, postID string) PublishResult {
	return PublishResult{Platform: p, Success: true, PlatformPostID: postID}
}

func Failed(p Platform, kind FailureKind, msg string) PublishResult {
	return PublishResult{Platform: p, Success: false, FailureKind: kind, Message: msg}
}
