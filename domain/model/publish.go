package model

// OrchestrationPlatform is the pseudo platform id used to report failures
// that happen before any per-platform attempt is dispatched, for example the
// content record not being found.
const OrchestrationPlatform = "orchestration"

// PublishAttemptResult is the outcome of one publish attempt on one
// platform. Transient: aggregated into the response and folded into the
// content item's per-platform status, never persisted directly.
type PublishAttemptResult struct {
	Platform       string `json:"platform"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	ExternalPostID string `json:"external_post_id,omitempty"`
}

// AllSucceeded reports whether every attempt in the batch succeeded.
func AllSucceeded(results []PublishAttemptResult) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}
