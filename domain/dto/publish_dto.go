package dto

import "social-hub/domain/model"

// PublishRequest is the JSON body of POST /api/publish/:contentId.
type PublishRequest struct {
	Platforms []string `json:"platforms"`
}

// PublishResponse always carries every attempt's outcome, even when some or
// all platforms failed; there is no single pass/fail flag for the batch.
type PublishResponse struct {
	Message string                       `json:"message"`
	Results []model.PublishAttemptResult `json:"results"`
}

// ConnectionStatus describes one platform's connection state for the
// settings UI.
type ConnectionStatus struct {
	Platform    string `json:"platform"`
	DisplayName string `json:"display_name"`
	Connected   bool   `json:"connected"`
	Username    string `json:"username,omitempty"`
}
