package dto

// APIResponse is the envelope every endpoint answers with: exactly one of
// Error or Response is set, Data carries optional extras (counts, paging).
type APIResponse struct {
	Error    *APIError `json:"error,omitempty"`
	Response any       `json:"response,omitempty"`
	Data     any       `json:"data,omitempty"`
}

type APIError struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}
