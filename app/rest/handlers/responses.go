package handlers

// ErrorResponse is the JSON error envelope every failure renders to.
// Code is one of the closed set of machine-readable error codes.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details string                 `json:"details,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// SuccessResponse is a generic success message envelope
type SuccessResponse struct {
	Message string `json:"message"`
}
