package handlers

import "github.com/vzahanych/weather-tools-service/internal/tools"

const (
	CodeInvalidParams = "INVALID_PARAMS"
	CodeToolNotFound  = "TOOL_NOT_FOUND"
	CodeHandlerFault  = "HANDLER_FAULT"
	CodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx tool response. Successful tool
// calls return the tool payload itself, so callers branch on status code.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Code    string             `json:"code"`
	Details string             `json:"details,omitempty"`
	Fields  []tools.FieldError `json:"fields,omitempty"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
}
