package tools

import (
	"github.com/goccy/go-json"
)

// Response is a standard response format for MCP tools
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// successResponse always carries data, so an empty list stays [] on the wire
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// SuccessResponse creates a success response
func SuccessResponse(data any) string {
	resp := successResponse{Success: true, Data: data}
	b, _ := json.Marshal(resp)
	return string(b)
}

// ErrorResponse creates an error response
func ErrorResponse(err error) string {
	resp := Response{Success: false, Error: err.Error()}
	b, _ := json.Marshal(resp)
	return string(b)
}
