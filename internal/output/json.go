// Package output provides the standardized JSON envelope written by the
// HTTP endpoints and used to serialize tool results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Version is the pkgsmith version, stamped at build time.
var Version = "dev"

// Response is a standardized JSON wrapper for endpoint outputs.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SuccessResponse creates a successful response with data.
func SuccessResponse(data any) Response {
	return Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	}
}

// ErrorResponse creates an error response.
func ErrorResponse(err error) Response {
	return Response{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	}
}

// WriteJSON writes a Response as indented JSON to the given writer.
func WriteJSON(w io.Writer, response Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteJSONData wraps data in a success envelope and writes it.
func WriteJSONData(w io.Writer, data any) error {
	return WriteJSON(w, SuccessResponse(data))
}

// WriteJSONError wraps an error in an envelope and writes it.
func WriteJSONError(w io.Writer, err error) error {
	return WriteJSON(w, ErrorResponse(err))
}

// Marshal renders data as compact JSON text, used for MCP tool results.
func Marshal(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(raw), nil
}
