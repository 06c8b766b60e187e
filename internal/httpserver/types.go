package httpserver

import "encoding/json"

// ToolInfo describes a registered tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolResponse represents a tool call response
type ToolResponse struct {
	Success bool            `json:"success"`
	Tool    string          `json:"tool,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}
