package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so LLM can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// JSONResult renders v as indented JSON text content.
func JSONResult(v any) *mcp.CallToolResult {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("Failed to encode result", err.Error())
	}
	return TextResult(string(jsonBytes))
}

// FailureResult turns a service error into a tool error with a hint matching its kind.
func FailureResult(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s failed: %v", action, err)
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return ErrorResult(msg, "Check the tool arguments")
	case errors.Is(err, client.ErrNotFound):
		return ErrorResult(msg, "Verify the id, list_user_recent_patches_evergreen shows valid patch ids")
	case errors.Is(err, client.ErrAuth):
		return ErrorResult(msg, "Check EVERGREEN_USER and EVERGREEN_API_KEY or refresh EVERGREEN_TOKEN")
	case errors.Is(err, client.ErrInvalidParams):
		return ErrorResult(msg, "The server sent a malformed query, please report this")
	default:
		return ErrorResult(msg, "Evergreen may be unavailable, retry later")
	}
}
