// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/metrics"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Services *service.Services
	Metrics  *metrics.Collector
	Logger   *slog.Logger

	// UserID is the Evergreen user whose patches are listed.
	UserID string
	// ProjectHint is the project detected from the workspace or configuration.
	ProjectHint string
}
