// Package service implements the Evergreen diagnosis operations on top of
// the GraphQL client: patch listing, failure correlation, test results,
// log classification, artifact listing and waterfall scans.
package service

import (
	"errors"
	"log/slog"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
)

// ErrInvalidArgument is returned when a caller-supplied argument is out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultConcurrency bounds in-flight enrichment and waterfall queries.
const DefaultConcurrency = 8

// Options configures the services.
type Options struct {
	// Concurrency caps parallel sub-queries. Values below 1 use DefaultConcurrency.
	Concurrency int
	Logger      *slog.Logger
}

// Services bundles every operation over a single querier.
type Services struct {
	Patches   *PatchLister
	Failures  *FailureCorrelator
	Tests     *TestResultFetcher
	Logs      *LogFetcher
	Waterfall *WaterfallScanner
	Projects  *ProjectLister
	Artifacts *ArtifactLister
}

// New creates all services sharing q.
func New(q client.Querier, opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	return &Services{
		Patches:   NewPatchLister(q, logger),
		Failures:  NewFailureCorrelator(q, logger, concurrency),
		Tests:     NewTestResultFetcher(q, logger),
		Logs:      NewLogFetcher(q, logger),
		Waterfall: NewWaterfallScanner(q, logger, concurrency),
		Projects:  NewProjectLister(q, logger),
		Artifacts: NewArtifactLister(q, logger),
	}
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}
