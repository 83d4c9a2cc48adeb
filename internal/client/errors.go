package client

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel failure kinds. Use errors.Is() to check for these in calling code.
var (
	// ErrNotFound indicates the identifier does not resolve (patch, task, version).
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates the credential was rejected or has expired.
	// Retrying only makes sense after the credential is refreshed.
	ErrAuth = errors.New("authentication failed")

	// ErrTransport covers network failures, timeouts and malformed responses.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidParams indicates the parameters do not match the named query.
	// This is a programming error and is never retryable.
	ErrInvalidParams = errors.New("invalid query parameters")
)

// QueryError is returned by Execute for every failed query.
// It identifies the query and, when known, the identifier that was looked up.
type QueryError struct {
	Kind       error
	Query      string
	Identifier string
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString(e.Query)
	if e.Identifier != "" {
		fmt.Fprintf(&b, " %q", e.Identifier)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is lets errors.Is(err, ErrNotFound) and friends match the failure kind.
func (e *QueryError) Is(target error) bool {
	return e.Kind == target
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NotFound builds a not-found error for a query whose root object came back null.
func NotFound(query, identifier string) error {
	return &QueryError{Kind: ErrNotFound, Query: query, Identifier: identifier}
}

// KindName returns a short label for the failure kind of err,
// suitable for logs and degrade warnings.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

// classifyGraphQLErrors maps GraphQL error entries onto a failure kind.
func classifyGraphQLErrors(errs []graphQLError) error {
	for _, e := range errs {
		code := strings.ToUpper(e.code())
		msg := strings.ToLower(e.Message)
		switch {
		case code == "UNAUTHENTICATED" || code == "FORBIDDEN" ||
			strings.Contains(msg, "unauthorized") || strings.Contains(msg, "unauthenticated"):
			return ErrAuth
		case code == "RESOURCE_NOT_FOUND" || code == "NOT_FOUND" ||
			strings.Contains(msg, "not found") || strings.Contains(msg, "cannot find"):
			return ErrNotFound
		}
	}
	return ErrTransport
}

// identifierFrom picks the most descriptive lookup key out of the variables.
func identifierFrom(vars map[string]any) string {
	for _, key := range []string{"patchId", "taskId", "versionId", "userId", "projectId"} {
		if v, ok := vars[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
