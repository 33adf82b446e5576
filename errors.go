package jiraquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for the failure classes callers branch on with errors.Is.
// The concrete cause always stays on the chain.
var (
	// ErrInvalidURL reports a base URL that is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid instance URL")

	// ErrTransport reports a connection-level failure: DNS, TLS, timeout, reset.
	ErrTransport = errors.New("transport failure")

	// ErrAuthenticationFailed reports a request the instance answered with 401 or 403.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotFound reports a request the instance answered with 404.
	ErrNotFound = errors.New("not found")

	// ErrMalformedResponse reports a response body that does not decode into
	// the expected schema, usually a sign of schema drift on the instance.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoIssues reports a key lookup that matched no issues at all.
	ErrNoIssues = errors.New("no issues returned")
)

// maxErrorBody caps how much of an unrecognized error body ends up in messages.
const maxErrorBody = 512

// APIError is a non-2xx answer from the instance, carrying whatever Jira put
// into its error envelope ("errorMessages" and per-field "errors" keys).
type APIError struct {
	StatusCode    int
	ErrorMessages []string
	Errors        map[string]string
	Body          string // raw body excerpt when the envelope is absent
}

// Error renders the status code and every message Jira sent.
func (e *APIError) Error() string {
	parts := make([]string, 0, len(e.ErrorMessages)+len(e.Errors))
	parts = append(parts, e.ErrorMessages...)

	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+e.Errors[k])
	}

	if len(parts) == 0 && e.Body != "" {
		parts = append(parts, e.Body)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("jira: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("jira: HTTP %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// Is maps status codes onto the package sentinels, so errors.Is works without
// digging out the APIError first.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthenticationFailed:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// newAPIError decodes Jira's error envelope out of body. Bodies that are not
// the envelope (HTML proxy pages, truncated junk) are kept as an excerpt.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.ErrorMessages = envelope.ErrorMessages
		apiErr.Errors = envelope.Errors
	}
	if len(apiErr.ErrorMessages) == 0 && len(apiErr.Errors) == 0 {
		apiErr.Body = trim(strings.TrimSpace(string(body)), maxErrorBody)
	}
	return apiErr
}

// trim shortens s to at most max bytes, marking the cut.
func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…(truncated)"
}
