package jiraquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"
)

// restPrefix is the API version this client speaks; every endpoint path is
// resolved below {base}rest/api/2/.
const restPrefix = "rest/api/2/"

// searchQuery is the query-string shape of the search endpoint. startAt is
// always sent; maxResults only when the policy constrains the page size.
type searchQuery struct {
	JQL        string `url:"jql"`
	StartAt    int    `url:"startAt"`
	MaxResults int    `url:"maxResults,omitempty"`
}

// searchFragment renders the search path with its encoded parameters.
func searchFragment(jql string, startAt, maxResults int) (string, error) {
	vals, err := query.Values(searchQuery{JQL: jql, StartAt: startAt, MaxResults: maxResults})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	return "search?" + vals.Encode(), nil
}

// endpoint resolves a path-and-query fragment below rest/api/2 against the
// instance root.
func (i Instance) endpoint(fragment string) (*url.URL, error) {
	rel, err := url.Parse(restPrefix + fragment)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	return i.base.ResolveReference(rel), nil
}

// getJSON performs one authenticated GET and decodes a 2xx body into out.
func (i Instance) getJSON(ctx context.Context, u *url.URL, out any) error {
	body, err := i.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// get performs one authenticated GET and returns the body of a 2xx answer.
// Connection-level failures map to ErrTransport, non-2xx answers to *APIError.
func (i Instance) get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	i.auth.apply(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	i.log().Debug("jira request", "url", u.Redacted(), "auth", i.auth.String())

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}
