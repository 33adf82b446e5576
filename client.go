package jiraquery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// userAgent identifies this client to the instance.
const userAgent = "jiraquery/1.0"

// Instance is a handle on one Jira deployment. The zero value is not usable;
// construct with At. Configuration methods return updated copies, so a fully
// configured Instance never changes and can be shared across goroutines.
type Instance struct {
	base       *url.URL
	auth       Auth
	pagination Pagination
	client     *http.Client
	logger     *slog.Logger
}

// At returns an Instance rooted at base, which must be an absolute http or
// https URL. A missing trailing slash is added so that deployments under a
// context path (https://example.com/jira/) resolve correctly. No network
// traffic happens here.
func At(base string) (Instance, error) {
	u, err := url.Parse(base)
	if err != nil {
		return Instance{}, fmt.Errorf("%w: %q: %v", ErrInvalidURL, base, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Instance{}, fmt.Errorf("%w: %q: not an absolute http(s) URL", ErrInvalidURL, base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return Instance{
		base:   u,
		client: defaultClient(),
	}, nil
}

// Authenticate returns a copy of the instance that presents the given
// credential on every request.
func (i Instance) Authenticate(auth Auth) Instance {
	i.auth = auth
	return i
}

// Paginate returns a copy of the instance using the given pagination policy
// for searches. Single-issue fetches never paginate.
func (i Instance) Paginate(p Pagination) Instance {
	i.pagination = p
	return i
}

// WithClient returns a copy of the instance that issues requests through c.
// Bring your own client to control timeouts, proxies or TLS; nil restores
// the default.
func (i Instance) WithClient(c *http.Client) Instance {
	if c == nil {
		c = defaultClient()
	}
	i.client = c
	return i
}

// WithLogger returns a copy of the instance that emits debug records to l.
func (i Instance) WithLogger(l *slog.Logger) Instance {
	i.logger = l
	return i
}

// BaseURL returns the normalized root URL of the instance.
func (i Instance) BaseURL() string { return i.base.String() }

// log returns the configured logger, falling back to the process default.
func (i Instance) log() *slog.Logger {
	if i.logger != nil {
		return i.logger
	}
	return slog.Default()
}

// Issue fetches a single issue by key, such as "PROJ-123".
func (i Instance) Issue(ctx context.Context, key string) (Issue, error) {
	u, err := i.endpoint("issue/" + url.PathEscape(key))
	if err != nil {
		return Issue{}, err
	}
	var issue Issue
	if err := i.getJSON(ctx, u, &issue); err != nil {
		return Issue{}, err
	}
	i.log().Debug("fetched issue", "key", issue.Key, "status", issue.Fields.Status.Name)
	return issue, nil
}

// Issues fetches several issues at once by key, via a single JQL id query.
// An empty key list returns no issues without touching the network. A
// non-empty key list that matches nothing reports ErrNoIssues.
func (i Instance) Issues(ctx context.Context, keys []string) ([]Issue, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	issues, err := i.Search(ctx, "id in ("+strings.Join(keys, ",")+")")
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, fmt.Errorf("%w for keys %s", ErrNoIssues, strings.Join(keys, ", "))
	}
	return issues, nil
}

// Search runs a JQL query and returns the matching issues in the instance's
// ranking order. The query travels to the instance verbatim; how many
// requests the call fans out into is decided by the pagination policy, see
// Paginate. A failure on any page fails the whole call: no partial results.
func (i Instance) Search(ctx context.Context, jql string) ([]Issue, error) {
	chunk, paged := i.pagination.chunk()
	if !paged {
		page, err := i.searchPage(ctx, jql, 0, i.pagination.limit())
		if err != nil {
			return nil, err
		}
		return page.Issues, nil
	}

	var all []Issue
	startAt := 0
	for {
		page, err := i.searchPage(ctx, jql, startAt, chunk)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Issues...)
		// The reported total is advisory: a page shorter than requested
		// also ends the walk, so an instance that misreports total cannot
		// loop us forever.
		if len(all) >= page.Total || len(page.Issues) < chunk {
			break
		}
		startAt += len(page.Issues)
	}
	return all, nil
}

// searchPage fetches one page of search results.
func (i Instance) searchPage(ctx context.Context, jql string, startAt, maxResults int) (searchResult, error) {
	fragment, err := searchFragment(jql, startAt, maxResults)
	if err != nil {
		return searchResult{}, err
	}
	u, err := i.endpoint(fragment)
	if err != nil {
		return searchResult{}, err
	}
	var page searchResult
	if err := i.getJSON(ctx, u, &page); err != nil {
		return searchResult{}, err
	}
	i.log().Debug("search page",
		"startAt", startAt,
		"returned", len(page.Issues),
		"total", page.Total,
	)
	return page, nil
}
