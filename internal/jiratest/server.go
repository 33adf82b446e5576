// Package jiratest runs an in-process Jira lookalike for the package tests:
// captured JSON payloads behind the real REST routes, with the pagination
// mechanics (startAt/maxResults/total) of the live service.
package jiratest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server is one running fixture instance. Every handled request is recorded
// so tests can assert on request counts and pagination parameters.
type Server struct {
	URL string

	t  *testing.T
	sc Scenario
	hs *httptest.Server

	mu         sync.Mutex
	requests   []Request
	searchHits int
}

// Request is the recorded shape of one handled request.
type Request struct {
	Path  string
	Query url.Values
}

// Start serves the scenario until the test ends.
func Start(t *testing.T, sc Scenario) *Server {
	t.Helper()
	sc.applyDefaults(".")

	s := &Server{t: t, sc: sc}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/issue/", s.handleIssue)
	mux.HandleFunc("/rest/api/2/search", s.handleSearch)

	s.hs = httptest.NewServer(mux)
	s.URL = s.hs.URL
	t.Cleanup(s.hs.Close)
	return s
}

// Requests returns a snapshot of everything handled so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// SearchStarts returns the startAt value of every search request, in order.
func (s *Server) SearchStarts() []int {
	var starts []int
	for _, req := range s.Requests() {
		if !strings.HasSuffix(req.Path, "/search") {
			continue
		}
		n, _ := strconv.Atoi(req.Query.Get("startAt"))
		starts = append(starts, n)
	}
	return starts
}

// handleIssue serves /rest/api/2/issue/{key} from <KEY>.json under DataDir.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "You do not have permission to access this resource.")
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")
	raw, err := os.ReadFile(filepath.Join(s.sc.DataDir, key+".json"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Issue Does Not Exist")
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// handleSearch serves /rest/api/2/search: the scenario's result set sliced by
// startAt/maxResults with the counters injected, the way Jira pages.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	hit := s.record(r)
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "You do not have permission to access this resource.")
		return
	}
	for _, f := range s.sc.Failures {
		if f.Request == hit {
			writeError(w, f.Status, fmt.Sprintf("scenario failure on request %d", hit))
			return
		}
	}

	issues, err := s.resultSet()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	start, limit := s.paging(r)
	total := len(issues)

	// Clamp the window like the live service does.
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	if s.sc.Total != nil {
		total = *s.sc.Total
	}

	page := map[string]any{
		"startAt":    start,
		"maxResults": limit,
		"total":      total,
		"issues":     issues[start:end],
	}
	b, err := json.Marshal(page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// resultSet assembles the search results: listed captures first, then the
// generated series.
func (s *Server) resultSet() ([]json.RawMessage, error) {
	issues := make([]json.RawMessage, 0)
	for _, name := range s.sc.Search {
		raw, err := os.ReadFile(filepath.Join(s.sc.DataDir, name))
		if err != nil {
			return nil, err
		}
		issues = append(issues, raw)
	}

	if g := s.sc.Generate; g != nil {
		base, err := os.ReadFile(filepath.Join(s.sc.DataDir, g.From))
		if err != nil {
			return nil, err
		}
		for n := 1; n <= g.Count; n++ {
			var issue map[string]any
			if err := json.Unmarshal(base, &issue); err != nil {
				return nil, fmt.Errorf("generate base %s: %w", g.From, err)
			}
			issue["id"] = strconv.Itoa(4000000 + n)
			issue["key"] = fmt.Sprintf("GEN-%d", n)
			b, err := json.Marshal(issue)
			if err != nil {
				return nil, err
			}
			issues = append(issues, b)
		}
	}
	return issues, nil
}

// paging extracts startAt/maxResults from the query, with scenario defaults.
func (s *Server) paging(r *http.Request) (start, limit int) {
	limit = s.sc.DefaultLimit
	if v := r.URL.Query().Get("startAt"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			start = n
		}
	}
	if v := r.URL.Query().Get("maxResults"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return start, limit
}

// record logs and stores the request, returning its 1-based ordinal on that
// route.
func (s *Server) record(r *http.Request) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Path:  r.URL.Path,
		Query: r.URL.Query(),
	})
	auth := "<none>"
	if r.Header.Get("Authorization") != "" {
		auth = "<redacted>"
	}
	s.t.Logf("REQ %s %s?%s auth=%s", r.Method, r.URL.Path, r.URL.RawQuery, auth)

	if strings.HasSuffix(r.URL.Path, "/search") {
		s.searchHits++
		return s.searchHits
	}
	return 0
}

// authorized checks the Authorization header against the scenario credential.
func (s *Server) authorized(r *http.Request) bool {
	var want string
	switch {
	case s.sc.Bearer != "":
		want = "Bearer " + s.sc.Bearer
	case s.sc.BasicUser != "":
		creds := s.sc.BasicUser + ":" + s.sc.BasicPassword
		want = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	default:
		return true
	}
	return r.Header.Get("Authorization") == want
}

// writeError answers with Jira's error envelope.
func writeError(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	b, _ := json.Marshal(map[string]any{
		"errorMessages": messages,
		"errors":        map[string]string{},
	})
	writeJSON(w, status, b)
}

// writeJSON writes a JSON response with status and bytes.
func writeJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
