// Package jiraquery reads issues from a Jira instance over its REST API
// (API version 2).
//
// An Instance is configured through chained calls and then queried:
//
//	jira, err := jiraquery.At("https://issues.example.com")
//	if err != nil {
//		return err
//	}
//	issues, err := jira.
//		Authenticate(jiraquery.APIKey(token)).
//		Paginate(jiraquery.ChunkSize(50)).
//		Search(ctx, `project = CS AND status = "In Progress"`)
//
// Each configuration call returns an updated copy, so a configured Instance
// never changes and can be shared freely across goroutines.
//
// The client only reads: issue lookup by key and JQL search. Anything that
// writes to Jira is out of scope, as are caching and automatic retries; wrap
// the HTTP client handed to WithClient if you need either.
package jiraquery
