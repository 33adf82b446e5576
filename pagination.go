package jiraquery

// paginationKind discriminates the pagination policies.
type paginationKind uint8

const (
	paginateDefault paginationKind = iota
	paginateMaxResults
	paginateChunked
)

// Pagination decides how Search fans a query out into requests. The zero
// value is Unpaginated. Values come from the three constructors; there is no
// other way to build one.
type Pagination struct {
	kind paginationKind
	size int
}

// Unpaginated issues a single search request and lets the instance pick the
// page size. Result sets larger than that page are cut off; use ChunkSize
// when you need everything.
func Unpaginated() Pagination { return Pagination{} }

// MaxResults issues a single search request asking for up to n issues. The
// instance may cap n at its own configured maximum. Values below 1 fall back
// to Unpaginated.
func MaxResults(n int) Pagination {
	if n < 1 {
		return Pagination{}
	}
	return Pagination{kind: paginateMaxResults, size: n}
}

// ChunkSize walks the entire result set n issues per request. Values below 1
// fall back to Unpaginated.
func ChunkSize(n int) Pagination {
	if n < 1 {
		return Pagination{}
	}
	return Pagination{kind: paginateChunked, size: n}
}

// chunk returns the page size and whether the policy pages through results.
func (p Pagination) chunk() (int, bool) {
	if p.kind == paginateChunked {
		return p.size, true
	}
	return 0, false
}

// limit returns the maxResults value for the single-request policies,
// 0 meaning "let the instance decide".
func (p Pagination) limit() int {
	if p.kind == paginateMaxResults {
		return p.size
	}
	return 0
}
