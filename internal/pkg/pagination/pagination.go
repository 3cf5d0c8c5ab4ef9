package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// maxRows bounds page*limit so offsets stay positive.
const maxRows = math.MaxInt32

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads page and limit from the query string. Missing or invalid
// values fall back to page 1 and defaultLimit; limit is capped at maxLimit
// and page so that the offset fits in an int32.
func FromRequest(r *http.Request, defaultLimit, maxLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit > 0 && p.Page > maxRows/p.Limit {
		p.Page = maxRows / p.Limit
	}
	return p
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}
