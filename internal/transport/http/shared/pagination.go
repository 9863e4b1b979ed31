package shared

import (
	"net/http"
	"strconv"
)

const TotalCountHeader = "X-Total-Count"

// Pagination is a limit/offset window. A 1-based page parameter takes precedence over offset.
type Pagination struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	p := Pagination{Limit: atLeast(q.Get("limit"), 1, defaultLimit)}
	if maxLimit > 0 {
		p.Limit = min(p.Limit, maxLimit)
	}
	if page := atLeast(q.Get("page"), 1, 0); page > 0 {
		p.Offset = (page - 1) * p.Limit
		return p
	}
	p.Offset = atLeast(q.Get("offset"), 0, 0)
	return p
}

// SetTotal reports the unpaginated row count next to a page of results.
func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
}

func atLeast(raw string, floor, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < floor {
		return fallback
	}
	return v
}
