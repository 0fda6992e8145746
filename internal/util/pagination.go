package util

import (
	"strconv"
	"strings"

	"github.com/Skotchmaster/library/internal/transport"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Normalize clamps page to at least 1 and perPage to 1..MaxPerPage, with a
// non-positive perPage falling back to DefaultPerPage.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return page, perPage
}

func Calculate(page, size int) (from, limit int) {
	page, size = Normalize(page, size)
	from = (page - 1) * size
	return from, size
}

func Meta(page, perPage int, total int64) transport.PageMeta {
	totalPages := (total + int64(perPage) - 1) / int64(perPage)
	return transport.PageMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    int64(page) < totalPages,
	}
}

func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// Direction reports whether dir asks for descending order; anything but
// "desc" sorts ascending.
func Direction(dir string) (desc bool) {
	return strings.EqualFold(strings.TrimSpace(dir), "desc")
}

// SortColumn returns sort when it is one of allowed, def otherwise.
func SortColumn(sort string, allowed []string, def string) string {
	sort = strings.ToLower(strings.TrimSpace(sort))
	for _, a := range allowed {
		if a == sort {
			return sort
		}
	}
	return def
}
