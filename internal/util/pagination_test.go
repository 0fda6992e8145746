package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		page, perPage         int
		wantPage, wantPerPage int
	}{
		{0, 0, 1, 15},
		{-3, -1, 1, 15},
		{2, 1, 2, 1},
		{5, 100, 5, 100},
		{5, 101, 5, 100},
	}
	for _, tt := range tests {
		page, perPage := Normalize(tt.page, tt.perPage)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPerPage, perPage)
	}
}

func TestCalculate(t *testing.T) {
	from, limit := Calculate(3, 20)
	assert.Equal(t, 40, from)
	assert.Equal(t, 20, limit)
}

func TestMeta(t *testing.T) {
	m := Meta(1, 15, 0)
	assert.Equal(t, int64(0), m.TotalPages)
	assert.False(t, m.HasPrev)
	assert.False(t, m.HasNext)

	m = Meta(2, 10, 25)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = Meta(3, 10, 25)
	assert.False(t, m.HasNext)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault(" 7 ", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
}

func TestSortAndDirection(t *testing.T) {
	allowed := []string{"nome", "created_at"}
	assert.Equal(t, "created_at", SortColumn("CREATED_AT", allowed, "nome"))
	assert.Equal(t, "nome", SortColumn("password_hash", allowed, "nome"))
	assert.Equal(t, "nome", SortColumn("", allowed, "nome"))

	assert.True(t, Direction("DESC"))
	assert.False(t, Direction("asc"))
	assert.False(t, Direction("sideways"))
}
