package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      PaginationParams
		page    int
		perPage int
	}{
		{"zero values", PaginationParams{}, 1, 15},
		{"negative page", PaginationParams{Page: -3, PerPage: 10}, 1, 10},
		{"too large", PaginationParams{Page: 2, PerPage: 500}, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	p := PaginationParams{Page: 3, PerPage: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestNewPaginatedResult_NilItems(t *testing.T) {
	res := NewPaginatedResult[string](nil, NewPagination(1, 15, 0))
	assert.NotNil(t, res.Items)
	assert.Len(t, res.Items, 0)
}
