package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationHelper(t *testing.T) {
	p := NewPaginationHelper(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset)

	p = NewPaginationHelper(3, 50)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 100, p.Offset)

	// disallowed sizes snap to the nearest smaller allowed size
	p = NewPaginationHelper(1, 30)
	assert.Equal(t, 20, p.PageSize)

	p = NewPaginationHelper(1, 5)
	assert.Equal(t, 10, p.PageSize)

	p = NewPaginationHelper(1, 500)
	assert.Equal(t, 100, p.PageSize)
}

func TestBuildResponse(t *testing.T) {
	p := NewPaginationHelper(2, 10)
	resp := p.BuildResponse([]string{"a"}, 25)

	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.PageSize)
	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}
