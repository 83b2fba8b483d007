package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	p := Paginate(87, 2, 20)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 87, p.Total)
	assert.Equal(t, 5, p.TotalPages)

	assert.Equal(t, 0, Paginate(0, 1, 20).TotalPages)
	assert.Equal(t, 1, Paginate(20, 1, 20).TotalPages)
	assert.Equal(t, 2, Paginate(21, 1, 20).TotalPages)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 20, Offset(2, 20))
	assert.Equal(t, 90, Offset(10, 10))
}
