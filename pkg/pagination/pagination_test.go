package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Params{Page: -3, PageSize: -1}.Normalize())
	assert.Equal(t, Params{Page: 2, PageSize: 50}, Params{Page: 2, PageSize: 50}.Normalize())
	assert.Equal(t, Params{Page: 1, PageSize: MaxPageSize}, Params{Page: 1, PageSize: 500}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, Params{}.Offset())
}

func TestPages(t *testing.T) {
	assert.Equal(t, int64(0), Pages(0, 20))
	assert.Equal(t, int64(1), Pages(1, 20))
	assert.Equal(t, int64(1), Pages(20, 20))
	assert.Equal(t, int64(2), Pages(21, 20))
	assert.Equal(t, int64(5), Pages(100, 0)) // falls back to the default size
}
