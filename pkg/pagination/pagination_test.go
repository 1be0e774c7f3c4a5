package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestFromQuery(t *testing.T) {
	cfg := Config{DefaultPageSize: 20, MaxPageSize: 100}

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		search   string
	}{
		{"empty", "", 1, 20, ""},
		{"explicit", "page=3&page_size=5", 3, 5, ""},
		{"clamped", "page=-1&page_size=500", 1, 100, ""},
		{"search", "search=ahmet", 1, 20, "ahmet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			req := PageRequestFromQuery(values, cfg)
			assert.Equal(t, tt.page, req.Page)
			assert.Equal(t, tt.pageSize, req.PageSize)
			if tt.search == "" {
				assert.Nil(t, req.Search)
			} else {
				require.NotNil(t, req.Search)
				assert.Equal(t, tt.search, *req.Search)
			}
		})
	}
}

func TestNewPageResult_TotalPages(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
	}

	for _, tt := range tests {
		r := NewPageResult[int](nil, tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.want, r.TotalPages)
		assert.NotNil(t, r.Data)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	r := Slice(items, PageRequest{Page: 2, PageSize: 3})
	assert.Equal(t, []int{4, 5, 6}, r.Data)
	assert.Equal(t, 7, r.Total)
	assert.Equal(t, 3, r.TotalPages)

	r = Slice(items, PageRequest{Page: 3, PageSize: 3})
	assert.Equal(t, []int{7}, r.Data)

	r = Slice(items, PageRequest{Page: 9, PageSize: 3})
	assert.Empty(t, r.Data)
}

func TestPageRequest_Matches(t *testing.T) {
	term := "MEHMET"
	req := PageRequest{Search: &term}

	assert.True(t, req.Matches("Ali", "mehmet yilmaz"))
	assert.False(t, req.Matches("Ali", "Veli"))
	assert.True(t, (&PageRequest{}).Matches())
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")

	cfg := Config{}
	require.NoError(t, cfg.Finalize(&Env{DefaultPageSize: "TEST_PAGE_SIZE"}))
	assert.Equal(t, 50, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)

	bad := Config{DefaultPageSize: 200, MaxPageSize: 100}
	assert.Error(t, bad.Finalize(nil))
}
