package pagination

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Page
		wantErr error
	}{
		{name: "defaults", query: "", want: Page{Number: 1, Limit: DefaultLimit}},
		{name: "explicit", query: "page=3&limit=5", want: Page{Number: 3, Limit: 5}},
		{name: "limit clamped", query: "limit=1000", want: Page{Number: 1, Limit: MaxLimit}},
		{name: "spaces trimmed", query: "page=+2+", want: Page{Number: 2, Limit: DefaultLimit}},
		{name: "page zero", query: "page=0", wantErr: ErrInvalidPage},
		{name: "page not a number", query: "page=abc", wantErr: ErrInvalidPage},
		{name: "page too large", query: "page=9223372036854775807", wantErr: ErrInvalidPage},
		{name: "largest page", query: "page=" + strconv.Itoa(MaxPage), want: Page{Number: MaxPage, Limit: DefaultLimit}},
		{name: "negative limit", query: "limit=-1", wantErr: ErrInvalidLimit},
		{name: "limit not a number", query: "limit=1.5", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := Parse(values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPage_OffsetAndHasMore(t *testing.T) {
	p := Page{Number: 2, Limit: 10}
	assert.Equal(t, 10, p.Offset())
	assert.True(t, p.HasMore(21))
	assert.False(t, p.HasMore(20))

	assert.Equal(t, 0, Page{}.Offset())
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, Page{Number: 1, Limit: 2}))
	assert.Equal(t, []int{5}, Slice(items, Page{Number: 3, Limit: 2}))
	assert.Empty(t, Slice(items, Page{Number: 4, Limit: 2}))

	assert.Empty(t, Slice(items, Page{Number: math.MaxInt, Limit: MaxLimit}))

	out := Slice(items, Page{Number: 1, Limit: 5})
	out[0] = 42
	assert.Equal(t, 1, items[0], "slice must not alias the source")
}

func TestPage_OffsetDoesNotOverflow(t *testing.T) {
	p := Page{Number: math.MaxInt, Limit: MaxLimit}
	assert.Positive(t, p.Offset())
	assert.False(t, p.HasMore(10))
}
