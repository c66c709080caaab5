package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Page: 1, Limit: DefaultLimit}},
		{Page{Page: 4, Limit: 25}, Page{Page: 4, Limit: 25}},
		{Page{Page: -1, Limit: 1000}, Page{Page: 1, Limit: MaxLimit}},
		{Page{Page: math.MaxInt, Limit: 50}, Page{Page: MaxPage, Limit: 50}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.Normalize(), "%+v", tc.in)
	}
}

func TestPage_OffsetDoesNotOverflow(t *testing.T) {
	assert.Equal(t, 0, Page{}.Offset())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())

	off := Page{Page: 92233720368547760, Limit: MaxLimit}.Offset()
	assert.Positive(t, off)
	assert.Equal(t, (MaxPage-1)*MaxLimit, off)
}
