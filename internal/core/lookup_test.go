package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/model"
)

func TestLookupByID(t *testing.T) {
	ns := sample()

	n := LookupByID(ns, 3)
	require.NotNil(t, n)
	assert.Equal(t, "Build passed", n.Title)

	assert.Nil(t, LookupByID(ns, 0))
	assert.Nil(t, LookupByID(ns, 99))
	assert.Nil(t, LookupByID(nil, 1))
}

func TestLookupByRef(t *testing.T) {
	ns := []model.Notification{
		{ID: 1, Ref: "01JX0000000000000000000001"},
		{ID: 2, Ref: "01JX0000000000000000000002"},
	}

	n := LookupByRef(ns, "01jx0000000000000000000002")
	require.NotNil(t, n)
	assert.Equal(t, uint32(2), n.ID)
	assert.Nil(t, LookupByRef(ns, "01JX0000000000000000000009"))
}

func TestLookupByIndex(t *testing.T) {
	ns := sample()

	tests := []struct {
		index  int
		wantID uint32
	}{
		{1, 1},
		{4, 4},
		{0, 0},
		{5, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		n := LookupByIndex(ns, tt.index)
		if tt.wantID == 0 {
			assert.Nil(t, n, "index %d", tt.index)
			continue
		}
		require.NotNil(t, n, "index %d", tt.index)
		assert.Equal(t, tt.wantID, n.ID)
	}
}

func TestLookupByIndex_PointsIntoSlice(t *testing.T) {
	ns := sample()
	n := LookupByIndex(ns, 2)
	require.NotNil(t, n)
	n.Title = "changed"
	assert.Equal(t, "changed", ns[1].Title)
}

func TestSearch(t *testing.T) {
	ns := sample()

	assert.Equal(t, []uint32{2}, idsOf(Search(ns, "DISK")))
	assert.Equal(t, []uint32{1}, idsOf(Search(ns, "nightly")))
	assert.Equal(t, []uint32{1, 2, 3}, idsOf(Search(ns, "i")))
	assert.Len(t, Search(ns, ""), 4)
	assert.Empty(t, Search(ns, "nothing matches this"))
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in     string
		want   uint32
		wantOK bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"7 | 5m | Disk full: only 2% left", 7, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc | 5m", 0, false},
		{"", 0, false},
		{"4294967296", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSelection(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
