package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorIndex(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		available  uint
		wantIndex  uint
		wantOK     bool
	}{
		{"no monitors", 1, 0, 0, false},
		{"unset", 0, 2, 0, true},
		{"first", 1, 2, 0, true},
		{"second", 2, 2, 1, true},
		{"out of range falls back to first", 5, 2, 0, true},
		{"negative", -1, 3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := monitorIndex(tt.configured, tt.available)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestError(t *testing.T) {
	err := &Error{Message: "no display available"}
	assert.Equal(t, "surface: no display available", err.Error())
}
