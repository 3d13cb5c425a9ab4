package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/dbus"
)

func TestWaybarStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    dbus.StatusReply
		wantText  string
		wantClass string
		wantPct   int
	}{
		{
			name:      "nothing pending",
			status:    dbus.StatusReply{State: "hidden", Total: 3},
			wantText:  "",
			wantClass: "empty",
		},
		{
			name:      "pending while hidden",
			status:    dbus.StatusReply{State: "hidden", Pending: 2, Total: 2},
			wantText:  "2",
			wantClass: "pending",
			wantPct:   2,
		},
		{
			name:      "toast",
			status:    dbus.StatusReply{State: "toast", ToastID: 4, Pending: 1, Total: 1},
			wantText:  "1",
			wantClass: "toast",
			wantPct:   1,
		},
		{
			name:      "center",
			status:    dbus.StatusReply{State: "center", Pending: 7, Total: 9},
			wantText:  "7",
			wantClass: "center",
			wantPct:   7,
		},
		{
			name:      "percentage capped",
			status:    dbus.StatusReply{State: "hidden", Pending: 250, Total: 250},
			wantText:  "250",
			wantClass: "pending",
			wantPct:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := waybarStatus(tt.status)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantClass, got.Class)
			assert.Equal(t, tt.wantClass, got.Alt)
			assert.Equal(t, tt.wantPct, got.Percentage)
		})
	}
}

func TestBuildTooltip(t *testing.T) {
	assert.Equal(t, "No notifications", buildTooltip(dbus.StatusReply{}))
	assert.Equal(t, "2 pending", buildTooltip(dbus.StatusReply{Pending: 2, Total: 2}))
	assert.Equal(t, "1 pending\n3 dismissed", buildTooltip(dbus.StatusReply{Pending: 1, Total: 4}))
}

func TestWritePlainStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePlainStatus(&buf, dbus.StatusReply{State: "toast", ToastID: 12, Pending: 3, Total: 5}))
	assert.Equal(t, "State:   toast (12)\nPending: 3\nTotal:   5\n", buf.String())

	buf.Reset()
	require.NoError(t, writePlainStatus(&buf, dbus.StatusReply{State: "hidden"}))
	assert.Equal(t, "State:   hidden\nPending: 0\nTotal:   0\n", buf.String())
}

func TestWriteJSON_Status(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, statusJSON(dbus.StatusReply{State: "center", Pending: 2, Total: 3})))
	assert.JSONEq(t, `{"state":"center","pending":2,"total":3}`, buf.String())

	buf.Reset()
	require.NoError(t, writeJSON(&buf, waybarStatus(dbus.StatusReply{State: "hidden"})))
	assert.JSONEq(t, `{"text":"","alt":"empty","class":"empty","tooltip":"No notifications"}`, buf.String())
}
