package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lmk/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = func() time.Time { return testNow }
	return opts
}

func testNotifications() []model.Notification {
	return []model.Notification{
		{
			ID:        1,
			Ref:       "01JWNQ8Z000000000000000000",
			Title:     "Download Complete",
			Body:      "myfile.zip has finished downloading",
			Urgency:   model.UrgencyNormal,
			CreatedAt: testNow.Add(-5 * time.Minute),
		},
		{
			ID:        2,
			Ref:       "01JWNQ8Z000000000000000001",
			Title:     "Disk Full",
			Body:      "only\n  2%   left",
			Urgency:   model.UrgencyCritical,
			CreatedAt: testNow.Add(-2 * time.Hour),
			Dismissed: true,
		},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, format := range FormatTypes() {
		f, err := NewFormatter(format, testOptions())
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	f, err := NewFormatter("", testOptions())
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = NewFormatter("xml", testOptions())
	assert.ErrorContains(t, err, "unknown format")
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testNotifications()))

	want := "[1] Download Complete 5 minutes ago\n" +
		"    myfile.zip has finished downloading\n" +
		"[2] Disk Full (dismissed) 2 hours ago\n" +
		"    only 2% left\n"
	assert.Equal(t, want, buf.String())
}

func TestPlainFormatter_Options(t *testing.T) {
	opts := testOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.BodyMaxLen = 10
	opts.IncludeNewline = true

	n := model.Notification{Title: "T", Body: "first line\nsecond"}
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, []model.Notification{n}))
	assert.Equal(t, "T\n    first l...\n", buf.String())

	opts.BodyMaxLen = 0
	buf.Reset()
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, []model.Notification{n}))
	assert.Equal(t, "T\n    first line\n    second\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Notification.ID}} {{urgencyIcon .Notification.Urgency}} {{truncate .Notification.Title 6}} ({{.RelativeTime}})\n"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testNotifications()))
	assert.Equal(t, "1 - Dow... (5 minutes ago)\n2 ! Dis... (2 hours ago)\n", buf.String())
}

func TestPlainFormatter_InvalidTemplateFallsBack(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Broken"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testNotifications()[:1]))
	assert.True(t, strings.HasPrefix(buf.String(), "[1] Download Complete"))
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(testOptions()).Format(&buf, testNotifications()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | 5m | Download Complete: myfile.zip has finished downloading", lines[0])
	assert.Equal(t, "2 | 2h | Disk Full: only 2% left", lines[1])
}

func TestDmenuFormatter_NoIndex(t *testing.T) {
	opts := testOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.Separator = "\t"

	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testNotifications()[:1]))
	assert.Equal(t, "Download Complete: myfile.zip has finished downloading\n", buf.String())
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Notification.ID}}: {{.Notification.Title}} {{reltime .Notification.CreatedAt}}"

	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testNotifications()[:1]))
	assert.Equal(t, "1: Download Complete 5 minutes ago\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testNotifications()))

	var decoded []model.Notification
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Disk Full", decoded[1].Title)
	assert.True(t, decoded[1].Dismissed)

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testNotifications()[:1]))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 1, decoded[0]["id"])
	assert.Equal(t, "Download Complete", decoded[0]["title"])
	assert.Equal(t, "2025-06-01T11:55:00Z", decoded[0]["created_at"])
	assert.Equal(t, false, decoded[0]["dismissed"])
	assert.True(t, strings.HasPrefix(buf.String(), "- id: 1\n"))
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testNotifications()))
	assert.Equal(t, "1\n2\n", buf.String())
}

func TestFormatField(t *testing.T) {
	n := testNotifications()[1]
	tests := []struct {
		field string
		want  string
	}{
		{"id", "2"},
		{"ref", "01JWNQ8Z000000000000000001"},
		{"title", "Disk Full"},
		{"SUMMARY", "Disk Full"},
		{"body", n.Body},
		{"urgency", "critical"},
		{"full", "Disk Full\n" + n.Body},
		{"unknown", "Disk Full"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatField(&n, tt.field))
		})
	}
}

func TestShortAge(t *testing.T) {
	assert.Equal(t, "now", shortAge(10*time.Second))
	assert.Equal(t, "5m", shortAge(5*time.Minute))
	assert.Equal(t, "3h", shortAge(3*time.Hour))
	assert.Equal(t, "2d", shortAge(50*time.Hour))
	assert.Equal(t, "2w", shortAge(15*24*time.Hour))
}
