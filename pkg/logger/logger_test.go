package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2024, 11, 1, 8, 30, 0, 0, time.UTC) }

func TestLogger_JSONEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelInfo})
	l.now = fixedClock

	l.With(Component("metrics")).Info("computed", StudentID("STU001"), Err(errors.New("boom")))

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "computed", entry.Message)
	assert.Equal(t, "2024-11-01T08:30:00Z", entry.Timestamp)
	assert.Equal(t, "metrics", entry.Fields["component"])
	assert.Equal(t, "STU001", entry.Fields["student_id"])
	assert.Equal(t, "boom", entry.Fields["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelWarn})

	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l.WithLevel(LevelDebug).Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_TextFormatSortsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelDebug, Format: FormatText})
	l.now = fixedClock

	l.Info("saved", String("zeta", "z"), Int("alpha", 1))

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "2024-11-01T08:30:00Z INFO saved"))
	assert.Less(t, strings.Index(line, "alpha=1"), strings.Index(line, "zeta=z"))
}

func TestLogger_WithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf, Level: LevelInfo})
	_ = parent.With(String("child", "yes"))

	parent.Info("parent entry")
	assert.NotContains(t, buf.String(), "child")
}

func TestContextRoundTrip(t *testing.T) {
	l := Nop().WithRequestID("req-1")
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}
