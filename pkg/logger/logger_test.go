package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	return entry
}

func TestErrorCarriesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithWarehouseID(ctx, "wh-1")
	log.Error(ctx, "receipt.failed", errors.New("shopping list is completed"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "wh-1", entry["warehouse_id"])
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "shopping list is completed", entry["error"])
	assert.NotEmpty(t, entry["stack"])
	assert.Equal(t, "req-123", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestFieldsDoNotLeakIntoParentContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Format: FormatJSON, Output: buf})

	parent := log.WithField(context.Background(), "route", "/api/warehouses")
	_ = log.WithFields(parent, map[string]any{"supplier_id": "s-1"})
	log.Info(parent, "request.complete")

	entry := decodeLine(t, buf)
	assert.Equal(t, "/api/warehouses", entry["route"])
	assert.NotContains(t, entry, "supplier_id")
}

func TestWarnStackIsOptIn(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "cron", Format: FormatJSON, Output: buf}).Warn(context.Background(), "window skipped")
	assert.NotContains(t, buf.String(), `"stack"`)

	buf.Reset()
	New(Options{ServiceName: "cron", Format: FormatJSON, Output: buf, WarnStack: true}).Warn(context.Background(), "window skipped")
	assert.Contains(t, buf.String(), `"stack"`)
}

func TestLevelFiltersEntries(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.WarnLevel, Format: FormatJSON, Output: buf})
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Error(context.Background(), "shown", nil)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "migrate", Format: "CONSOLE", Output: buf}).Info(context.Background(), "migrations applied")
	assert.Contains(t, buf.String(), "migrations applied")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	ctx := log.WithField(context.Background(), "k", "v")
	log.Error(ctx, "ignored", errors.New("x"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
		" WARN ":  zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
		"error":   zerolog.ErrorLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
