package logs

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dentaldesk.log")
	cfg := &config.Config{
		Server:        config.ServerConfig{Environment: "production"},
		Observability: config.ObservabilityConfig{ServiceName: "dentaldesk", ServiceVersion: "test"},
		Logging: config.LoggingConfig{
			Level: "info",
			Output: config.OutputConfig{
				File: config.FileLogConfig{Enabled: true, Path: path, MaxSizeMB: 1},
			},
		},
	}

	New(cfg).Info("table loaded", "entity", "patients")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &line))
	assert.Equal(t, "table loaded", line["msg"])
	assert.Equal(t, "patients", line["entity"])
	assert.Equal(t, "dentaldesk", line["service"])
	assert.Equal(t, "production", line["env"])
}

func TestLokiWriterPushesStream(t *testing.T) {
	var got lokiPush
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	lw := &lokiWriter{
		endpoint: srv.URL + "/loki/api/v1/push",
		client:   &http.Client{Timeout: time.Second},
		labels:   map[string]string{"service": "dentaldesk"},
	}
	n, err := lw.Write([]byte(`{"msg":"hi \"there\""}` + "\n"))
	require.NoError(t, err)
	assert.Positive(t, n)

	require.Len(t, got.Streams, 1)
	assert.Equal(t, "dentaldesk", got.Streams[0].Stream["service"])
	assert.Equal(t, `{"msg":"hi \"there\""}`, got.Streams[0].Values[0][1])
}
