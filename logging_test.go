package geosynth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// stubHTTPClient satisfies HTTPClient without doing anything.
type stubHTTPClient struct{}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return nil, http.ErrSkipAltProtocol
}

func testZerolog() zerolog.Logger {
	return zerolog.New(&bytes.Buffer{})
}

func TestZerologLogger(t *testing.T) {
	newCapture := func() (Logger, *bytes.Buffer) {
		var buf bytes.Buffer
		return NewZerologLogger(zerolog.New(&buf)), &buf
	}

	t.Run("levels map through", func(t *testing.T) {
		logger, buf := newCapture()

		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Error("e")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("logged %d lines, want 4", len(lines))
		}

		wantLevels := []string{"debug", "info", "warn", "error"}
		for i, line := range lines {
			var entry map[string]any
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				t.Fatalf("line %d is not JSON: %v", i, err)
			}
			if entry["level"] != wantLevels[i] {
				t.Errorf("line %d level = %v, want %s", i, entry["level"], wantLevels[i])
			}
		}
	})

	t.Run("key value pairs attached as fields", func(t *testing.T) {
		logger, buf := newCapture()

		logger.Info("archive extracted", "archive", "depth", "bytes", 1234)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if entry["archive"] != "depth" {
			t.Errorf("archive field = %v, want depth", entry["archive"])
		}
		if entry["bytes"] != float64(1234) {
			t.Errorf("bytes field = %v, want 1234", entry["bytes"])
		}
		if entry["message"] != "archive extracted" {
			t.Errorf("message = %v", entry["message"])
		}
	})

	t.Run("odd trailing value does not panic", func(t *testing.T) {
		logger, buf := newCapture()

		logger.Warn("odd", "key", "v", "dangling")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if entry["key"] != "v" {
			t.Errorf("key field = %v, want v", entry["key"])
		}
	})
}
