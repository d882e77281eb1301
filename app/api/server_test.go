package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func requestLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("Invalid log line %q: %v", raw, err)
		}
		if line["msg"] == "HTTP request" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestRequestLogger(t *testing.T) {
	env := newTestEnv(t, "", "")
	buf := captureLogs(t)

	env.do(http.MethodGet, "/health", "", false)
	env.do(http.MethodGet, "/api/settings", "", false)
	env.do(http.MethodGet, "/api/settings", "", true)

	lines := requestLogLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 request lines (health skipped), got %d: %s", len(lines), buf.String())
	}

	if lines[0]["path"] != "/api/settings" || lines[0]["status"] != float64(http.StatusUnauthorized) {
		t.Errorf("Unexpected first line %v", lines[0])
	}
	if lines[0]["level"] != "WARN" {
		t.Errorf("Expected WARN for 401, got %v", lines[0]["level"])
	}
	if lines[1]["status"] != float64(http.StatusOK) || lines[1]["level"] != "INFO" {
		t.Errorf("Unexpected second line %v", lines[1])
	}
	if lines[1]["method"] != http.MethodGet {
		t.Errorf("Expected method GET, got %v", lines[1]["method"])
	}
}

func TestAPIKeyFrom(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"header", map[string]string{"X-API-Key": "k1"}, "k1"},
		{"bearer", map[string]string{"Authorization": "Bearer k2"}, "k2"},
		{"header wins", map[string]string{"X-API-Key": "k1", "Authorization": "Bearer k2"}, "k1"},
		{"basic ignored", map[string]string{"Authorization": "Basic abc"}, ""},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req

			if got := apiKeyFrom(c); got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}
