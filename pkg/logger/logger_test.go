package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	l := New(Options{Dir: t.TempDir(), Output: &out})
	require.NotNil(t, l)

	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")
	l.Close()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "[TEST]: Test info message")
	assert.Contains(t, lines[3], "SYSTEM")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.color, tt.level.DiscordColor())
			assert.NotEmpty(t, tt.level.Color())
		})
	}
}

func TestCriticalDoesNotExit(t *testing.T) {
	assert.Equal(t, logrus.ErrorLevel, LevelCritical.logrusLevel())
	l := New(Options{Output: io.Discard})
	l.Critical("boom", "TEST")
}

func TestLineFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Message: "hola",
		Data:    logrus.Fields{fieldLevel: LevelWarn, fieldPrefix: "Music"},
	}

	plain, err := (&lineFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 10:30:00] [WARN] [Music]: hola\n", string(plain))

	colored, err := (&lineFormatter{colors: true}).Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(colored), LevelWarn.Color()+"WARN"+colorReset)
}

func TestLogFileCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l := New(Options{Dir: dir, Output: io.Discard})
	l.Info("informativo", "TEST")
	l.Error("fallo", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "informativo")
	assert.Contains(t, string(combined), "fallo")

	errorsLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errorsLog), "informativo")
	assert.Contains(t, string(errorsLog), "fallo")
}

func TestWebhookRouting(t *testing.T) {
	var mu sync.Mutex
	received := map[string][]webhookPayload{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		received[r.URL.Path] = append(received[r.URL.Path], p)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := New(Options{
		Output:          io.Discard,
		ErrorWebhookURL: srv.URL + "/errors",
		LogsWebhookURL:  srv.URL + "/logs",
	})
	l.Error("algo falló", "AI")
	l.Info("todo bien", "AI")
	l.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received["/errors"], 1)
	require.Len(t, received["/logs"], 1)
	assert.Equal(t, "[ERROR] AI", received["/errors"][0].Embeds[0].Title)
	assert.Equal(t, "```todo bien```", received["/logs"][0].Embeds[0].Description)
	assert.Equal(t, LevelInfo.DiscordColor(), received["/logs"][0].Embeds[0].Color)
}

func TestGlobalLoggerInit(t *testing.T) {
	logger = nil
	once = sync.Once{}

	l := Init("", "")
	require.NotNil(t, l)

	assert.Same(t, l, Init("different", "different"))
	assert.Same(t, l, Get())

	l.Close()
}
