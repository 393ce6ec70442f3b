// Package errors provides panic recovery and error reporting for the bot.
// Recovered panics are counted, logged and reported to a Discord webhook; an
// unusual burst of them raises a critical alert but never stops the process.
package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/goccy/go-json"
)

// ErrorHandler manages error counting and reporting
type ErrorHandler struct {
	total      atomic.Int64
	webhookURL string
	client     *http.Client

	mu          sync.Mutex
	windowStart time.Time
	windowCount int
	alerted     bool

	maxErrors int
	window    time.Duration
	now       func() time.Time
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(webhookURL string) *ErrorHandler {
	return &ErrorHandler{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		maxErrors:  15,
		window:     5 * time.Second,
		now:        time.Now,
	}
}

// Count returns the number of errors recorded since start.
func (h *ErrorHandler) Count() int64 {
	return h.total.Load()
}

// IncrementError records one error. When more than maxErrors land inside one
// window a single critical alert is logged and reported for that window.
func (h *ErrorHandler) IncrementError() {
	count := h.total.Add(1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")

	h.mu.Lock()
	now := h.now()
	if h.windowStart.IsZero() || now.Sub(h.windowStart) > h.window {
		h.windowStart = now
		h.windowCount = 0
		h.alerted = false
	}
	h.windowCount++
	burst := h.windowCount > h.maxErrors && !h.alerted
	if burst {
		h.alerted = true
	}
	h.mu.Unlock()

	if burst {
		logger.Critical("Se detectó un número demasiado alto de errores", "AntiCrash")
		h.Report(ReportErrorOptions{
			Error:   "Critical Error",
			Message: fmt.Sprintf("Número inusual de errores: más de %d en %v", h.maxErrors, h.window),
		})
	}
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.IncrementError()
	stack := string(debug.Stack())
	logger.Debug("Unhandled Panic/Catch", "AntiCrash")
	logger.Error(fmt.Sprintf("%v", recovered), "SYS")
	h.Report(ReportErrorOptions{
		Error:   "Panic",
		Message: fmt.Sprintf("%v\n```%s```", recovered, truncate(stack, 3500)),
	})
}

type reportEmbed struct {
	Author      map[string]string `json:"author"`
	Description string            `json:"description"`
	Color       int               `json:"color"`
	Footer      map[string]string `json:"footer"`
	Timestamp   string            `json:"timestamp"`
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	payload := map[string][]reportEmbed{
		"embeds": {{
			Author:      map[string]string{"name": fmt.Sprintf("Error %s", data.Error)},
			Description: data.Message,
			Color:       0xFF0000,
			Footer:      map[string]string{"text": "HelperBot Go"},
			Timestamp:   h.now().Format(time.RFC3339),
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	req, err := http.NewRequest(http.MethodPost, h.webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create webhook request: %v", err), "AntiCrash")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Sent ErrorReport to Webhook, Status: %d", resp.StatusCode), "AntiCrash")
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
