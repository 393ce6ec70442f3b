package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// fileHook appends every entry to combined.log and error entries to error.log.
type fileHook struct {
	mu        sync.Mutex
	formatter logrus.Formatter
	combined  *os.File
	errors    *os.File
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		if _, err := h.combined.Write(line); err != nil {
			return err
		}
	}
	if entryLevel(entry).IsError() && h.errors != nil {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *fileHook) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.combined != nil {
		h.combined.Close()
		h.combined = nil
	}
	if h.errors != nil {
		h.errors.Close()
		h.errors = nil
	}
}

type webhookEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

// webhookHook ships entries to Discord webhooks as embeds. Errors go to the
// error webhook, everything else to the logs webhook.
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *http.Client
	wg       sync.WaitGroup
}

func newWebhookHook(errorURL, logsURL string) *webhookHook {
	return &webhookHook{
		errorURL: errorURL,
		logsURL:  logsURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := entryLevel(entry)
	url := h.logsURL
	if level.IsError() {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	payload := webhookPayload{Embeds: []webhookEmbed{{
		Title:       fmt.Sprintf("[%s] %s", level.String(), entryPrefix(entry)),
		Description: fmt.Sprintf("```%s```", entry.Message),
		Color:       level.DiscordColor(),
		Timestamp:   entry.Time.Format(time.RFC3339),
		Footer:      &embedFooter{Text: "💫 Developed by PancyStudio | HelperBot Go"},
	}}}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.send(url, payload)
	}()
	return nil
}

func (h *webhookHook) send(url string, payload webhookPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// flush waits for in-flight webhook posts.
func (h *webhookHook) flush() {
	h.wg.Wait()
}
