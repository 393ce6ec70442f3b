package ai

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// OllamaProvider talks to a local Ollama server. It needs no credentials but
// is only used when a reachability probe succeeds.
type OllamaProvider struct {
	baseURL      string
	model        string
	probeTimeout time.Duration
	client       *http.Client
}

// NewOllamaProvider builds a provider for the server at baseURL.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	return &OllamaProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		probeTimeout: 3 * time.Second,
		client:       &http.Client{},
	}
}

func (p *OllamaProvider) Name() ProviderName { return Ollama }

func (p *OllamaProvider) Available() bool { return p.baseURL != "" }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.probe(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(ollamaRequest{Model: p.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", &ProviderError{Provider: Ollama, Kind: KindDecode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", transportError(Ollama, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(Ollama, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(Ollama, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(Ollama, resp.StatusCode, raw)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ProviderError{Provider: Ollama, Kind: KindDecode, Err: err}
	}
	text := strings.TrimSpace(parsed.Response)
	if text == "" {
		return "", &ProviderError{Provider: Ollama, Kind: KindEmpty}
	}
	return text, nil
}

// probe checks the server root answers 200 within the probe timeout.
func (p *OllamaProvider) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return &ProviderError{Provider: Ollama, Kind: KindUnreachable, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: Ollama, Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: Ollama, Kind: KindUnreachable, Status: resp.StatusCode}
	}
	return nil
}
