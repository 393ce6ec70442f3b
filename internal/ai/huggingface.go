package ai

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const huggingFaceEndpoint = "https://api-inference.huggingface.co/models/"

// HuggingFaceProvider queries the hosted inference API.
type HuggingFaceProvider struct {
	token    string
	model    string
	endpoint string
	client   *http.Client
}

// NewHuggingFaceProvider builds a provider for the given model.
func NewHuggingFaceProvider(token, model string) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		token:    token,
		model:    model,
		endpoint: huggingFaceEndpoint,
		client:   &http.Client{},
	}
}

func (p *HuggingFaceProvider) Name() ProviderName { return HuggingFace }

func (p *HuggingFaceProvider) Available() bool { return p.token != "" }

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	DoSample    bool    `json:"do_sample"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", &ProviderError{Provider: HuggingFace, Kind: KindNoCredentials}
	}

	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxLength:   100,
			Temperature: 0.7,
			TopP:        0.9,
			DoSample:    true,
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: HuggingFace, Kind: KindDecode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+p.model, bytes.NewReader(body))
	if err != nil {
		return "", transportError(HuggingFace, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(HuggingFace, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(HuggingFace, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(HuggingFace, resp.StatusCode, raw)
	}

	var generations []hfGeneration
	if err := json.Unmarshal(raw, &generations); err != nil {
		return "", &ProviderError{Provider: HuggingFace, Kind: KindDecode, Err: err}
	}
	if len(generations) == 0 {
		return "", &ProviderError{Provider: HuggingFace, Kind: KindEmpty}
	}

	text := stripPromptEcho(prompt, generations[0].GeneratedText)
	if text == "" {
		return "", &ProviderError{Provider: HuggingFace, Kind: KindEmpty}
	}
	return text, nil
}

// stripPromptEcho removes the prompt the model echoes back in its output.
func stripPromptEcho(prompt, generated string) string {
	if prompt != "" {
		generated = strings.ReplaceAll(generated, prompt, "")
	}
	return strings.TrimSpace(generated)
}
