// Package ai turns a user's message into a reply by walking an ordered chain
// of text-generation providers and falling back to canned replies.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ProviderName identifies a text-generation backend.
type ProviderName string

const (
	HuggingFace ProviderName = "huggingface"
	OpenAI      ProviderName = "openai"
	Ollama      ProviderName = "ollama"
)

// ParseProviderName normalizes a user supplied provider name.
func ParseProviderName(s string) (ProviderName, error) {
	switch name := ProviderName(strings.ToLower(strings.TrimSpace(s))); name {
	case HuggingFace, OpenAI, Ollama:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// Provider is one text-generation backend.
type Provider interface {
	Name() ProviderName
	// Available reports whether the provider has the credentials it needs.
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrUnknownProvider    = errors.New("proveedor de IA desconocido")
	ErrMissingCredentials = errors.New("el proveedor no tiene credenciales configuradas")
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindTransport     ErrorKind = "transport"
	KindTimeout       ErrorKind = "timeout"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindWarmingUp     ErrorKind = "warming_up"
	KindStatus        ErrorKind = "status"
	KindDecode        ErrorKind = "decode"
	KindEmpty         ErrorKind = "empty"
	KindUnreachable   ErrorKind = "unreachable"
	KindNoCredentials ErrorKind = "no_credentials"
)

// ProviderError is returned by providers when a generation attempt fails.
type ProviderError struct {
	Provider ProviderName
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (http %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func transportError(name ProviderName, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: name, Kind: KindTimeout, Err: err}
	}
	return &ProviderError{Provider: name, Kind: KindTransport, Err: err}
}

// statusError maps a non-2xx response onto an error kind.
func statusError(name ProviderName, status int, body []byte) *ProviderError {
	kind := KindStatus
	switch status {
	case 401, 403:
		kind = KindUnauthorized
	case 503:
		kind = KindWarmingUp
	}
	var err error
	if len(body) > 0 {
		err = errors.New(truncate(string(body), 200))
	}
	return &ProviderError{Provider: name, Kind: kind, Status: status, Err: err}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
