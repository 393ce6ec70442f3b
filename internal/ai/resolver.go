package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
)

// FallbackReplies are used when every provider fails.
var FallbackReplies = []string{
	"No pude procesar tu pregunta en este momento.",
	"¿Podrías reformular tu pregunta?",
	"Estoy teniendo dificultades técnicas...",
	"¡Interesante! ¿Qué más te gustaría saber?",
	"Ahora mismo no puedo responder eso. ¡Pregunta otra cosa!",
}

// Resolver produces a reply for every message. The first provider of the
// chain is only attempted while it is the current preference; the others are
// attempted whenever they have credentials.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	fallback  []string
	pick      func(n int) int

	mu      sync.RWMutex
	current ProviderName
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithFallback replaces the canned reply pool.
func WithFallback(replies []string) Option {
	return func(r *Resolver) { r.fallback = replies }
}

// NewResolver builds a resolver over providers, attempted in the given order.
func NewResolver(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{
		providers: providers,
		timeout:   30 * time.Second,
		fallback:  FallbackReplies,
		pick:      rand.Intn,
	}
	if len(providers) > 0 {
		r.current = providers[0].Name()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the preferred provider.
func (r *Resolver) Current() ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Switch changes the preferred provider. Providers without credentials are rejected.
func (r *Resolver) Switch(name string) (ProviderName, error) {
	parsed, err := ParseProviderName(name)
	if err != nil {
		return "", err
	}
	p := r.provider(parsed)
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, parsed)
	}
	if !p.Available() {
		return "", fmt.Errorf("%w: %s", ErrMissingCredentials, parsed)
	}

	r.mu.Lock()
	r.current = parsed
	r.mu.Unlock()
	logger.Info(fmt.Sprintf("Proveedor de IA cambiado a %s", parsed), "AI")
	return parsed, nil
}

// Providers returns each provider name with its credential status.
func (r *Resolver) Providers() map[ProviderName]bool {
	out := make(map[ProviderName]bool, len(r.providers))
	for _, p := range r.providers {
		out[p.Name()] = p.Available()
	}
	return out
}

func (r *Resolver) provider(name ProviderName) Provider {
	for _, p := range r.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (r *Resolver) eligible(i int, p Provider) bool {
	if !p.Available() {
		return false
	}
	if i == 0 && r.Current() != p.Name() {
		return false
	}
	return true
}

// Resolve returns a reply for text. It never fails: when every provider is
// ineligible or fails, a canned reply is returned.
func (r *Resolver) Resolve(ctx context.Context, text string) string {
	for i, p := range r.providers {
		if !r.eligible(i, p) {
			continue
		}

		reply, err := r.attempt(ctx, p, text)
		if err == nil {
			logger.Debug(fmt.Sprintf("Respuesta generada por %s", p.Name()), "AI")
			return reply
		}

		var pe *ProviderError
		if errors.As(err, &pe) && pe.Kind == KindUnreachable {
			logger.Debug(err.Error(), "AI")
		} else {
			logger.Warn(err.Error(), "AI")
		}
		if ctx.Err() != nil {
			break
		}
	}
	return r.fallbackReply()
}

func (r *Resolver) attempt(ctx context.Context, p Provider, text string) (reply string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = &ProviderError{Provider: p.Name(), Kind: KindTransport, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	reply, err = p.Generate(ctx, text)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", &ProviderError{Provider: p.Name(), Kind: KindEmpty}
	}
	return reply, nil
}

func (r *Resolver) fallbackReply() string {
	if len(r.fallback) == 0 {
		return FallbackReplies[0]
	}
	return r.fallback[r.pick(len(r.fallback))]
}
