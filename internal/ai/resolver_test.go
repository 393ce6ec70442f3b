package ai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      ProviderName
	available bool
	reply     string
	err       error
	calls     atomic.Int32
	block     bool
}

func (f *fakeProvider) Name() ProviderName { return f.name }
func (f *fakeProvider) Available() bool    { return f.available }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return "", transportError(f.name, ctx.Err())
	}
	return f.reply, f.err
}

func chain(hf, oa, ol *fakeProvider) []Provider {
	return []Provider{hf, oa, ol}
}

func TestResolveUsesFirstProvider(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, reply: "hola desde hf"}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "hola desde openai"}
	ol := &fakeProvider{name: Ollama, available: true, reply: "hola desde ollama"}

	r := NewResolver(chain(hf, oa, ol))

	assert.Equal(t, "hola desde hf", r.Resolve(context.Background(), "hola"))
	assert.Equal(t, int32(0), oa.calls.Load())
	assert.Equal(t, int32(0), ol.calls.Load())
}

func TestResolveFallsThroughToSecond(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, err: &ProviderError{Provider: HuggingFace, Kind: KindWarmingUp, Status: 503}}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "  respuesta sin tocar  "}
	ol := &fakeProvider{name: Ollama, available: true, reply: "ollama"}

	r := NewResolver(chain(hf, oa, ol))

	assert.Equal(t, "  respuesta sin tocar  ", r.Resolve(context.Background(), "hola"))
	assert.Equal(t, int32(1), hf.calls.Load())
	assert.Equal(t, int32(0), ol.calls.Load())
}

func TestResolveSkipsIneligibleFirst(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: false, reply: "nunca"}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "openai"}
	ol := &fakeProvider{name: Ollama, available: true}

	r := NewResolver(chain(hf, oa, ol))

	assert.Equal(t, "openai", r.Resolve(context.Background(), "hola"))
	assert.Equal(t, int32(0), hf.calls.Load())
}

func TestResolveAllFailReturnsFallback(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, err: &ProviderError{Provider: HuggingFace, Kind: KindUnauthorized}}
	oa := &fakeProvider{name: OpenAI, available: false}
	ol := &fakeProvider{name: Ollama, available: true, err: &ProviderError{Provider: Ollama, Kind: KindUnreachable}}

	r := NewResolver(chain(hf, oa, ol))

	reply := r.Resolve(context.Background(), "hola")
	assert.Contains(t, FallbackReplies, reply)
	assert.Equal(t, int32(1), hf.calls.Load())
	assert.Equal(t, int32(0), oa.calls.Load())
	assert.Equal(t, int32(1), ol.calls.Load())
}

func TestResolveEmptyReplyIsFailure(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, reply: ""}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "openai"}
	ol := &fakeProvider{name: Ollama, available: true}

	r := NewResolver(chain(hf, oa, ol))
	assert.Equal(t, "openai", r.Resolve(context.Background(), "hola"))
}

func TestResolveTimeout(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, block: true}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "openai"}
	ol := &fakeProvider{name: Ollama, available: true}

	r := NewResolver(chain(hf, oa, ol), WithTimeout(20*time.Millisecond))

	assert.Equal(t, "openai", r.Resolve(context.Background(), "hola"))
}

func TestResolveFallbackPick(t *testing.T) {
	r := NewResolver(nil, WithFallback([]string{"a", "b", "c"}))
	r.pick = func(n int) int { return n - 1 }

	assert.Equal(t, "c", r.Resolve(context.Background(), "hola"))
}

func TestSwitchGatesFirstProvider(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true, reply: "hf"}
	oa := &fakeProvider{name: OpenAI, available: true, reply: "openai"}
	ol := &fakeProvider{name: Ollama, available: true, reply: "ollama"}

	r := NewResolver(chain(hf, oa, ol))
	require.Equal(t, HuggingFace, r.Current())

	name, err := r.Switch("OpenAI")
	require.NoError(t, err)
	assert.Equal(t, OpenAI, name)
	assert.Equal(t, OpenAI, r.Current())

	assert.Equal(t, "openai", r.Resolve(context.Background(), "hola"))
	assert.Equal(t, int32(0), hf.calls.Load())
}

func TestSwitchRejections(t *testing.T) {
	hf := &fakeProvider{name: HuggingFace, available: true}
	oa := &fakeProvider{name: OpenAI, available: false}
	ol := &fakeProvider{name: Ollama, available: true}

	r := NewResolver(chain(hf, oa, ol))

	_, err := r.Switch("gemini")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = r.Switch("openai")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, HuggingFace, r.Current())

	_, err = r.Switch("ollama")
	assert.NoError(t, err)
	assert.Equal(t, Ollama, r.Current())
}

func TestProviders(t *testing.T) {
	r := NewResolver(chain(
		&fakeProvider{name: HuggingFace, available: true},
		&fakeProvider{name: OpenAI, available: false},
		&fakeProvider{name: Ollama, available: true},
	))
	assert.Equal(t, map[ProviderName]bool{HuggingFace: true, OpenAI: false, Ollama: true}, r.Providers())
}
