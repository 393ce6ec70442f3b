package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	payload []byte
}

// fakeClient implements the parts of mqtt.Client the communicator uses.
type fakeClient struct {
	mqtt.Client

	mu        sync.Mutex
	connected bool
	published []published
	handlers  map[string]mqtt.MessageHandler
}

func (f *fakeClient) IsConnected() bool { return f.connected }

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic: topic, payload: payload.([]byte)})
	return doneToken{}
}

func (f *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = map[string]mqtt.MessageHandler{}
	}
	f.handlers[topic] = callback
	return doneToken{}
}

func (f *fakeClient) last() (published, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		return published{}, false
	}
	return f.published[len(f.published)-1], true
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func TestPublishRequiresConnection(t *testing.T) {
	client := &fakeClient{}
	mc := newWithClient(client, "test")

	assert.ErrorIs(t, mc.Publish("helperbot/music/g1/playing", map[string]string{"a": "b"}), ErrNotConnected)

	client.connected = true
	require.NoError(t, mc.Publish("helperbot/music/g1/playing", map[string]string{"state": "playing"}))

	msg, ok := client.last()
	require.True(t, ok)
	assert.Equal(t, "helperbot/music/g1/playing", msg.topic)
	assert.JSONEq(t, `{"state":"playing"}`, string(msg.payload))
}

func TestHandleRequestEnvelope(t *testing.T) {
	payload := []byte(`{"correlationId":"abc","payload":{"guildId":"g1"}}`)

	topic, resp, err := handleRequest(RequestTopic("music"), payload, func(p map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"guild": p["guildId"], "topic": p["_topic"]}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "helperbot/response/music/abc", topic)
	assert.Equal(t, "abc", resp.CorrelationID)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"guild": "g1", "topic": "music"}, resp.Data)
}

func TestHandleRequestErrors(t *testing.T) {
	_, _, err := handleRequest(RequestTopic("status"), []byte(`nope`), nil)
	assert.Error(t, err)

	_, _, err = handleRequest(RequestTopic("status"), []byte(`{}`), nil)
	assert.Error(t, err)

	_, resp, err := handleRequest(RequestTopic("status"), []byte(`{"correlationId":"x"}`), func(map[string]interface{}) (interface{}, error) {
		return nil, errors.New("guild desconocido")
	})
	require.NoError(t, err)
	assert.Equal(t, "guild desconocido", resp.Error)
	assert.Nil(t, resp.Data)

	_, resp, err = handleRequest(RequestTopic("status"), []byte(`{"correlationId":"y"}`), func(map[string]interface{}) (interface{}, error) {
		panic("boom")
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "boom")
}

func TestOnAnswersRequests(t *testing.T) {
	client := &fakeClient{connected: true}
	mc := newWithClient(client, "test")

	require.NoError(t, mc.On("status", func(map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"ready": true}, nil
	}))

	handler := client.handlers[RequestTopic("status")]
	require.NotNil(t, handler)
	handler(client, fakeMessage{topic: RequestTopic("status"), payload: []byte(`{"correlationId":"c1"}`)})

	require.Eventually(t, func() bool {
		_, ok := client.last()
		return ok
	}, time.Second, 10*time.Millisecond)

	msg, _ := client.last()
	assert.Equal(t, "helperbot/response/status/c1", msg.topic)

	var resp MqttResponse
	require.NoError(t, json.Unmarshal(msg.payload, &resp))
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Equal(t, map[string]interface{}{"ready": true}, resp.Data)
}
