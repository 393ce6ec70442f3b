// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes state snapshots and answers request/response queries.
package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TopicRoot prefixes every topic the bot uses.
const TopicRoot = "helperbot"

// ErrNotConnected is returned by Publish while the broker is unreachable.
var ErrNotConnected = errors.New("cliente MQTT no conectado")

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// Options configures the broker connection.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	ClientID string
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client         mqtt.Client
	clientID       string
	publishTimeout time.Duration
}

// NewMqttCommunicator creates a communicator. Call Connect to reach the broker.
func NewMqttCommunicator(o Options) *MqttCommunicator {
	clientID := o.ClientID
	if clientID == "" {
		clientID = "helperbot"
	}
	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", o.Host, o.Port)).
		SetClientID(uniqueID).
		SetUsername(o.Username).
		SetPassword(o.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	return newWithClient(mqtt.NewClient(opts), clientID)
}

func newWithClient(client mqtt.Client, clientID string) *MqttCommunicator {
	return &MqttCommunicator{
		client:         client,
		clientID:       clientID,
		publishTimeout: 2 * time.Second,
	}
}

// Connect waits up to timeout for the first connection. Retries continue in
// the background after a timeout.
func (mc *MqttCommunicator) Connect(timeout time.Duration) error {
	token := mc.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("tiempo de espera agotado conectando al broker MQTT (%s)", timeout)
	}
	return token.Error()
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends payload as JSON to topic. It never blocks longer than the
// publish timeout.
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	if !mc.IsConnected() {
		return ErrNotConnected
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	if !token.WaitTimeout(mc.publishTimeout) {
		return fmt.Errorf("tiempo de espera agotado publicando en %s", topic)
	}
	return token.Error()
}

// RequestTopic is the topic a request named name is received on.
func RequestTopic(name string) string {
	return TopicRoot + "/request/" + name
}

// ResponseTopic is the topic the answer to a request is sent on.
func ResponseTopic(name, correlationID string) string {
	return TopicRoot + "/response/" + name + "/" + correlationID
}

// On registers a handler for a request topic
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) error {
	topic := RequestTopic(requestTopic)

	token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		// Publishing from the callback would block the router.
		go mc.respond(msg.Topic(), msg.Payload(), callback)
	})

	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
		return token.Error()
	}
	logger.Debug("Suscrito a "+topic, "MQTT")
	return nil
}

func (mc *MqttCommunicator) respond(topic string, payload []byte, callback RequestHandler) {
	responseTopic, response, err := handleRequest(topic, payload, callback)
	if err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return
	}
	if err := mc.Publish(responseTopic, response); err != nil {
		logger.Warn(fmt.Sprintf("Error enviando respuesta MQTT a %s: %v", responseTopic, err), "MQTT")
	}
}

// handleRequest decodes a request received on topic, runs callback and
// builds the response envelope.
func handleRequest(topic string, payload []byte, callback RequestHandler) (string, MqttResponse, error) {
	var request MqttRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return "", MqttResponse{}, err
	}
	if request.CorrelationID == "" {
		return "", MqttResponse{}, errors.New("petición sin correlationId")
	}

	actualTopic := strings.TrimPrefix(topic, TopicRoot+"/request/")
	responseTopic := ResponseTopic(actualTopic, request.CorrelationID)

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	response := MqttResponse{CorrelationID: request.CorrelationID}
	data, err := safeCall(callback, payloadMap)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return responseTopic, response, nil
}

func safeCall(callback RequestHandler, payload map[string]interface{}) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return callback(payload)
}
