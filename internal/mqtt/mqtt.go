// Package mqtt pushes commands to TV screens over their per-device topics.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// CommandTopic is the topic a TV listens on for server commands.
func CommandTopic(deviceID string) string {
	return fmt.Sprintf("tv/%s/commands", deviceID)
}

// Hub shares one broker connection across all screens and remembers which
// devices announced themselves.
type Hub struct {
	client paho.Client

	mu        sync.RWMutex
	connected map[string]time.Time
}

// Connect dials the broker and returns a ready Hub.
func Connect(brokerURL, clientID string) (*Hub, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(func(_ paho.Client, msg paho.Message) {
		log.Debug().Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("mqtt message received")
	})
	opts.OnConnect = func(paho.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return NewHub(client), nil
}

// NewHub wraps an existing client.
func NewHub(client paho.Client) *Hub {
	return &Hub{client: client, connected: make(map[string]time.Time)}
}

// Track records that deviceID is online and listening on its command topic.
func (h *Hub) Track(deviceID string) {
	h.mu.Lock()
	h.connected[deviceID] = time.Now()
	h.mu.Unlock()
	log.Info().Str("device_id", deviceID).Str("topic", CommandTopic(deviceID)).Msg("device tracked")
}

// Forget drops a device that was unpaired or replaced.
func (h *Hub) Forget(deviceID string) {
	h.mu.Lock()
	delete(h.connected, deviceID)
	h.mu.Unlock()
}

// Online reports whether deviceID connected since it was last forgotten.
func (h *Hub) Online(deviceID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connected[deviceID]
	return ok
}

// Publish sends payload to one device's command topic with QoS 1.
func (h *Hub) Publish(deviceID string, payload []byte) error {
	topic := CommandTopic(deviceID)
	token := h.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to send message to TV device %s: %w", deviceID, err)
	}
	log.Debug().Str("device_id", deviceID).Msg("message sent to TV device via MQTT")
	return nil
}

// Close disconnects from the broker.
func (h *Hub) Close() {
	h.client.Disconnect(250)
	log.Info().Msg("MQTT client disconnected")
}
