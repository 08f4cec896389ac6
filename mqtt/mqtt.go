// mqtt.go - Publishes upload events to the MQTT broker
// Sellers' print servers subscribe to the upload topic to learn about new models.

package mqtt // Declares the package name

import ( // Import required packages
	"encoding/json" // Event payload encoding
	"fmt"           // Error wrapping
	"time"          // Timeouts

	paho "github.com/eclipse/paho.mqtt.golang" // Eclipse Paho MQTT client
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Client is a connected broker session.
type Client struct {
	client  paho.Client
	timeout time.Duration
}

// Connect opens a session with broker (e.g. tcp://localhost:1883).
func Connect(broker, clientID string) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).      // Broker address
		SetClientID(clientID).  // Unique per process
		SetAutoReconnect(true). // Survive broker restarts
		SetConnectTimeout(10 * time.Second)

	c := paho.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	return &Client{client: c, timeout: 5 * time.Second}, nil
}

// Publish sends payload at QoS 1. Strings and byte slices are sent as-is,
// anything else is JSON encoded.
func (c *Client) Publish(topic string, payload interface{}) error {
	body, err := encode(payload)
	if err != nil {
		return err
	}
	token := c.client.Publish(topic, 1, false, body)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	return token.Error()
}

// Close disconnects, giving in-flight messages a moment to drain.
func (c *Client) Close() {
	c.client.Disconnect(250)
}

// Noop drops every message. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(topic string, payload interface{}) error { return nil }

func encode(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return b, nil
	}
}
