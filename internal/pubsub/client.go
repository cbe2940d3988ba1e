package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New connects to Pub/Sub in projectID. It exits the process when the client
// cannot be created.
func New(projectID string) PubSubClient {
	c, err := pubsub.NewClient(context.Background(), projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	return &client{
		client: c,
		topics: make(map[EventType]*pubsub.Topic),
	}
}

// topic returns the cached publisher for t. Each *pubsub.Topic batches in the
// background, so one per event type is kept for the client's lifetime.
func (c *client) topic(t EventType) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if topic, ok := c.topics[t]; ok {
		return topic
	}
	topic := c.client.Topic(string(t))
	c.topics[t] = topic
	return topic
}

// SendMessage msgpack-encodes data and publishes it, waiting for the server ack.
func (c *client) SendMessage(topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}

	ctx := context.Background()
	result := c.topic(topic).Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event": string(topic)},
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("Published message", "topic", topic, "serverID", serverID, "bytes", len(payload))
	return nil
}

// ProcessMessage decodes a msgpack payload into returnValue, which must be a pointer.
func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// Close flushes pending publishes and releases the connection.
func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.topics {
		t.Stop()
	}
	c.topics = nil
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Error("Failed to close pubsub client", "error", err)
		}
	}
}
