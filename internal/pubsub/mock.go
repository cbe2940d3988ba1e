package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// MockPubSubClient stands in for Pub/Sub in tests. Published events are kept
// in memory and inbound payloads go through the same msgpack codec as the real
// client. Safe for concurrent use.
type MockPubSubClient struct {
	mu sync.Mutex

	// PublishErr, when set, is returned by every SendMessage after recording it.
	PublishErr error
	// DecodeFunc replaces the msgpack decoding in ProcessMessage.
	DecodeFunc func(data []byte, returnValue any) error

	Published []PublishedEvent
	Decoded   [][]byte
}

// PublishedEvent is one SendMessage call.
type PublishedEvent struct {
	Topic EventType
	Data  any
}

// NewMock returns an empty MockPubSubClient. projectID only mirrors New.
func NewMock(projectID string) *MockPubSubClient {
	return &MockPubSubClient{}
}

// Clear forgets everything published or decoded so far.
func (m *MockPubSubClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = nil
	m.Decoded = nil
}

// SendMessage records the event. Nothing is encoded, so tests can compare the
// payload structs directly.
func (m *MockPubSubClient) SendMessage(topic EventType, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedEvent{Topic: topic, Data: data})
	return m.PublishErr
}

func (m *MockPubSubClient) ProcessMessage(data []byte, returnValue any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decoded = append(m.Decoded, data)
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data, returnValue)
	}
	return msgpack.Unmarshal(data, returnValue)
}

// Events returns the payloads published on topic, oldest first.
func (m *MockPubSubClient) Events(topic EventType) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []any
	for _, e := range m.Published {
		if e.Topic == topic {
			out = append(out, e.Data)
		}
	}
	return out
}
