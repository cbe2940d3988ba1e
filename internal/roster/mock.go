package roster

import (
	"context"
	"fmt"
	"sync"
)

var _ Directory = (*Mock)(nil)

// Mock is an in-memory Directory for testing. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	Members map[string]Member
	Labels  map[string][]string

	// TeamLabelsFunc overrides Labels when set.
	TeamLabelsFunc func(ctx context.Context, externalID string) ([]string, error)

	ResolveCalls    []string
	TeamLabelsCalls []string
}

// NewMock creates an empty mock directory.
func NewMock() *Mock {
	return &Mock{
		Members: make(map[string]Member),
		Labels:  make(map[string][]string),
	}
}

// Add registers a member and its team labels.
func (m *Mock) Add(member Member, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Members[member.ExternalID] = member
	m.Labels[member.ExternalID] = labels
}

func (m *Mock) Resolve(ctx context.Context, handle string) (Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls = append(m.ResolveCalls, handle)
	member, ok := m.Members[ParseHandle(handle)]
	if !ok {
		return Member{}, fmt.Errorf("%w: %s", ErrUnknownMember, handle)
	}
	return member, nil
}

func (m *Mock) TeamLabels(ctx context.Context, externalID string) ([]string, error) {
	m.mu.Lock()
	m.TeamLabelsCalls = append(m.TeamLabelsCalls, externalID)
	fn := m.TeamLabelsFunc
	labels := m.Labels[externalID]
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, externalID)
	}
	return labels, nil
}
