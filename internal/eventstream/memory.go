package eventstream

import (
	"context"
	"sort"
	"sync"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// MemoryStream is a process-local Stream used by tests and by the
// conformance suite. It keeps the full event log in memory and tracks,
// per consumer, which event IDs remain undelivered.
type MemoryStream struct {
	mu        sync.Mutex
	log       []models.Event
	pending   map[string]map[string]struct{}
	consumers map[string]struct{}
}

// NewMemory returns an empty MemoryStream with no subscribed consumers.
// Callers must Subscribe each consumer before it can Receive.
func NewMemory() *MemoryStream {
	return &MemoryStream{
		pending:   make(map[string]map[string]struct{}),
		consumers: make(map[string]struct{}),
	}
}

func (s *MemoryStream) Subscribe(ctx context.Context, consumerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.consumers[consumerID]; ok {
		return nil
	}
	s.consumers[consumerID] = struct{}{}

	set := make(map[string]struct{}, len(s.log))
	for _, e := range s.log {
		set[e.ID] = struct{}{}
	}
	s.pending[consumerID] = set
	return nil
}

func (s *MemoryStream) Send(ctx context.Context, tx any, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = append(s.log, event)
	for c := range s.consumers {
		s.pending[c][event.ID] = struct{}{}
	}
	return nil
}

func (s *MemoryStream) Receive(ctx context.Context, consumerID string, maxN int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[consumerID]
	if !ok {
		return nil, ErrUnknownConsumer
	}

	out := make([]models.Event, 0, len(pending))
	for _, e := range s.log {
		if _, due := pending[e.ID]; due {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > maxN {
		out = out[:maxN]
	}
	return out, nil
}

func (s *MemoryStream) Delete(ctx context.Context, consumerID string, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[consumerID]
	if !ok {
		return ErrUnknownConsumer
	}
	delete(pending, eventID)
	return nil
}
