package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/freeeve/hexboard/internal/model"
	"github.com/freeeve/hexboard/internal/repository"
)

type mockCache struct {
	mu        sync.Mutex
	snapshots map[string]json.RawMessage
	routes    map[string][]model.RouteScore
	gets      int
}

func newMockCache() *mockCache {
	return &mockCache{
		snapshots: make(map[string]json.RawMessage),
		routes:    make(map[string][]model.RouteScore),
	}
}

func (m *mockCache) SetSnapshot(_ context.Context, gameID string, snapshot json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[gameID] = snapshot
	return nil
}

func (m *mockCache) GetSnapshot(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.snapshots[gameID], nil
}

func (m *mockCache) SetRouteLengths(_ context.Context, gameID string, scores []model.RouteScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[gameID] = scores
	return nil
}

func (m *mockCache) RouteLeaders(_ context.Context, gameID string) ([]model.RouteScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routes[gameID], nil
}

func (m *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, gameID)
	delete(m.routes, gameID)
	return nil
}

func (m *mockCache) cached(gameID string) (cachedBoard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.snapshots[gameID]
	if !ok {
		return cachedBoard{}, false
	}
	var cb cachedBoard
	if err := json.Unmarshal(data, &cb); err != nil {
		return cachedBoard{}, false
	}
	return cb, true
}

var errAppend = errors.New("disk full")

// flakyEventRepo wraps an EventRepository, counting replays and failing
// appends on demand.
type flakyEventRepo struct {
	repository.EventRepository
	failAppend bool
	listCalls  int
}

func (f *flakyEventRepo) Append(ctx context.Context, ev model.PieceEvent) error {
	if f.failAppend {
		return errAppend
	}
	return f.EventRepository.Append(ctx, ev)
}

func (f *flakyEventRepo) ListByGame(ctx context.Context, gameID string) ([]model.PieceEvent, error) {
	f.listCalls++
	return f.EventRepository.ListByGame(ctx, gameID)
}

// flakyGameRepo wraps a GameRepository and fails phase updates on demand.
type flakyGameRepo struct {
	repository.GameRepository
	failUpdate bool
}

var errUpdate = errors.New("connection reset")

func (f *flakyGameRepo) UpdatePhase(ctx context.Context, id, phase string) error {
	if f.failUpdate {
		return errUpdate
	}
	return f.GameRepository.UpdatePhase(ctx, id, phase)
}

type recordedEvent struct {
	gameID    string
	eventType string
	data      any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *mockBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{gameID, eventType, data})
}

func (m *mockBroadcaster) count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
