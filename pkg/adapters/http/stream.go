package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
)

// StreamManager handles active SSE connections.
// It is fed by the catalog through the lifecycle hook returned by Hooks.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager with no subscribers.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Hooks returns lifecycle hooks that broadcast the diff of every transition.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, te *domain.TransitionEvent) {
			sm.Publish(te)
		},
	}
}

// Publish broadcasts the diff produced by te, if any.
func (sm *StreamManager) Publish(te *domain.TransitionEvent) {
	diff := domain.Diff(&te.Before, &te.After)
	if diff == nil {
		return
	}
	diff.Event = te.Event.Name()

	payload, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("StreamManager: failed to encode diff", "event", diff.Event, "err", err)
		return
	}
	sm.Broadcast(string(payload))
}

// Subscribe registers a client channel. The returned func unsubscribes and closes it.
func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers reports the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber, dropping it for clients whose buffer is full.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "subscribers", len(sm.subscribers), "payload_size", len(msg))

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// matchesWatch reports whether the diff touches any of the watched fields.
// An empty watch list matches everything.
func matchesWatch(diff domain.StateDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		switch field {
		case "items":
			if diff.Items != nil {
				return true
			}
		case "loading":
			if diff.Loading != nil {
				return true
			}
		case "adding":
			if diff.Adding != nil {
				return true
			}
		case "error":
			if diff.Error != nil {
				return true
			}
		case "pending", "pendingEnrichmentId":
			if diff.PendingEnrichmentID != nil {
				return true
			}
		case "wateringDays":
			if len(diff.WateringDays) > 0 {
				return true
			}
		}
	}
	return false
}
