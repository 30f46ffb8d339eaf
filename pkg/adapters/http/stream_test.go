package http

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/verdant/internal/runtime"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamManager_PublishDiff(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	defer cancel()

	before := domain.NewState()
	after := runtime.Reduce(before, domain.FetchRequested{})
	sm.Publish(&domain.TransitionEvent{Event: domain.FetchRequested{}, Before: before, After: after})

	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(<-ch), &diff))
	assert.Equal(t, "fetch_requested", diff.Event)
	require.NotNil(t, diff.Loading)
	assert.True(t, *diff.Loading)
	assert.Nil(t, diff.Items)
}

func TestStreamManager_NoDiffNoMessage(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	defer cancel()

	s := domain.NewState()
	sm.Publish(&domain.TransitionEvent{Event: domain.PlantDeleted{ID: "ghost"}, Before: s, After: s.Clone()})

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %s", msg)
	default:
	}
}

func TestStreamManager_SlowClientDropsMessages(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()

	for i := 0; i < 20; i++ {
		sm.Broadcast("msg")
	}
	assert.Len(t, ch, 10)

	cancel()
	assert.Equal(t, 0, sm.Subscribers())
	cancel() // second call is a no-op
}

func TestMatchesWatch(t *testing.T) {
	yes := true
	msg := "boom"
	diff := domain.StateDiff{Loading: &yes, Error: &msg}

	assert.True(t, matchesWatch(diff, nil))
	assert.True(t, matchesWatch(diff, []string{"error"}))
	assert.True(t, matchesWatch(diff, []string{"items", "loading"}))
	assert.False(t, matchesWatch(diff, []string{"items", "wateringDays"}))
}
