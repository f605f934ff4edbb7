// internal/battle/session_test.go
package battle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/service/internal/config"
)

// mockPublisher records every envelope it receives.
type mockPublisher struct {
	mu   sync.Mutex
	envs []Envelope
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envs = append(m.envs, env)
	return m.err
}

func (m *mockPublisher) Envelopes() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Envelope(nil), m.envs...)
}

func newSession(t *testing.T, cfg config.Config, opts ...Option) *Session {
	t.Helper()
	d, err := dex.Default()
	require.NoError(t, err)
	return New(cfg, d, opts...)
}

func TestSessionPublishesEachEvent(t *testing.T) {
	pub := &mockPublisher{}
	id := uuid.New()
	s := newSession(t, config.Config{}, WithPublisher(pub), WithID(id))
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, &event.Init{Perspective: event.P1, TeamSize: [2]int{2, 2}}))
	require.NoError(t, s.Handle(ctx, &event.Switch{Side: event.P1, Species: "Snorlax", HP: 100, MaxHP: 100}))
	require.NoError(t, s.Handle(ctx, &event.Switch{Side: event.P2, Species: "Persian", HP: 100, MaxHP: 100}))
	require.NoError(t, s.Handle(ctx, &event.Turn{Number: 1}))

	envs := pub.Envelopes()
	require.Len(t, envs, 4)
	for i, env := range envs {
		assert.Equal(t, id, env.Battle)
		assert.Equal(t, i+1, env.Seq)
	}
	assert.Equal(t, event.KindTurn, envs[3].Kind)
	assert.Equal(t, 1, envs[3].Snapshot.Turn)
	assert.Equal(t, "p1", envs[3].Snapshot.Perspective)
	assert.Equal(t, 4, s.Seq())
}

func TestSessionPerspectiveFromConfig(t *testing.T) {
	s := newSession(t, config.Config{Perspective: "p2"})
	require.NoError(t, s.Handle(context.Background(), &event.Init{TeamSize: [2]int{1, 1}}))
	assert.Equal(t, "p2", s.Snapshot().Perspective)
	assert.Equal(t, event.P2, s.Side)
}

func TestSessionPublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{err: errors.New("redis down")}
	s := newSession(t, config.Config{}, WithPublisher(pub))

	require.NoError(t, s.Handle(context.Background(), &event.Turn{Number: 1}))
	require.NoError(t, s.Handle(context.Background(), &event.Turn{Number: 2}))
	assert.Len(t, pub.Envelopes(), 2)
	assert.NoError(t, s.Err())
}

func TestSessionAbortStopsPublishing(t *testing.T) {
	pub := &mockPublisher{}
	s := newSession(t, config.Config{}, WithPublisher(pub))
	ctx := context.Background()

	err := s.Handle(ctx, &event.Crit{Side: event.P1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrUnexpectedEvent))
	assert.True(t, s.Over())

	assert.Equal(t, err, s.Handle(ctx, &event.Turn{Number: 1}))
	assert.Equal(t, err, s.Close())
	assert.Empty(t, pub.Envelopes())
}

func TestSessionWinEndsBattle(t *testing.T) {
	s := newSession(t, config.Config{})
	require.NoError(t, s.Handle(context.Background(), &event.Win{Side: event.P2}))
	assert.True(t, s.Over())
	assert.True(t, s.Snapshot().Over)
	require.NoError(t, s.Close())
}

func TestSessionCloseResolvesPending(t *testing.T) {
	s := newSession(t, config.Config{})
	require.NoError(t, s.Handle(context.Background(), &event.Switch{Side: event.P1, Species: "Pelipper", HP: 100, MaxHP: 100}))
	assert.False(t, s.Over())
	require.NoError(t, s.Close())
	assert.True(t, s.Over())
}

func TestSessionCancelledContext(t *testing.T) {
	s := newSession(t, config.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Handle(ctx, &event.Turn{Number: 1}), context.Canceled)
	assert.Equal(t, 0, s.Seq())
}
