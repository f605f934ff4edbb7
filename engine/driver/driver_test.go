package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/state"
)

func newDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := dex.Default()
	require.NoError(t, err)
	return New(state.New(d, state.DefaultRules()), nil)
}

func TestHandleCountsEvents(t *testing.T) {
	drv := newDriver(t)
	require.NoError(t, drv.Handle(&event.Init{Perspective: event.P1, TeamSize: [2]int{3, 3}}))
	require.NoError(t, drv.Handle(&event.Switch{Side: event.P1, Species: "Snorlax", HP: 100, MaxHP: 100}))
	require.NoError(t, drv.Handle(&event.Switch{Side: event.P2, Species: "Persian", HP: 100, MaxHP: 100}))
	require.NoError(t, drv.Handle(&event.Turn{Number: 1}))

	assert.Equal(t, 4, drv.Events())
	assert.Equal(t, 1, drv.Battle().Turn)
	assert.Equal(t, 3, drv.Battle().Team(event.P2).Size)
	assert.NoError(t, drv.Err())
}

func TestFaultPoisonsDriver(t *testing.T) {
	drv := newDriver(t)
	err := drv.Handle(&event.Crit{Side: event.P1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrUnexpectedEvent), "got %v", err)

	assert.Equal(t, err, drv.Handle(&event.Turn{Number: 1}))
	assert.Equal(t, err, drv.Flush())
	assert.Equal(t, err, drv.Err())
	assert.Equal(t, 0, drv.Events())
}

func TestFlushRefutesPendingEffects(t *testing.T) {
	drv := newDriver(t)
	require.NoError(t, drv.Handle(&event.Switch{Side: event.P1, Species: "Pelipper", HP: 100, MaxHP: 100}))
	require.NoError(t, drv.Flush())

	// Drizzle always announces itself on entry.
	p := drv.Battle().Team(event.P1).Active()
	assert.False(t, p.Ability.Has("drizzle"))
	assert.False(t, p.Item.Has("airballoon"))
	assert.NoError(t, drv.Flush())
}

func TestSnapshotIsCopy(t *testing.T) {
	drv := newDriver(t)
	require.NoError(t, drv.Handle(&event.Switch{Side: event.P1, Species: "Snorlax", HP: 100, MaxHP: 100}))
	snap := drv.Snapshot()
	require.NoError(t, drv.Handle(&event.Damage{Side: event.P1, HP: 40, MaxHP: 100, From: event.Effect{Name: "Stealth Rock"}}))

	assert.Equal(t, 100, snap.Teams[0].Pokemon[0].HP)
	assert.Equal(t, 40, drv.Snapshot().Teams[0].Pokemon[0].HP)
}
