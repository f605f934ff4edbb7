package inference

import (
	"errors"
	"reflect"
	"testing"

	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/possibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(names ...string) *possibility.Tracker[struct{}] {
	data := make(map[string]struct{}, len(names))
	for _, n := range names {
		data[n] = struct{}{}
	}
	return possibility.New(data)
}

func TestHasAssertReject(t *testing.T) {
	ability := newTracker("drizzle", "drought", "damp")

	r := Has("ability", ability, "drizzle")
	assert.Equal(t, Unknown, r.CanHold())
	require.NoError(t, r.Assert())
	assert.Equal(t, []string{"drizzle"}, ability.Possible())
	assert.Equal(t, True, r.CanHold())

	item := newTracker("leftovers", "lifeorb", "none")
	require.NoError(t, Has("item", item, "none").Reject())
	assert.Equal(t, []string{"leftovers", "lifeorb"}, item.Possible())
}

func TestHasDelay(t *testing.T) {
	ability := newTracker("limber", "static", "damp")
	var got []bool
	_, err := Has("ability", ability, "limber").Delay(func(held bool) error {
		got = append(got, held)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, ability.Remove("damp"))
	assert.Empty(t, got)
	require.NoError(t, ability.Remove("static"))
	assert.Equal(t, []bool{true}, got)
}

func TestNotSwapsCommit(t *testing.T) {
	item := newTracker("heavydutyboots", "leftovers")
	require.NoError(t, Not(Has("item", item, "heavydutyboots")).Assert())
	assert.Equal(t, []string{"leftovers"}, item.Possible())
	assert.Equal(t, False, Not(Has("item", item, "leftovers")).CanHold())
}

func TestAndAssertAssertsEveryMember(t *testing.T) {
	ability := newTracker("roughskin", "sandveil")
	item := newTracker("rockyhelmet", "leftovers")
	r := And(Has("ability", ability, "roughskin"), Has("item", item, "rockyhelmet"))
	require.NoError(t, r.Assert())
	assert.Equal(t, []string{"roughskin"}, ability.Possible())
	assert.Equal(t, []string{"rockyhelmet"}, item.Possible())
	assert.Equal(t, True, r.CanHold())
}

func TestAndRejectSingleUncertainMember(t *testing.T) {
	ability := newTracker("roughskin")
	item := newTracker("rockyhelmet", "leftovers")
	r := And(Has("ability", ability, "roughskin"), Has("item", item, "rockyhelmet"))
	require.NoError(t, r.Reject())
	assert.Equal(t, []string{"roughskin"}, ability.Possible(), "certain member must not be touched")
	assert.Equal(t, []string{"leftovers"}, item.Possible())
}

func TestAndRejectDeferredUntilCulpritKnown(t *testing.T) {
	ability := newTracker("magicguard", "sturdy")
	item := newTracker("heavydutyboots", "leftovers")
	r := And(Not(Has("item", item, "heavydutyboots")), Not(Has("ability", ability, "magicguard")))

	// Either attribute could explain the observation: nothing is committed.
	require.NoError(t, r.Reject())
	assert.Equal(t, []string{"magicguard", "sturdy"}, ability.Possible())
	assert.Equal(t, []string{"heavydutyboots", "leftovers"}, item.Possible())

	// Learning the item is not boots makes magic guard the only explanation.
	require.NoError(t, item.NarrowTo("leftovers"))
	assert.Equal(t, []string{"magicguard"}, ability.Possible())
}

func TestAndRejectAllHoldIsFault(t *testing.T) {
	r := And(Const(true), Const(true))
	err := r.Reject()
	assert.True(t, errors.Is(err, fault.ErrEmptyCandidates), "got %v", err)
}

func TestAndDelay(t *testing.T) {
	tests := []struct {
		name   string
		narrow func(a, b *possibility.Tracker[struct{}]) error
		want   []bool
	}{
		{
			name: "all members hold",
			narrow: func(a, b *possibility.Tracker[struct{}]) error {
				if err := a.NarrowTo("x"); err != nil {
					return err
				}
				return b.NarrowTo("y")
			},
			want: []bool{true},
		},
		{
			name:   "first refutation wins",
			narrow: func(a, b *possibility.Tracker[struct{}]) error { return b.Remove("y") },
			want:   []bool{false},
		},
		{
			name:   "partial resolution waits",
			narrow: func(a, b *possibility.Tracker[struct{}]) error { return a.NarrowTo("x") },
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTracker("x", "z")
			b := newTracker("y", "w")
			var got []bool
			_, err := And(Has("a", a, "x"), Has("b", b, "y")).Delay(func(held bool) error {
				got = append(got, held)
				return nil
			})
			require.NoError(t, err)
			require.NoError(t, tt.narrow(a, b))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("delay results = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrAssert(t *testing.T) {
	ability := newTracker("levitate", "sandveil")
	item := newTracker("airballoon", "leftovers")
	r := Or(Has("ability", ability, "levitate"), Has("item", item, "airballoon"))

	require.NoError(t, r.Assert())
	assert.Equal(t, 2, ability.Size())
	assert.Equal(t, 2, item.Size())

	require.NoError(t, ability.Remove("levitate"))
	assert.Equal(t, []string{"airballoon"}, item.Possible())
}

func TestOrReject(t *testing.T) {
	ability := newTracker("levitate", "sandveil")
	item := newTracker("airballoon", "leftovers")
	require.NoError(t, Or(Has("ability", ability, "levitate"), Has("item", item, "airballoon")).Reject())
	assert.Equal(t, []string{"sandveil"}, ability.Possible())
	assert.Equal(t, []string{"leftovers"}, item.Possible())
}

func TestChanceCarriesNoInformation(t *testing.T) {
	r := Chance("30% paralysis")
	assert.Equal(t, Unknown, r.CanHold())
	require.NoError(t, r.Assert())
	require.NoError(t, r.Reject())
	fired := false
	_, err := r.Delay(func(bool) error { fired = true; return nil })
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestConst(t *testing.T) {
	assert.Error(t, Const(false).Assert())
	assert.NoError(t, Const(false).Reject())
	assert.Error(t, Const(true).Reject())
	var got *bool
	_, err := Const(true).Delay(func(held bool) error { got = &held; return nil })
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)
}
