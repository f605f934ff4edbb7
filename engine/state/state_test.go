package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
)

func newBattle(t *testing.T) *Battle {
	t.Helper()
	d, err := dex.Default()
	if err != nil {
		t.Fatalf("dex.Default: %v", err)
	}
	return New(d, DefaultRules())
}

func switchIn(t *testing.T, b *Battle, side event.Side, species string) *Pokemon {
	t.Helper()
	p, err := b.Switch(side, species, 100, 100, 100)
	if err != nil {
		t.Fatalf("Switch(%s, %s): %v", side, species, err)
	}
	return p
}

func moveset(t *testing.T, size int, ids ...string) *Moveset {
	t.Helper()
	d, _ := dex.Default()
	pool, err := d.Moves(ids...)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	return NewMoveset(size, pool)
}

func mustMove(t *testing.T, id string) *dex.Move {
	t.Helper()
	d, _ := dex.Default()
	m, err := d.Move(id)
	if err != nil {
		t.Fatalf("Move(%s): %v", id, err)
	}
	return m
}

func TestNewPokemonSeedsTrackers(t *testing.T) {
	b := newBattle(t)
	p := switchIn(t, b, event.P2, "Pelipper")

	if got := p.Ability.Possible(); !reflect.DeepEqual(got, []string{"drizzle", "keeneye", "raindish"}) {
		t.Errorf("abilities = %v", got)
	}
	if !p.Item.Has(dex.NoItem) || p.Item.Size() < 10 {
		t.Errorf("item tracker should include none and the full item table, got %d", p.Item.Size())
	}
	if p.HPType.Has("normal") || !p.HPType.Has("fire") {
		t.Error("hidden power types should exclude normal")
	}
	if !p.Active() || b.Team(event.P2).Active() != p {
		t.Error("switched-in pokemon should be active")
	}
	if len(p.Moveset.Moves) != 0 || len(p.Moveset.Pool()) != 8 {
		t.Errorf("moveset = %v / %v", p.Moveset.Moves, p.Moveset.Pool())
	}
}

func TestSwitchReordersAndClearsVolatile(t *testing.T) {
	b := newBattle(t)
	first := switchIn(t, b, event.P1, "Garchomp")
	first.Volatile.ApplyBoost(dex.Atk, 2, 6)
	second := switchIn(t, b, event.P1, "Ferrothorn")

	team := b.Team(event.P1)
	if team.Pokemon[0] != second || team.Pokemon[1] != first {
		t.Fatal("active pokemon should move to slot 0")
	}
	if first.Volatile != nil {
		t.Error("switched-out pokemon should lose its volatile status")
	}
	back := switchIn(t, b, event.P1, "Garchomp")
	if back != first || back.Volatile.Boost(dex.Atk) != 0 {
		t.Error("returning pokemon should be the same entity with cleared boosts")
	}
	if team.Unrevealed() != 4 {
		t.Errorf("unrevealed = %d, want 4", team.Unrevealed())
	}
}

func TestBatonPassCopiesBoosts(t *testing.T) {
	b := newBattle(t)
	p := switchIn(t, b, event.P1, "Drifblim")
	p.Volatile.ApplyBoost(dex.SpA, 2, 6)
	p.Volatile.Substitute = true
	p.Volatile.Taunt = 2
	b.Team(event.P1).Status.SelfSwitch = "copyvolatile"

	next := switchIn(t, b, event.P1, "Gengar")
	if next.Volatile.Boost(dex.SpA) != 2 || !next.Volatile.Substitute {
		t.Error("baton pass should copy boosts and substitute")
	}
	if next.Volatile.Taunt != 0 {
		t.Error("baton pass should not copy taunt")
	}
	if b.Team(event.P1).Status.SelfSwitch != "" {
		t.Error("self switch should be consumed")
	}
}

func TestSwitchFullTeamIsFault(t *testing.T) {
	b := newBattle(t)
	if err := b.Team(event.P1).SetSize(1, b.Rules); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	switchIn(t, b, event.P1, "Garchomp")
	_, err := b.Switch(event.P1, "Ferrothorn", 100, 100, 100)
	if !errors.Is(err, fault.ErrInvalidState) {
		t.Fatalf("got %v, want INVALID_STATE", err)
	}
	if _, err := b.Active(event.Side("p3")); !errors.Is(err, fault.ErrInvalidState) {
		t.Fatalf("got %v, want INVALID_STATE for bad side", err)
	}
}

func TestRemoveItemRecordsLastItem(t *testing.T) {
	b := newBattle(t)
	p := switchIn(t, b, event.P2, "Bronzong")
	if err := p.RemoveItem(b.Dex, "Air Balloon"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if p.LastItem != "airballoon" {
		t.Errorf("LastItem = %q", p.LastItem)
	}
	if name, ok := p.Item.Definite(); !ok || name != dex.NoItem {
		t.Errorf("item = %v, want none", p.Item)
	}
}

func TestMovesetRevealFillsSlots(t *testing.T) {
	ms := moveset(t, 4, "Tackle", "Growl", "Body Slam", "Quick Attack", "Screech", "Taunt")
	if _, err := ms.Reveal(mustMove(t, "Tackle")); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if s, ok := ms.Slot("tackle"); !ok || s.PP != 35 {
		t.Fatalf("slot = %+v", s)
	}
	if !ms.CanHave("tackle") || contains(ms.Pool(), "tackle") {
		t.Error("revealed move should leave the pool")
	}
	// Revealing twice is idempotent.
	if _, err := ms.Reveal(mustMove(t, "Tackle")); err != nil || len(ms.Moves) != 1 {
		t.Fatalf("second reveal changed slots: %v", err)
	}
}

func TestMovesetPoolFitsRemainingSlots(t *testing.T) {
	ms := moveset(t, 4, "Tackle", "Growl", "Body Slam", "Quick Attack", "Screech")
	if err := ms.RuleOut("Screech"); err != nil {
		t.Fatalf("RuleOut: %v", err)
	}
	if len(ms.Moves) != 4 || len(ms.Pool()) != 0 {
		t.Fatalf("expected auto-reveal, moves=%d pool=%v", len(ms.Moves), ms.Pool())
	}
	if _, err := ms.Reveal(mustMove(t, "Screech")); !errors.Is(err, fault.ErrEmptyCandidates) {
		t.Fatalf("fifth move: got %v, want EMPTY_CANDIDATES", err)
	}
	if err := ms.RuleOut("Tackle"); !errors.Is(err, fault.ErrEmptyCandidates) {
		t.Fatalf("rule out revealed: got %v", err)
	}
}

func TestMovesetHints(t *testing.T) {
	ms := moveset(t, 4, "Tackle", "Growl", "Body Slam", "Quick Attack", "Screech", "Taunt")
	if err := ms.AddHint("Growl", "Screech"); err != nil {
		t.Fatalf("AddHint: %v", err)
	}
	if len(ms.Hints()) != 1 {
		t.Fatalf("hints = %v", ms.Hints())
	}
	// Ruling out one member leaves a single candidate which must be revealed.
	if err := ms.RuleOut("Screech"); err != nil {
		t.Fatalf("RuleOut: %v", err)
	}
	if _, ok := ms.Slot("growl"); !ok {
		t.Fatal("single-member hint should reveal growl")
	}
	if len(ms.Hints()) != 0 {
		t.Errorf("satisfied hint should be discarded: %v", ms.Hints())
	}
	if err := ms.AddHint("Tackle", "Growl"); err != nil || len(ms.Hints()) != 0 {
		t.Errorf("hint already satisfied by a revealed move should be dropped: %v", ms.Hints())
	}
	if err := ms.AddHint("Swords Dance"); !errors.Is(err, fault.ErrEmptyCandidates) {
		t.Errorf("impossible hint: got %v", err)
	}
}

func TestMovesetFailedUpdateLeavesStateUnchanged(t *testing.T) {
	ms := moveset(t, 2, "Tackle", "Growl", "Screech", "Taunt")
	if _, err := ms.Reveal(mustMove(t, "Tackle")); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if err := ms.AddHint("Growl", "Screech"); err != nil {
		t.Fatalf("AddHint: %v", err)
	}
	if err := ms.AddHint("Screech", "Taunt"); err != nil {
		t.Fatalf("AddHint: %v", err)
	}
	wantPool, wantHints := ms.Pool(), ms.Hints()

	// Growl and Taunt would both need the one free slot.
	if err := ms.RuleOut("Screech"); !errors.Is(err, fault.ErrEmptyCandidates) {
		t.Fatalf("RuleOut: got %v, want EMPTY_CANDIDATES", err)
	}
	if len(ms.Moves) != 1 {
		t.Errorf("moves = %d, want the single revealed move", len(ms.Moves))
	}
	if !reflect.DeepEqual(ms.Pool(), wantPool) || !reflect.DeepEqual(ms.Hints(), wantHints) {
		t.Errorf("pool %v hints %v, want %v %v", ms.Pool(), ms.Hints(), wantPool, wantHints)
	}

	if err := ms.RuleOut("Growl", "Screech"); !errors.Is(err, fault.ErrEmptyCandidates) {
		t.Fatalf("RuleOut: got %v, want EMPTY_CANDIDATES", err)
	}
	if !reflect.DeepEqual(ms.Pool(), wantPool) {
		t.Errorf("pool %v, want %v", ms.Pool(), wantPool)
	}
}

func TestBoostClamp(t *testing.T) {
	v := NewVolatile()
	tests := []struct {
		amount, want, stage int
	}{
		{2, 2, 2},
		{6, 4, 6},
		{1, 0, 6},
		{-12, -12, -6},
	}
	for _, tt := range tests {
		if got := v.ApplyBoost(dex.Atk, tt.amount, 6); got != tt.want || v.Boost(dex.Atk) != tt.stage {
			t.Errorf("ApplyBoost(%d) = %d stage %d, want %d stage %d", tt.amount, got, v.Boost(dex.Atk), tt.want, tt.stage)
		}
	}
	if v.CanBoost(dex.Atk, -1, 6) || !v.CanBoost(dex.Atk, 1, 6) {
		t.Error("CanBoost mismatch at -6")
	}
	v.ClearNegativeBoosts()
	if v.Boost(dex.Atk) != 0 {
		t.Error("negative boosts should clear")
	}
}

func TestSideConditionLayers(t *testing.T) {
	rules := DefaultRules()
	s := newTeamStatus()
	for i := 0; i < 3; i++ {
		if err := s.Start(rules, "Spikes"); err != nil {
			t.Fatalf("spikes layer %d: %v", i+1, err)
		}
	}
	if err := s.Start(rules, "Spikes"); !errors.Is(err, fault.ErrInvalidState) {
		t.Fatalf("fourth layer: got %v", err)
	}
	if err := s.Start(rules, "Reflect"); err != nil || !s.Has("reflect") {
		t.Fatalf("reflect: %v", err)
	}
	for i := 0; i < 5; i++ {
		s.endTurn()
	}
	if s.Has("reflect") {
		t.Error("reflect should expire after five turns")
	}
	s.End("Spikes")
	if s.HasHazards() {
		t.Error("hazards should be cleared")
	}
}

func TestUpkeepAdvancesCounters(t *testing.T) {
	b := newBattle(t)
	p := switchIn(t, b, event.P1, "Persian")
	p.Volatile.Taunt = 3
	p.SetStatus(dex.Sleep)
	b.Field.SetWeather(dex.RainDance)
	b.Field.Start("Trick Room")

	b.Upkeep()
	if p.Volatile.Taunt != 2 || p.StatusTurns != 1 {
		t.Errorf("taunt=%d sleep=%d", p.Volatile.Taunt, p.StatusTurns)
	}
	if b.Field.WeatherTurns != 1 || b.Field.TrickRoom != 4 {
		t.Errorf("field = %+v", b.Field)
	}
	b.Field.SetWeather("none")
	if b.Field.Weather != "" {
		t.Error("weather none should clear")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	b := newBattle(t)
	p := switchIn(t, b, event.P2, "Pelipper")
	if err := b.Team(event.P2).Status.Start(b.Rules, "Reflect"); err != nil {
		t.Fatal(err)
	}
	before := b.Snapshot()
	again := b.Snapshot()
	if !reflect.DeepEqual(before, again) {
		t.Fatal("snapshots of unchanged state differ")
	}

	if err := p.SetAbility("Drizzle"); err != nil {
		t.Fatal(err)
	}
	p.Volatile.ApplyBoost(dex.Def, 1, 6)
	b.Team(event.P2).Status.Screens["reflect"] = 1

	if len(before.Teams[1].Pokemon[0].Abilities) != 3 {
		t.Error("snapshot abilities changed after narrowing")
	}
	if before.Teams[1].Pokemon[0].Volatile.Boosts != nil {
		t.Error("snapshot boosts changed")
	}
	if before.Teams[1].Screens["reflect"] != 5 {
		t.Error("snapshot screens aliased live state")
	}
	after := b.Snapshot()
	if after.Teams[1].Pokemon[0].Volatile.Boosts["def"] != 1 {
		t.Errorf("after boosts = %v", after.Teams[1].Pokemon[0].Volatile.Boosts)
	}
}
