package dex

import (
	"errors"
	"strings"
	"testing"

	"github.com/showdown-ai/psbot/engine/fault"
)

func mustDefault(t *testing.T) *Dex {
	t.Helper()
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return d
}

func TestDefaultLoads(t *testing.T) {
	d := mustDefault(t)
	if len(d.SpeciesIDs()) == 0 {
		t.Fatal("no species loaded")
	}
	s, err := d.Species("Pelipper")
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	if s.ID != "pelipper" || len(s.Types) != 2 {
		t.Errorf("pelipper = %+v", s)
	}
	for _, a := range s.Abilities {
		if _, err := d.Ability(a); err != nil {
			t.Errorf("learnable ability %q missing: %v", a, err)
		}
	}
}

func TestLookupNormalisesNames(t *testing.T) {
	d := mustDefault(t)
	for _, name := range []string{"U-turn", "uturn", "U-Turn", "u turn"} {
		m, err := d.Move(name)
		if err != nil {
			t.Fatalf("Move(%q): %v", name, err)
		}
		if m.SelfSwitch != "switch" {
			t.Errorf("Move(%q).SelfSwitch = %q", name, m.SelfSwitch)
		}
	}
	if it, err := d.Item(""); err != nil || it.ID != NoItem {
		t.Errorf("Item(\"\") = %v, %v; want none", it, err)
	}
}

func TestUnknownLookupIsFault(t *testing.T) {
	d := mustDefault(t)
	checks := []func() error{
		func() error { _, err := d.Species("Missingno"); return err },
		func() error { _, err := d.Move("Splash Attack"); return err },
		func() error { _, err := d.Ability("Wonder Skin"); return err },
		func() error { _, err := d.Item("Master Ball"); return err },
	}
	for i, check := range checks {
		if err := check(); !errors.Is(err, fault.ErrUnknownData) {
			t.Errorf("check %d: got %v, want UNKNOWN_DATA", i, err)
		}
	}
}

func TestMoveDescriptors(t *testing.T) {
	d := mustDefault(t)
	tests := []struct {
		move  string
		check func(*Move) bool
	}{
		{"Bullet Seed", func(m *Move) bool { lo, hi := m.Hits(); return lo == 2 && hi == 5 }},
		{"Tackle", func(m *Move) bool { lo, hi := m.Hits(); return lo == 1 && hi == 1 && m.HasFlag("contact") }},
		{"Nuzzle", func(m *Move) bool {
			return m.Secondary != nil && m.Secondary.Chance == 100 && m.Secondary.Status == Paralysis
		}},
		{"Judgment", func(m *Move) bool { return m.TypeFrom == "plate" }},
		{"Solar Beam", func(m *Move) bool { return m.Charge }},
		{"Hyper Beam", func(m *Move) bool { return m.Recharge }},
		{"Future Sight", func(m *Move) bool { return m.Future }},
		{"Explosion", func(m *Move) bool { return m.SelfDestruct }},
		{"Growl", func(m *Move) bool { return m.Boosts[Atk] == -1 && m.HasFlag("sound") }},
		{"Stealth Rock", func(m *Move) bool {
			return m.Target == TargetFoe && m.SideCondition == "Stealth Rock"
		}},
		{"Earthquake", func(m *Move) bool { return m.Target == TargetNormal }},
	}
	for _, tt := range tests {
		m, err := d.Move(tt.move)
		if err != nil {
			t.Fatalf("Move(%q): %v", tt.move, err)
		}
		if !tt.check(m) {
			t.Errorf("%s descriptor mismatch: %+v", tt.move, m)
		}
	}
}

func TestAbilityPredicates(t *testing.T) {
	d := mustDefault(t)
	limber, _ := d.Ability("Limber")
	if !limber.BlocksStatus(Paralysis) || limber.BlocksStatus(Burn) {
		t.Error("limber should block only paralysis")
	}
	immunity, _ := d.Ability("Immunity")
	if !immunity.BlocksStatus(Toxic) {
		t.Error("immunity should block toxic poison")
	}
	clear, _ := d.Ability("Clear Body")
	if !clear.BlocksDrop(Spe) {
		t.Error("clear body should block every drop")
	}
	cutter, _ := d.Ability("Hyper Cutter")
	if !cutter.BlocksDrop(Atk) || cutter.BlocksDrop(Def) {
		t.Error("hyper cutter should block only attack drops")
	}
	tempo, _ := d.Ability("Own Tempo")
	if !tempo.BlocksVolatile("Confusion") {
		t.Error("own tempo should block confusion")
	}
}

func TestTypeChart(t *testing.T) {
	c := mustDefault(t).Chart()
	tests := []struct {
		atk  Type
		defs []Type
		want float64
	}{
		{Electric, []Type{Water, Flying}, 4},
		{Electric, []Type{Ground}, 0},
		{Ground, []Type{Steel, Psychic}, 2},
		{Fire, []Type{Water, Dragon}, 0.25},
		{Normal, []Type{Normal}, 1},
		{Typeless, []Type{Ghost}, 1},
	}
	for _, tt := range tests {
		if got := c.Effectiveness(tt.atk, tt.defs...); got != tt.want {
			t.Errorf("%s vs %v = %v, want %v", tt.atk, tt.defs, got, tt.want)
		}
	}
	if Bucket(c.Effectiveness(Ground, Flying)) != EffectImmune {
		t.Error("ground vs flying should be immune")
	}
	if Bucket(0.5) != EffectResisted || Bucket(4) != EffectSuper || Bucket(1) != EffectNeutral {
		t.Error("bucket mismatch")
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "moves:\n  - {name: Tackle, bogus: 1}\n"},
		{"unknown ability", "species:\n  - {name: Foo, types: [normal], abilities: [Nope]}\n"},
		{"unknown move", "species:\n  - {name: Foo, types: [normal], moves: [Nope]}\n"},
		{"bad multiplier", "types:\n  fire: {water: 3}\n"},
		{"bad type", "types:\n  shadow: {water: 2}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFractionAndID(t *testing.T) {
	if got := (Fraction{1, 8}).Of(100); got != 12 {
		t.Errorf("1/8 of 100 = %d", got)
	}
	if got := (Fraction{1, 16}).Of(10); got != 1 {
		t.Errorf("minimum of 1 not applied: %d", got)
	}
	if got := (Fraction{}).Of(100); got != 0 {
		t.Errorf("zero fraction = %d", got)
	}
	if got := ID("Heavy-Duty Boots"); got != "heavydutyboots" {
		t.Errorf("ID = %q", got)
	}
}
