package dispatch

import (
	"sort"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// moveUse is the dispatcher state for one use of a move. Phases run in
// order: announce, validity, delay, block, hits, effects, faints, terminal.
type moveUse struct {
	ev   *event.Move
	move *dex.Move

	user, target       event.Side
	attacker, defender *state.Pokemon

	moveType  dex.Type
	typeKnown bool
	release   bool // second turn of a charge move

	stopped  bool // failed, still charging or scheduled for later
	blocked  bool // protected against, missed or immune
	hits     int
	lastSub  bool // the last hit struck a substitute
	damaged  bool // at least one hit reached the Pokemon itself
	counted  bool // hit-count event seen
	multiHit bool
}

func newMoveUse(ctx *parser.Context, ev *event.Move) (parser.Parser, error) {
	if ctx.Depth > maxCallDepth {
		return nil, fault.New(fault.CodeCallDepthExceeded, "%s called at depth %d", ev.Move, ctx.Depth)
	}
	mv, err := ctx.Dex.Move(ev.Move)
	if err != nil {
		return nil, err
	}
	m := &moveUse{ev: ev, move: mv, user: ev.Side}
	_, hi := mv.Hits()
	m.multiHit = hi > 1
	return parser.Seq(
		parser.Const(parser.Require("move "+mv.Name, parser.Expect("announce", m.announce))),
		m.validity,
		m.selfDestruct,
		m.delay,
		m.block,
		m.strikes,
		m.checkHitCount,
		m.afterHits,
		m.checkRecharge,
		m.effects,
		m.faints,
		m.terminal,
	), nil
}

// ---------------------------------------------------------------------------
// announce
// ---------------------------------------------------------------------------

func (m *moveUse) announce(ctx *parser.Context, ev event.Event) (bool, error) {
	if e, ok := ev.(*event.Move); !ok || e != m.ev {
		return false, nil
	}
	attacker, err := active(ctx, m.user)
	if err != nil {
		return false, err
	}
	m.attacker = attacker
	if m.move.Target == dex.TargetNormal {
		m.target = m.ev.Target
		if !m.target.Valid() || m.target == m.user {
			m.target = m.user.Foe()
		}
		m.defender = ctx.Battle.Team(m.target).Active()
	}

	v := attacker.Volatile
	m.release = m.move.Charge && v.TwoTurn == m.move.ID
	if m.release {
		v.TwoTurn = ""
	}
	if m.ev.From.IsZero() && !m.release && !v.Transformed && m.move.ID != "struggle" {
		if err := m.spendPP(ctx); err != nil {
			return false, err
		}
	}
	v.LastMove = m.move.ID
	if !m.move.Stall {
		v.StallCount = 0
	}

	if m.move.SelfDestruct && m.defender != nil {
		damp := blockedBy(m.target, m.defender, m.user, m.attacker, func(a *dex.Ability) bool { return a.BlockSelfDestruct })
		if damp.CanHold() != inference.False {
			if err := damp.Reject(); err != nil {
				return false, err
			}
		}
	}
	m.resolveType()
	ctx.Log.WithField("side", m.user).WithField("move", m.move.ID).Debug("move used")
	return true, nil
}

func (m *moveUse) spendPP(ctx *parser.Context) error {
	slot, err := m.attacker.Moveset.Reveal(m.move)
	if err != nil {
		return err
	}
	cost := 1
	if m.defender != nil {
		pressure := abilitiesWhere(m.defender, func(a *dex.Ability) bool { return a.Pressure })
		switch {
		case len(pressure) > 0 && m.defender.Ability.SubsetOf(pressure...):
			cost = 2
		case len(pressure) > 0:
			ctx.Log.WithField("move", m.move.ID).Debug("pp cost depends on unrevealed pressure")
		}
	}
	if slot.PP -= cost; slot.PP < 0 {
		slot.PP = 0
	}
	return nil
}

// resolveType settles the move's type, which for plate and hidden-power
// moves depends on a tracker that may still be open.
func (m *moveUse) resolveType() {
	m.typeKnown = true
	m.moveType = m.move.Type
	if m.attacker == nil {
		return
	}
	switch m.move.TypeFrom {
	case "plate":
		it, ok := m.attacker.Item.DefiniteValue()
		if !ok {
			m.typeKnown = false
			return
		}
		m.moveType = plateType(it)
	case "hiddenpower":
		t, ok := m.attacker.HPType.DefiniteValue()
		if !ok {
			m.typeKnown = false
			return
		}
		m.moveType = t
	}
}

func plateType(it *dex.Item) dex.Type {
	if it.Plate != "" {
		return it.Plate
	}
	return dex.Normal
}

// narrowType keeps only the type sources whose type satisfies keep, then
// re-resolves the move type.
func (m *moveUse) narrowType(keep func(dex.Type) bool) error {
	var err error
	switch m.move.TypeFrom {
	case "plate":
		names := m.attacker.Item.Filter(func(_ string, it *dex.Item) bool { return keep(plateType(it)) })
		err = m.attacker.Item.NarrowTo(names...)
	case "hiddenpower":
		names := m.attacker.HPType.Filter(func(_ string, t dex.Type) bool { return keep(t) })
		err = m.attacker.HPType.NarrowTo(names...)
	}
	if err != nil {
		return err
	}
	m.resolveType()
	return nil
}

func (m *moveUse) effectOf(ctx *parser.Context, t dex.Type) dex.Effect {
	return dex.Bucket(ctx.Dex.Chart().Effectiveness(t, m.defender.Types()...))
}

// checkEffect verifies an observed effectiveness against the move type,
// narrowing the type source when the type is still open.
func (m *moveUse) checkEffect(ctx *parser.Context, seen dex.Effect) error {
	if !m.typeKnown {
		return m.narrowType(func(t dex.Type) bool { return m.effectOf(ctx, t) == seen })
	}
	if want := m.effectOf(ctx, m.moveType); want != seen {
		return fault.New(fault.CodeUnexpectedEvent, "%s against %v should be %s, observed %s",
			m.move.Name, m.defender.Types(), want, seen)
	}
	return nil
}

// ---------------------------------------------------------------------------
// validity, delay and block
// ---------------------------------------------------------------------------

func (m *moveUse) validity(*parser.Context) (parser.Parser, error) {
	stop := func(*parser.Context, event.Event) error {
		m.stopped = true
		return nil
	}
	return parser.OneOf(
		parser.Candidate{Name: "fail", Parser: expect("fail", func(e *event.Fail) bool {
			return (e.Side == m.user || (m.target.Valid() && e.Side == m.target)) && e.What != "unboost"
		}, func(ctx *parser.Context, e *event.Fail) error { return stop(ctx, e) })},
		parser.Candidate{Name: "no target", Parser: observe("no target", func(e *event.NoTarget) bool {
			return e.Side == m.user
		}, func(ctx *parser.Context, e *event.NoTarget) error { return stop(ctx, e) })},
	), nil
}

func (m *moveUse) selfDestruct(*parser.Context) (parser.Parser, error) {
	if m.move.SelfDestruct && !m.stopped {
		m.attacker.SetHP(0, 0)
	}
	return nil, nil
}

func (m *moveUse) delay(ctx *parser.Context) (parser.Parser, error) {
	switch {
	case m.stopped:
		return nil, nil
	case m.move.Charge && !m.release:
		return m.charge(ctx), nil
	case m.move.Future:
		return parser.Require("future move start", expect("future start", func(e *event.Start) bool {
			return e.Side == m.user && named(e.Effect, m.move.ID)
		}, func(*parser.Context, *event.Start) error {
			m.stopped = true
			return nil
		})), nil
	}
	return nil, nil
}

// charge expects the preparation turn and an optional skip through an item
// or, for solar moves, sunlight.
func (m *moveUse) charge(*parser.Context) parser.Parser {
	return parser.Seq(
		parser.Const(parser.Require("prepare", expect("prepare", func(e *event.Prepare) bool {
			return e.Side == m.user && dex.ID(e.Move) == m.move.ID
		}))),
		func(ctx *parser.Context) (parser.Parser, error) {
			if m.move.ID == "solarbeam" && ctx.Battle.Field.Weather == dex.SunnyDay {
				m.attacker.Volatile.TwoTurn = ""
				return nil, nil
			}
			return parser.Infer(itemLabel(m.user), m.attacker.Item,
				func(_ string, it *dex.Item) bool { return it.ChargeSkip },
				func(name string, _ *dex.Item) parser.Candidate {
					return parser.Candidate{
						Certain: true,
						Parser: expect("charge skip", func(e *event.EndItem) bool {
							return e.Side == m.user && dex.ID(e.Item) == name
						}, func(*parser.Context, *event.EndItem) error {
							m.attacker.Volatile.TwoTurn = ""
							return nil
						}),
					}
				}), nil
		},
		func(*parser.Context) (parser.Parser, error) {
			if m.attacker.Volatile.TwoTurn == m.move.ID {
				m.stopped = true
			}
			return nil, nil
		},
	)
}

func (m *moveUse) block(*parser.Context) (parser.Parser, error) {
	if m.stopped || m.defender == nil {
		return nil, nil
	}
	blocked := func(*parser.Context) error {
		m.blocked = true
		return nil
	}
	cands := []parser.Candidate{
		{Name: "miss", Parser: expect("miss", func(e *event.Miss) bool { return e.Side == m.user },
			func(ctx *parser.Context, _ *event.Miss) error { return blocked(ctx) })},
		{Name: "type immunity", Parser: parser.Expect("immune", m.typeImmune)},
	}
	if m.move.HasFlag("protect") {
		cands = append(cands, parser.Candidate{Name: "protect", Parser: expect("protect", func(e *event.Activate) bool {
			id := dex.ID(e.Effect.Name)
			return e.Side == m.target && (id == "protect" || id == "detect")
		}, func(ctx *parser.Context, _ *event.Activate) error { return blocked(ctx) })})
	}
	if m.move.Category == dex.Status && m.defender.Volatile.Substitute {
		cands = append(cands, parser.Candidate{Name: "substitute", Parser: expect("substitute blocks", func(e *event.Activate) bool {
			return e.Side == m.target && named(e.Effect, "substitute")
		}, func(ctx *parser.Context, _ *event.Activate) error { return blocked(ctx) })})
	}
	cands = append(cands, parser.Candidates(abilityLabel(m.target), m.defender.Ability,
		func(_ string, a *dex.Ability) bool { return m.abilityBlocks(a) },
		func(name string, a *dex.Ability) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Reasons: []inference.Reason{notMoldBreaker(m.user, m.attacker)},
				Parser:  parser.Expect("ability "+name, m.abilityAbsorb(name)),
			}
		})...)
	return parser.OneOf(cands...), nil
}

func (m *moveUse) abilityBlocks(a *dex.Ability) bool {
	if a.TypeImmunity != nil && m.typeKnown && a.TypeImmunity.Type == m.moveType {
		return true
	}
	return a.BlockFlag != "" && m.move.HasFlag(a.BlockFlag)
}

// abilityAbsorb matches the event by which an ability shows it absorbed the
// move: an immunity notice, a heal, a boost or a volatile start.
func (m *moveUse) abilityAbsorb(id string) parser.Matcher {
	return func(ctx *parser.Context, ev event.Event) (bool, error) {
		var ok bool
		switch e := ev.(type) {
		case *event.Immune:
			ok = e.Side == m.target && fromAbility(e.From, id)
		case *event.Heal:
			ok = e.Side == m.target && fromAbility(e.From, id)
		case *event.Boost:
			ok = e.Side == m.target && fromAbility(e.From, id)
		case *event.Start:
			ok = e.Side == m.target && (fromAbility(e.Effect, id) || fromAbility(e.From, id))
		}
		if !ok {
			return false, nil
		}
		if err := apply(ctx, ev); err != nil {
			return false, err
		}
		m.blocked = true
		return true, nil
	}
}

// typeImmune matches a bare immunity notice and checks that the types
// explain it.
func (m *moveUse) typeImmune(ctx *parser.Context, ev event.Event) (bool, error) {
	e, ok := ev.(*event.Immune)
	if !ok || e.Side != m.target || !e.From.IsZero() {
		return false, nil
	}
	switch {
	case m.move.Status != dex.NoStatus && m.defender.StatusImmuneByType(m.move.Status):
	case m.move.Volatile == "leechseed" && m.defender.HasType(dex.Grass):
	case !m.typeKnown:
		if err := m.narrowType(func(t dex.Type) bool { return m.effectOf(ctx, t) == dex.EffectImmune }); err != nil {
			return false, err
		}
	case m.effectOf(ctx, m.moveType) == dex.EffectImmune:
	case m.moveType == dex.Ground:
		balloon := itemsWhere(m.defender, func(it *dex.Item) bool { return it.Levitate })
		if err := hasItem(m.target, m.defender, balloon...).Assert(); err != nil {
			return false, err
		}
	default:
		return false, fault.New(fault.CodeUnexpectedEvent, "%s is not immune to %s", m.target, m.move.Name)
	}
	m.blocked = true
	return true, nil
}

// ---------------------------------------------------------------------------
// post-move bookkeeping
// ---------------------------------------------------------------------------

func (m *moveUse) landed() bool { return !m.stopped && !m.blocked }

func (m *moveUse) faints(ctx *parser.Context) (parser.Parser, error) {
	var cands []parser.Candidate
	for _, side := range []event.Side{m.user, m.target} {
		if !side.Valid() {
			continue
		}
		p := ctx.Battle.Team(side).Active()
		if p == nil || p.HP > 0 || p.Fainted {
			continue
		}
		side := side
		cands = append(cands, parser.Candidate{
			Name:   "faint " + string(side),
			Parser: expect("faint", func(e *event.Faint) bool { return e.Side == side }),
		})
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return parser.All(true, cands...), nil
}

func (m *moveUse) terminal(ctx *parser.Context) (parser.Parser, error) {
	if !m.landed() {
		return nil, nil
	}
	if m.move.SelfSwitch != "" && m.attacker.HP > 0 && (m.move.Category == dex.Status || m.hits > 0) {
		ctx.Battle.Team(m.user).Status.SelfSwitch = m.move.SelfSwitch
	}
	if m.move.Calls == "" {
		return nil, nil
	}
	return parser.Require("called move", parser.Func(m.called())), nil
}

// called hands the move it calls to a nested dispatcher.
func (m *moveUse) called() func(*parser.Context, event.Event) (parser.Outcome, error) {
	var inner parser.Parser
	return func(ctx *parser.Context, ev event.Event) (parser.Outcome, error) {
		if inner == nil {
			e, ok := ev.(*event.Move)
			if !ok || e.Side != m.user || !e.From.Is(event.FromMove) || !named(e.From, m.move.ID) {
				return parser.Decline, nil
			}
			if m.move.Calls == "sleeptalk" && !m.attacker.Volatile.Transformed {
				mv, err := ctx.Dex.Move(e.Move)
				if err != nil {
					return parser.Decline, err
				}
				if _, err := m.attacker.Moveset.Reveal(mv); err != nil {
					return parser.Decline, err
				}
			}
			p, err := newMoveUse(ctx.Nested(), e)
			if err != nil {
				return parser.Decline, err
			}
			inner = nested{inner: p}
		}
		return inner.Advance(ctx, ev)
	}
}

// sortedStats returns the stats of a boost table in protocol order.
func sortedStats(boosts map[dex.Stat]int) []dex.Stat {
	out := make([]dex.Stat, 0, len(boosts))
	for s := range boosts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return dex.StatIndex(out[i]) < dex.StatIndex(out[j]) })
	return out
}
