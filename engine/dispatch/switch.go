package dispatch

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// switchIn is the dispatcher state for a switch-in and, when both sides are
// replacing at once, the simultaneous switch-in on the other side.
type switchIn struct {
	ev       *event.Switch
	entrants []event.Side
}

func newSwitchIn(ev *event.Switch) parser.Parser {
	s := &switchIn{ev: ev}
	return parser.Seq(
		parser.Const(parser.Require("switch", parser.Expect("switch", s.enter))),
		s.companion,
		s.entryEffects,
	)
}

// replacing reports whether side is filling an empty or fainted slot.
func replacing(b *state.Battle, side event.Side) bool {
	p := b.Team(side).Active()
	return p == nil || p.Fainted
}

func (s *switchIn) enter(ctx *parser.Context, ev event.Event) (bool, error) {
	if e, ok := ev.(*event.Switch); !ok || e != s.ev {
		return false, nil
	}
	if err := apply(ctx, ev); err != nil {
		return false, err
	}
	s.entrants = []event.Side{s.ev.Side}
	ctx.Log.WithField("side", s.ev.Side).WithField("species", s.ev.Species).Debug("switch in")
	return true, nil
}

// companion accepts the other side's switch-in when both are filling a slot
// at the same time, as at the start of the battle or after a double faint.
// Their entry effects resolve together.
func (s *switchIn) companion(ctx *parser.Context) (parser.Parser, error) {
	foe := s.ev.Side.Foe()
	if !replacing(ctx.Battle, foe) {
		return nil, nil
	}
	return parser.Expect("companion switch", func(ctx *parser.Context, ev event.Event) (bool, error) {
		e, ok := ev.(*event.Switch)
		if !ok || e.Side != foe || !replacing(ctx.Battle, foe) {
			return false, nil
		}
		if err := apply(ctx, e); err != nil {
			return false, err
		}
		s.entrants = append(s.entrants, foe)
		return true, nil
	}), nil
}

// entryEffects collects, in any order, everything switching in can trigger:
// entry hazards, switch-in abilities and announced items.
func (s *switchIn) entryEffects(ctx *parser.Context) (parser.Parser, error) {
	var cands []parser.Candidate
	for _, side := range s.entrants {
		p, err := active(ctx, side)
		if err != nil {
			return nil, err
		}
		cands = append(cands, hazards(ctx, side, p)...)
		cands = append(cands, entryAbilities(ctx, side, p)...)
		cands = append(cands, entryItems(side, p)...)
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return parser.All(false, cands...), nil
}

// alive holds while p has HP left. It is read when committed, so a Pokemon
// knocked out before an expected effect releases that effect. Asserting it
// never fails: the accepted event may itself be the one that knocked p out.
type alive struct {
	side event.Side
	p    *state.Pokemon
}

func (a alive) CanHold() inference.Truth {
	if a.p.HP > 0 && !a.p.Fainted {
		return inference.True
	}
	return inference.False
}

func (a alive) Assert() error { return nil }

func (a alive) Reject() error {
	if a.CanHold() == inference.True {
		return fault.New(fault.CodeInvalidState, "%s is still standing", a.side)
	}
	return nil
}

func (a alive) Delay(cb inference.DelayFunc) (func(), error) {
	return func() {}, cb(a.CanHold() == inference.True)
}

func (a alive) String() string { return string(a.side) + " alive" }

func noBoots(side event.Side, p *state.Pokemon) inference.Reason {
	return lacksItem(side, p, func(it *dex.Item) bool { return it.HazardImmune })
}

// hazards lists the entry hazards on side that affect p.
func hazards(ctx *parser.Context, side event.Side, p *state.Pokemon) []parser.Candidate {
	ts := ctx.Battle.Team(side).Status
	up := alive{side: side, p: p}
	grounded := !p.HasType(dex.Flying)
	hazardDamage := func(name string) parser.Parser {
		id := dex.ID(name)
		return expect(name, func(e *event.Damage) bool {
			return e.Side == side && dex.ID(e.From.Name) == id
		})
	}
	var cands []parser.Candidate
	if ts.StealthRock {
		cands = append(cands, parser.Candidate{
			Name:    string(side) + " stealth rock",
			Certain: true,
			Reasons: []inference.Reason{up, noBoots(side, p), notMagicGuard(side, p)},
			Parser:  hazardDamage(state.StealthRock),
		})
	}
	if ts.Spikes > 0 && grounded {
		rs := append([]inference.Reason{up, noBoots(side, p), notMagicGuard(side, p)}, notLevitating(side, p)...)
		cands = append(cands, parser.Candidate{
			Name:    string(side) + " spikes",
			Certain: true,
			Reasons: rs,
			Parser:  hazardDamage(state.Spikes),
		})
	}
	if ts.ToxicSpikes > 0 && grounded {
		cands = append(cands, toxicSpikes(ctx, side, p, ts)...)
	}
	if ts.StickyWeb && grounded {
		rs := append([]inference.Reason{up, noBoots(side, p)}, notLevitating(side, p)...)
		cands = append(cands, parser.Candidate{
			Name:    string(side) + " sticky web",
			Certain: true,
			Reasons: rs,
			Parser: parser.Seq(
				parser.Const(expect("sticky web", func(e *event.Activate) bool {
					return e.Side == side && named(e.Effect, state.StickyWeb)
				})),
				parser.Const(parser.Optional(expect("sticky web drop", func(e *event.Boost) bool {
					return e.Side == side && dex.Stat(e.Stat) == dex.Spe
				}))),
			),
		})
	}
	return cands
}

// toxicSpikes is absorbed by a grounded Poison type and otherwise poisons,
// badly with two layers.
func toxicSpikes(ctx *parser.Context, side event.Side, p *state.Pokemon, ts state.TeamStatus) []parser.Candidate {
	up := alive{side: side, p: p}
	if p.HasType(dex.Poison) {
		return []parser.Candidate{{
			Name:    string(side) + " absorbs toxic spikes",
			Certain: true,
			Reasons: append([]inference.Reason{up}, notLevitating(side, p)...),
			Parser: expect("toxic spikes absorbed", func(e *event.SideEnd) bool {
				return e.Side == side && named(e.Condition, state.ToxicSpikes)
			}),
		}}
	}
	status := dex.Poisoned
	if ts.ToxicSpikes >= 2 {
		status = dex.Toxic
	}
	if p.Status != dex.NoStatus || p.StatusImmuneByType(status) || ts.Has(state.Safeguard) {
		return nil
	}
	rs := []inference.Reason{up, noBoots(side, p)}
	rs = append(rs, notLevitating(side, p)...)
	rs = append(rs, lacksAbility(side, p, func(a *dex.Ability) bool { return a.BlocksStatus(status) }))
	return []parser.Candidate{{
		Name:    string(side) + " toxic spikes",
		Certain: true,
		Reasons: rs,
		Parser: expect("toxic spikes", func(e *event.Status) bool {
			return e.Side == side && dex.MajorStatus(e.Status) == status
		}),
	}}
}

// entryAbilities lists the switch-in abilities p may hold. Each announces
// itself whenever it is held, so a missing announcement rules it out.
func entryAbilities(ctx *parser.Context, side event.Side, p *state.Pokemon) []parser.Candidate {
	if p.Volatile.SuppressAbility {
		return nil
	}
	up := alive{side: side, p: p}
	weather := ctx.Battle.Field.Weather
	return parser.Candidates(abilityLabel(side), p.Ability,
		func(_ string, a *dex.Ability) bool {
			on := a.OnStart
			if on == nil {
				return false
			}
			return on.Announce || len(on.FoeBoosts) > 0 || (on.Weather != "" && on.Weather != weather)
		},
		func(name string, a *dex.Ability) parser.Candidate {
			c := parser.Candidate{Certain: true, Reasons: []inference.Reason{up}}
			switch on := a.OnStart; {
			case on.Weather != "":
				c.Parser = expect("weather ability", func(e *event.Weather) bool {
					return e.Weather == on.Weather && !e.Upkeep &&
						(e.From.IsZero() || fromAbility(e.From, name)) &&
						(!e.Of.Valid() || e.Of == side)
				}, func(ctx *parser.Context, e *event.Weather) error {
					return revealAbility(ctx, side, name)
				})
			case len(on.FoeBoosts) > 0:
				c.Parser = parser.Seq(
					parser.Const(announced(side, name)),
					func(ctx *parser.Context) (parser.Parser, error) {
						return foeDrops(ctx, side, on.FoeBoosts), nil
					},
				)
			default:
				c.Parser = announced(side, name)
			}
			return c
		})
}

func announced(side event.Side, name string) parser.Parser {
	return expect("ability "+name, func(e *event.Ability) bool {
		return e.Side == side && dex.ID(e.Ability) == name && e.From.IsZero()
	})
}

// foeDrops expects the opposing active to take each drop of an entry
// ability, or to show what prevented it.
func foeDrops(ctx *parser.Context, side event.Side, boosts map[dex.Stat]int) parser.Parser {
	foe := side.Foe()
	p := ctx.Battle.Team(foe).Active()
	if p == nil || p.Fainted {
		return nil
	}
	var steps []parser.Step
	for _, stat := range sortedStats(boosts) {
		stat, amount := stat, boosts[stat]
		steps = append(steps, func(ctx *parser.Context) (parser.Parser, error) {
			if p.Volatile.Substitute {
				return parser.Optional(expect("substitute blocks drop", func(e *event.Fail) bool {
					return e.Side == foe
				})), nil
			}
			block := func(a *dex.Ability) bool { return a.BlocksDrop(stat) }
			cands := []parser.Candidate{{
				Name:    "drop " + string(stat),
				Reasons: []inference.Reason{lacksAbility(foe, p, block)},
				Parser: expect("entry drop", func(e *event.Boost) bool {
					return e.Side == foe && dex.Stat(e.Stat) == stat && sameSign(e.Amount, amount)
				}),
			}}
			cands = append(cands, parser.Candidates(abilityLabel(foe), p.Ability,
				func(_ string, a *dex.Ability) bool { return block(a) },
				func(name string, _ *dex.Ability) parser.Candidate {
					return parser.Candidate{
						Certain: true,
						Parser: expect("drop blocked", func(e *event.Fail) bool {
							return e.Side == foe && e.What == "unboost" && fromAbility(e.From, name)
						}),
					}
				})...)
			return parser.Require("entry drop", parser.OneOf(cands...)), nil
		})
	}
	return parser.Seq(steps...)
}

// entryItems lists the items that announce themselves on entry.
func entryItems(side event.Side, p *state.Pokemon) []parser.Candidate {
	up := alive{side: side, p: p}
	return parser.Candidates(itemLabel(side), p.Item,
		func(_ string, it *dex.Item) bool { return it.Levitate },
		func(name string, _ *dex.Item) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Reasons: []inference.Reason{up},
				Parser: expect("item "+name, func(e *event.Item) bool {
					return e.Side == side && dex.ID(e.Item) == name && e.From.IsZero()
				}),
			}
		})
}
