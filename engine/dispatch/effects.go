package dispatch

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// effects expects the primary effects of a status move that landed, in the
// order the protocol reports them.
func (m *moveUse) effects(*parser.Context) (parser.Parser, error) {
	if !m.landed() || m.move.Category != dex.Status {
		return nil, nil
	}
	mv := m.move
	var steps []parser.Step
	if mv.Status != dex.NoStatus && m.defender != nil {
		steps = append(steps, m.primaryStatus)
	}
	switch {
	case mv.Volatile == "substitute":
		steps = append(steps, m.substitute)
	case mv.Volatile != "" && m.defender != nil:
		steps = append(steps, m.primaryVolatile)
	}
	if len(mv.Boosts) > 0 {
		if mv.Target == dex.TargetSelf {
			steps = append(steps, m.ownBoosts)
		} else if m.defender != nil {
			for _, stat := range sortedStats(mv.Boosts) {
				steps = append(steps, m.primaryDrop(stat, mv.Boosts[stat]))
			}
		}
	}
	if !mv.Heal.Zero() {
		steps = append(steps, parser.Const(parser.Require("heal", expect("heal", func(e *event.Heal) bool {
			return e.Side == m.user
		}))))
	}
	if mv.Weather != "" {
		steps = append(steps, parser.Const(parser.Require("weather "+mv.Weather, expect("weather", func(e *event.Weather) bool {
			return e.Weather == mv.Weather && !e.Upkeep
		}))))
	}
	if mv.SideCondition != "" {
		side := m.user
		if mv.Target == dex.TargetFoe {
			side = m.user.Foe()
		}
		steps = append(steps, parser.Const(parser.Require("side condition", expect("side start", func(e *event.SideStart) bool {
			return e.Side == side && dex.ID(e.Condition.Name) == dex.ID(mv.SideCondition)
		}))))
	}
	if mv.Field != "" {
		steps = append(steps, m.fieldToggle)
	}
	if mv.Stall {
		steps = append(steps, parser.Const(parser.Require("stall", expect("single turn", func(e *event.SingleTurn) bool {
			return e.Side == m.user && named(e.Effect, mv.ID)
		}))))
	}
	if mv.ClearBoosts {
		steps = append(steps, parser.Const(parser.Require("clear boosts", expect("clear all boosts", func(*event.ClearAllBoost) bool {
			return true
		}))))
	}
	if len(steps) == 0 {
		return nil, nil
	}
	return parser.Seq(steps...), nil
}

// primaryStatus races the status landing against the abilities and side
// conditions that could stop it.
func (m *moveUse) primaryStatus(ctx *parser.Context) (parser.Parser, error) {
	s := m.move.Status
	cands := []parser.Candidate{{
		Name:    "status " + string(s),
		Reasons: []inference.Reason{inference.Not(m.statusBlock(s))},
		Parser: expect("status", func(e *event.Status) bool {
			return e.Side == m.target && dex.MajorStatus(e.Status) == s
		}),
	}}
	cands = append(cands, m.abilityImmunities(func(a *dex.Ability) bool { return a.BlocksStatus(s) })...)
	if ctx.Battle.Team(m.target).Status.Has(state.Safeguard) {
		cands = append(cands, parser.Candidate{Name: "safeguard", Parser: expect("safeguard", func(e *event.Activate) bool {
			return e.Side == m.target && named(e.Effect, state.Safeguard)
		})})
	}
	return parser.Require("status "+string(s), parser.OneOf(cands...)), nil
}

func (m *moveUse) primaryVolatile(*parser.Context) (parser.Parser, error) {
	vol := dex.ID(m.move.Volatile)
	cands := []parser.Candidate{{
		Name:    "start " + vol,
		Reasons: []inference.Reason{inference.Not(m.volatileBlock(vol))},
		Parser: expect("start", func(e *event.Start) bool {
			return e.Side == m.target && named(e.Effect, vol)
		}),
	}}
	cands = append(cands, m.abilityImmunities(func(a *dex.Ability) bool { return a.BlocksVolatile(vol) })...)
	return parser.Require("volatile "+vol, parser.OneOf(cands...)), nil
}

// abilityImmunities lists the target's abilities matching pred that announce
// an immunity when they stop the move.
func (m *moveUse) abilityImmunities(pred func(*dex.Ability) bool) []parser.Candidate {
	return parser.Candidates(abilityLabel(m.target), m.defender.Ability,
		func(_ string, a *dex.Ability) bool { return pred(a) },
		func(name string, _ *dex.Ability) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Reasons: []inference.Reason{notMoldBreaker(m.user, m.attacker)},
				Parser: expect("ability immunity", func(e *event.Immune) bool {
					return e.Side == m.target && fromAbility(e.From, name)
				}),
			}
		})
}

func (m *moveUse) substitute(*parser.Context) (parser.Parser, error) {
	return parser.All(true,
		parser.Candidate{Name: "substitute", Parser: expect("substitute", func(e *event.Start) bool {
			return e.Side == m.user && named(e.Effect, "substitute")
		})},
		parser.Candidate{Name: "substitute cost", Parser: expect("substitute cost", func(e *event.Damage) bool {
			return e.Side == m.user && e.From.IsZero()
		})},
	), nil
}

// primaryDrop expects one stat drop on the target, or the ability that
// prevented it.
func (m *moveUse) primaryDrop(stat dex.Stat, amount int) parser.Step {
	return func(ctx *parser.Context) (parser.Parser, error) {
		if !m.defender.Volatile.CanBoost(stat, amount, ctx.Battle.Rules.MaxBoost) {
			return m.ownBoost(m.target, stat, amount), nil
		}
		cands := []parser.Candidate{m.dropCandidate(ctx, stat, amount, true)}
		if amount < 0 {
			cands = append(cands, parser.Candidates(abilityLabel(m.target), m.defender.Ability,
				func(_ string, a *dex.Ability) bool { return a.BlocksDrop(stat) },
				func(name string, _ *dex.Ability) parser.Candidate {
					return parser.Candidate{
						Certain: true,
						Reasons: []inference.Reason{notMoldBreaker(m.user, m.attacker)},
						Parser: expect("drop blocked", func(e *event.Fail) bool {
							return e.Side == m.target && e.What == "unboost" && fromAbility(e.From, name)
						}),
					}
				})...)
		}
		return parser.Require("boost "+string(stat), parser.OneOf(cands...)), nil
	}
}

// ownBoosts expects the stat changes of a self-targeting move. Stats already
// at the limit produce no event.
func (m *moveUse) ownBoosts(*parser.Context) (parser.Parser, error) {
	var steps []parser.Step
	for _, stat := range sortedStats(m.move.Boosts) {
		steps = append(steps, parser.Const(m.ownBoost(m.user, stat, m.move.Boosts[stat])))
	}
	return parser.Seq(steps...), nil
}

func (m *moveUse) ownBoost(side event.Side, stat dex.Stat, amount int) parser.Parser {
	return parser.Optional(expect("boost", func(e *event.Boost) bool {
		return e.Side == side && dex.Stat(e.Stat) == stat && sameSign(e.Amount, amount)
	}))
}

// fieldToggle expects the field effect to start, or to end when the move
// toggles an active one off.
func (m *moveUse) fieldToggle(*parser.Context) (parser.Parser, error) {
	id := dex.ID(m.move.Field)
	return parser.Require("field "+id, parser.OneOf(
		parser.Candidate{Name: "start", Parser: expect("field start", func(e *event.FieldStart) bool {
			return named(e.Effect, id)
		})},
		parser.Candidate{Name: "end", Parser: expect("field end", func(e *event.FieldEnd) bool {
			return named(e.Effect, id)
		})},
	)), nil
}
