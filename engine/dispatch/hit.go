package dispatch

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

func (m *moveUse) strikes(*parser.Context) (parser.Parser, error) {
	if !m.landed() || m.move.Category == dex.Status || m.defender == nil {
		return nil, nil
	}
	if !m.multiHit {
		return m.strike(true), nil
	}
	_, hi := m.move.Hits()
	return parser.Require("first hit", parser.Repeat(hi, func(int) (parser.Parser, error) {
		return m.strike(false), nil
	}, m.hitCount)), nil
}

// strike is one hit followed by its reactions.
func (m *moveUse) strike(required bool) parser.Parser {
	var hit parser.Parser = parser.Func(m.hit())
	if required {
		hit = parser.Require("hit", hit)
	}
	return parser.Seq(parser.Const(hit), m.reactions)
}

func (m *moveUse) hitCount(_ *parser.Context, ev event.Event) (bool, error) {
	e, ok := ev.(*event.HitCount)
	if !ok || e.Side != m.target {
		return false, nil
	}
	if e.Count != m.hits {
		return false, fault.New(fault.CodeUnexpectedEvent, "%s reported %d hits, %d observed", m.move.Name, e.Count, m.hits)
	}
	m.counted = true
	return true, nil
}

func (m *moveUse) checkHitCount(*parser.Context) (parser.Parser, error) {
	if m.multiHit && m.hits > 0 && !m.counted {
		return nil, fault.New(fault.CodeMissingEvent, "%s: no hit count after %d hits", m.move.Name, m.hits)
	}
	return nil, nil
}

// hit consumes an optional critical-hit notice and an optional effectiveness
// notice, in either order, then the damage to the Pokemon or its substitute.
func (m *moveUse) hit() func(*parser.Context, event.Event) (parser.Outcome, error) {
	seen := dex.EffectNeutral
	var crit, rated bool
	land := func(ctx *parser.Context, sub bool) (parser.Outcome, error) {
		if err := m.checkEffect(ctx, seen); err != nil {
			return parser.Decline, err
		}
		m.hits++
		m.lastSub = sub
		if !sub {
			m.damaged = true
		}
		return parser.Finish(m.hits), nil
	}
	return func(ctx *parser.Context, ev event.Event) (parser.Outcome, error) {
		switch e := ev.(type) {
		case *event.Crit:
			if e.Side == m.target && !crit {
				crit = true
				return parser.More, nil
			}
		case *event.SuperEffective:
			if e.Side == m.target && !rated {
				seen, rated = dex.EffectSuper, true
				return parser.More, nil
			}
		case *event.Resisted:
			if e.Side == m.target && !rated {
				seen, rated = dex.EffectResisted, true
				return parser.More, nil
			}
		case *event.Damage:
			if e.Side == m.target && e.From.IsZero() {
				if err := apply(ctx, e); err != nil {
					return parser.Decline, err
				}
				return land(ctx, false)
			}
		case *event.Activate:
			if e.Side == m.target && named(e.Effect, "substitute") {
				return land(ctx, true)
			}
		case *event.End:
			if e.Side == m.target && named(e.Effect, "substitute") {
				if err := apply(ctx, e); err != nil {
					return parser.Decline, err
				}
				return land(ctx, true)
			}
		}
		return parser.Decline, nil
	}
}

// reactions collects what may follow a single hit, in any order: drain,
// secondary effects, contact punishment and item reactions. Guaranteed ones
// that never show up are refuted.
func (m *moveUse) reactions(ctx *parser.Context) (parser.Parser, error) {
	var cands []parser.Candidate
	if !m.move.Drain.Zero() && m.attacker.HP > 0 {
		cands = append(cands, parser.Candidate{Name: "drain", Parser: expect("drain", func(e *event.Heal) bool {
			return e.Side == m.user && named(e.From, "drain")
		})})
	}
	if !m.lastSub {
		cands = append(cands, m.secondaries(ctx)...)
		cands = append(cands, m.contact()...)
		cands = append(cands, m.itemReactions()...)
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return parser.All(false, cands...), nil
}

func (m *moveUse) secondaries(ctx *parser.Context) []parser.Candidate {
	sec := m.move.Secondary
	if sec == nil || m.defender.HP <= 0 {
		return nil
	}
	certain := sec.Chance >= 100
	var cands []parser.Candidate
	if s := sec.Status; s != dex.NoStatus && m.canAfflict(ctx, s) {
		cands = append(cands, m.statusCandidate(s, certain))
	}
	if sec.Volatile != "" && sec.Volatile != "flinch" {
		vol := dex.ID(sec.Volatile)
		cands = append(cands, parser.Candidate{
			Name:    "secondary " + vol,
			Reasons: []inference.Reason{inference.Not(m.volatileBlock(vol))},
			Parser: expect("secondary volatile", func(e *event.Start) bool {
				return e.Side == m.target && named(e.Effect, vol)
			}),
		})
	}
	for _, stat := range sortedStats(sec.Boosts) {
		cands = append(cands, m.dropCandidate(ctx, stat, sec.Boosts[stat], certain))
	}
	return cands
}

// canAfflict reports whether status s would certainly stick to the
// defender, abilities aside.
func (m *moveUse) canAfflict(ctx *parser.Context, s dex.MajorStatus) bool {
	d := m.defender
	return d.Status == dex.NoStatus && !d.StatusImmuneByType(s) &&
		!d.Volatile.Substitute && !ctx.Battle.Team(m.target).Status.Has(state.Safeguard)
}

func (m *moveUse) statusBlock(s dex.MajorStatus) inference.Reason {
	return blockedBy(m.target, m.defender, m.user, m.attacker, func(a *dex.Ability) bool { return a.BlocksStatus(s) })
}

func (m *moveUse) volatileBlock(vol string) inference.Reason {
	return blockedBy(m.target, m.defender, m.user, m.attacker, func(a *dex.Ability) bool { return a.BlocksVolatile(vol) })
}

func (m *moveUse) dropBlock(stat dex.Stat) inference.Reason {
	return blockedBy(m.target, m.defender, m.user, m.attacker, func(a *dex.Ability) bool { return a.BlocksDrop(stat) })
}

// statusCandidate expects the defender to receive s. If it is certain and
// missing, only a status-blocking ability explains the absence.
func (m *moveUse) statusCandidate(s dex.MajorStatus, certain bool) parser.Candidate {
	return parser.Candidate{
		Name:    "status " + string(s),
		Certain: certain,
		Reasons: []inference.Reason{inference.Not(m.statusBlock(s))},
		Parser: expect("status", func(e *event.Status) bool {
			return e.Side == m.target && dex.MajorStatus(e.Status) == s && e.From.IsZero()
		}),
	}
}

func (m *moveUse) dropCandidate(ctx *parser.Context, stat dex.Stat, amount int, certain bool) parser.Candidate {
	c := parser.Candidate{
		Name: "boost " + string(stat),
		Parser: expect("boost", func(e *event.Boost) bool {
			return e.Side == m.target && dex.Stat(e.Stat) == stat && e.From.IsZero() && sameSign(e.Amount, amount)
		}),
	}
	if amount < 0 {
		c.Reasons = []inference.Reason{inference.Not(m.dropBlock(stat))}
		c.Certain = certain && m.defender.Volatile.CanBoost(stat, amount, ctx.Battle.Rules.MaxBoost)
	}
	return c
}

func sameSign(got, want int) bool {
	if want < 0 {
		return got <= 0
	}
	return got >= 0
}

// contact lists the punishments a contact move may draw from the defender's
// ability or item.
func (m *moveUse) contact() []parser.Candidate {
	if !m.move.HasFlag("contact") || m.attacker.HP <= 0 {
		return nil
	}
	guard := notMagicGuard(m.user, m.attacker)
	up := alive{side: m.user, p: m.attacker}
	damage := func(desc string, from func(event.Effect) bool) parser.Parser {
		return expect(desc, func(e *event.Damage) bool { return e.Side == m.user && from(e.From) })
	}
	var cands []parser.Candidate
	cands = append(cands, parser.Candidates(abilityLabel(m.target), m.defender.Ability,
		func(_ string, a *dex.Ability) bool { return !a.ContactDamage.Zero() },
		func(name string, _ *dex.Ability) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Reasons: []inference.Reason{up, guard},
				Parser:  damage("contact ability", func(f event.Effect) bool { return fromAbility(f, name) }),
			}
		})...)
	cands = append(cands, parser.Candidates(itemLabel(m.target), m.defender.Item,
		func(_ string, it *dex.Item) bool { return !it.ContactDamage.Zero() },
		func(name string, _ *dex.Item) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Reasons: []inference.Reason{up, guard},
				Parser:  damage("contact item", func(f event.Effect) bool { return fromItem(f, name) }),
			}
		})...)
	if m.defender.HP <= 0 {
		cands = append(cands, parser.Candidates(abilityLabel(m.target), m.defender.Ability,
			func(_ string, a *dex.Ability) bool { return !a.ContactKODamage.Zero() },
			func(name string, _ *dex.Ability) parser.Candidate {
				return parser.Candidate{
					Certain: true,
					Reasons: []inference.Reason{up, guard},
					Parser:  damage("aftermath", func(f event.Effect) bool { return fromAbility(f, name) }),
				}
			})...)
	}
	if m.attacker.Status == dex.NoStatus {
		cands = append(cands, parser.Candidates(abilityLabel(m.target), m.defender.Ability,
			func(_ string, a *dex.Ability) bool {
				return a.ContactStatus != nil && !m.attacker.StatusImmuneByType(a.ContactStatus.Status)
			},
			func(name string, a *dex.Ability) parser.Candidate {
				s := a.ContactStatus.Status
				return parser.Candidate{
					Reasons: []inference.Reason{inference.Chance(name)},
					Parser: expect("contact status", func(e *event.Status) bool {
						return e.Side == m.user && dex.MajorStatus(e.Status) == s && fromAbility(e.From, name)
					}),
				}
			})...)
	}
	return cands
}

// itemReactions covers the defender's item responding to the hit: a popped
// balloon, an item knocked away, or a berry or other consumable used up.
func (m *moveUse) itemReactions() []parser.Candidate {
	cands := parser.Candidates(itemLabel(m.target), m.defender.Item,
		func(_ string, it *dex.Item) bool { return it.Levitate },
		func(name string, _ *dex.Item) parser.Candidate {
			return parser.Candidate{
				Certain: true,
				Parser: expect("balloon pops", func(e *event.EndItem) bool {
					return e.Side == m.target && dex.ID(e.Item) == name && e.From.IsZero()
				}),
			}
		})
	if m.move.ID == "knockoff" {
		cands = append(cands, parser.Candidate{Name: "knock off", Parser: expect("knock off", func(e *event.EndItem) bool {
			return e.Side == m.target && e.From.Is(event.FromMove)
		})})
	}
	cands = append(cands,
		parser.Candidate{Name: "consumed item", Parser: parser.Seq(
			parser.Const(expect("consumed", func(e *event.EndItem) bool { return e.Side == m.target && e.Eat })),
			parser.Const(parser.OneOf(
				parser.Candidate{Name: "cure", Parser: expect("cure", func(e *event.CureStatus) bool { return e.Side == m.target })},
				parser.Candidate{Name: "heal", Parser: expect("heal", func(e *event.Heal) bool {
					return e.Side == m.target && e.From.Is(event.FromItem)
				})},
			)),
		)},
	)
	return cands
}

// ---------------------------------------------------------------------------
// after all hits
// ---------------------------------------------------------------------------

// afterHits gathers the user's own consequences of a damaging move: recoil,
// an attack-recoil item, stat changes to itself and a recharge notice.
func (m *moveUse) afterHits(ctx *parser.Context) (parser.Parser, error) {
	if m.hits == 0 {
		return nil, nil
	}
	var cands []parser.Candidate
	standing := m.attacker.HP > 0
	guard := notMagicGuard(m.user, m.attacker)
	up := alive{side: m.user, p: m.attacker}
	if !m.move.Recoil.Zero() && m.damaged && standing {
		c := parser.Candidate{Name: "recoil", Parser: expect("recoil", func(e *event.Damage) bool {
			return e.Side == m.user && named(e.From, "recoil")
		})}
		if m.move.ID != "struggle" {
			c.Reasons = []inference.Reason{guard}
		}
		cands = append(cands, c)
	}
	if standing {
		cands = append(cands, parser.Candidates(itemLabel(m.user), m.attacker.Item,
			func(_ string, it *dex.Item) bool { return !it.AttackRecoil.Zero() },
			func(name string, _ *dex.Item) parser.Candidate {
				return parser.Candidate{
					Certain: true,
					Reasons: []inference.Reason{up, guard},
					Parser: expect("attack recoil", func(e *event.Damage) bool {
						return e.Side == m.user && fromItem(e.From, name)
					}),
				}
			})...)
		cands = append(cands, m.selfBoosts(m.move.SelfBoosts)...)
		if m.move.Secondary != nil {
			cands = append(cands, m.selfBoosts(m.move.Secondary.Self)...)
		}
	}
	if m.move.Recharge {
		cands = append(cands, parser.Candidate{Name: "recharge", Parser: expect("must recharge", func(e *event.MustRecharge) bool {
			return e.Side == m.user
		})})
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return parser.All(false, cands...), nil
}

func (m *moveUse) selfBoosts(boosts map[dex.Stat]int) []parser.Candidate {
	var cands []parser.Candidate
	for _, stat := range sortedStats(boosts) {
		stat, amount := stat, boosts[stat]
		cands = append(cands, parser.Candidate{
			Name: "self " + string(stat),
			Parser: expect("self boost", func(e *event.Boost) bool {
				return e.Side == m.user && dex.Stat(e.Stat) == stat && e.From.IsZero() && sameSign(e.Amount, amount)
			}),
		})
	}
	return cands
}

func (m *moveUse) checkRecharge(*parser.Context) (parser.Parser, error) {
	if m.move.Recharge && m.hits > 0 && m.attacker.HP > 0 && !m.attacker.Volatile.MustRecharge {
		return nil, fault.New(fault.CodeMissingEvent, "%s hit without a recharge notice", m.move.Name)
	}
	return nil, nil
}
