// Package dispatch turns protocol events into belief-model updates.
//
// Start builds the multi-event dispatcher for an initiating event (a move, a
// switch-in or a landing future move). Every other event goes through Handle,
// which applies it directly and reveals whatever its "[from]" attribution
// names. Dispatchers are built from the parser combinators and consult the
// model lazily, so each phase sees the effects of the ones before it.
package dispatch

import (
	"fmt"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// maxCallDepth bounds chains of moves calling other moves.
const maxCallDepth = 3

// Start returns the dispatcher for ev, or nil when ev does not begin one.
// The dispatcher has not seen ev yet; the caller feeds it as the first event.
func Start(ctx *parser.Context, ev event.Event) (parser.Parser, error) {
	switch e := ev.(type) {
	case *event.Move:
		return newMoveUse(ctx, e)
	case *event.Switch:
		return newSwitchIn(e), nil
	case *event.End:
		if landingFutureMove(ctx, e) {
			return newFutureHit(ctx, e)
		}
	}
	return nil, nil
}

func landingFutureMove(ctx *parser.Context, e *event.End) bool {
	if !e.Side.Valid() {
		return false
	}
	mv, err := ctx.Dex.Move(e.Effect.Name)
	if err != nil || !mv.Future {
		return false
	}
	_, pending := ctx.Battle.Team(e.Side.Foe()).Status.FutureMoves[mv.ID]
	return pending
}

func unexpected(ev event.Event) error {
	return fault.New(fault.CodeUnexpectedEvent, "no dispatcher explains %s %+v", ev.Kind(), ev)
}

// holder returns the side an attribution belongs to: the "[of]" side when
// present, otherwise the event's own side.
func holder(side, of event.Side) event.Side {
	if of.Valid() {
		return of
	}
	return side
}

func active(ctx *parser.Context, side event.Side) (*state.Pokemon, error) {
	return ctx.Battle.Active(side)
}

// ---------------------------------------------------------------------------
// Reveals
// ---------------------------------------------------------------------------

// reveal records what an attribution names about its holder.
func reveal(ctx *parser.Context, from event.Effect, side event.Side) error {
	switch from.Type {
	case event.FromAbility:
		return revealAbility(ctx, side, from.Name)
	case event.FromItem:
		return revealItem(ctx, side, from.Name)
	}
	return nil
}

func revealAbility(ctx *parser.Context, side event.Side, name string) error {
	p, err := active(ctx, side)
	if err != nil {
		return err
	}
	if p.Volatile.SuppressAbility {
		return nil
	}
	if err := p.SetAbility(name); err != nil {
		return fmt.Errorf("%s reveals ability %s: %w", side, name, err)
	}
	return nil
}

func revealItem(ctx *parser.Context, side event.Side, name string) error {
	p, err := active(ctx, side)
	if err != nil {
		return err
	}
	id := dex.ID(name)
	// Attributions to an item that was just consumed follow its removal.
	if cur, ok := p.Item.Definite(); ok && cur == dex.NoItem && p.LastItem == id {
		return nil
	}
	if err := p.SetItem(id); err != nil {
		return fmt.Errorf("%s reveals item %s: %w", side, name, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reason builders
// ---------------------------------------------------------------------------

func abilityLabel(side event.Side) string { return string(side) + " ability" }
func itemLabel(side event.Side) string    { return string(side) + " item" }

func hasAbility(side event.Side, p *state.Pokemon, ids ...string) inference.Reason {
	return inference.Has(abilityLabel(side), p.Ability, ids...)
}

func hasItem(side event.Side, p *state.Pokemon, ids ...string) inference.Reason {
	return inference.Has(itemLabel(side), p.Item, ids...)
}

func abilitiesWhere(p *state.Pokemon, pred func(*dex.Ability) bool) []string {
	return p.Ability.Filter(func(_ string, a *dex.Ability) bool { return pred(a) })
}

func itemsWhere(p *state.Pokemon, pred func(*dex.Item) bool) []string {
	return p.Item.Filter(func(_ string, it *dex.Item) bool { return pred(it) })
}

// lacksAbility holds iff p's ability satisfies none of pred. It is trivially
// true when no candidate does.
func lacksAbility(side event.Side, p *state.Pokemon, pred func(*dex.Ability) bool) inference.Reason {
	if p == nil {
		return inference.Const(true)
	}
	ids := abilitiesWhere(p, pred)
	if len(ids) == 0 {
		return inference.Const(true)
	}
	return inference.Not(hasAbility(side, p, ids...))
}

func lacksItem(side event.Side, p *state.Pokemon, pred func(*dex.Item) bool) inference.Reason {
	if p == nil {
		return inference.Const(true)
	}
	ids := itemsWhere(p, pred)
	if len(ids) == 0 {
		return inference.Const(true)
	}
	return inference.Not(hasItem(side, p, ids...))
}

func notMoldBreaker(side event.Side, p *state.Pokemon) inference.Reason {
	return lacksAbility(side, p, func(a *dex.Ability) bool { return a.MoldBreaker })
}

func notMagicGuard(side event.Side, p *state.Pokemon) inference.Reason {
	return lacksAbility(side, p, func(a *dex.Ability) bool { return a.MagicGuard })
}

func notLevitating(side event.Side, p *state.Pokemon) []inference.Reason {
	return []inference.Reason{
		lacksAbility(side, p, func(a *dex.Ability) bool {
			return a.TypeImmunity != nil && a.TypeImmunity.Type == dex.Ground
		}),
		lacksItem(side, p, func(it *dex.Item) bool { return it.Levitate }),
	}
}

// blockedBy holds iff the target's ability is one of those matching pred and
// the user does not bypass it with a mold-breaking ability. With no matching
// candidate the reason can never hold, and asserting it is a fault.
func blockedBy(target event.Side, defender *state.Pokemon, user event.Side, attacker *state.Pokemon, pred func(*dex.Ability) bool) inference.Reason {
	return inference.And(hasAbility(target, defender, abilitiesWhere(defender, pred)...), notMoldBreaker(user, attacker))
}

// ---------------------------------------------------------------------------
// Event matchers
// ---------------------------------------------------------------------------

// expect consumes one event of type E satisfying pred, applies it to the
// model and then runs the extra hooks.
func expect[E event.Event](desc string, pred func(E) bool, then ...func(*parser.Context, E) error) parser.Parser {
	return parser.Expect(desc, func(ctx *parser.Context, ev event.Event) (bool, error) {
		e, ok := ev.(E)
		if !ok || !pred(e) {
			return false, nil
		}
		if err := apply(ctx, e); err != nil {
			return false, err
		}
		for _, f := range then {
			if err := f(ctx, e); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}

// observe is expect without the default model update.
func observe[E event.Event](desc string, pred func(E) bool, then ...func(*parser.Context, E) error) parser.Parser {
	return parser.Expect(desc, func(ctx *parser.Context, ev event.Event) (bool, error) {
		e, ok := ev.(E)
		if !ok || !pred(e) {
			return false, nil
		}
		for _, f := range then {
			if err := f(ctx, e); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}

func named(e event.Effect, id string) bool { return dex.ID(e.Name) == id }

func fromAbility(e event.Effect, id string) bool { return e.Is(event.FromAbility) && named(e, id) }

func fromItem(e event.Effect, id string) bool { return e.Is(event.FromItem) && named(e, id) }

// nested runs a called move's dispatcher one call level deeper.
type nested struct{ inner parser.Parser }

func (n nested) Advance(ctx *parser.Context, ev event.Event) (parser.Outcome, error) {
	return n.inner.Advance(ctx.Nested(), ev)
}
