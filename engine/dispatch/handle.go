package dispatch

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// Handle applies an event that arrived outside any dispatcher. Events that
// only make sense as part of a move, and bare damage or healing with no
// attribution, are UNEXPECTED_EVENT faults.
func Handle(ctx *parser.Context, ev event.Event) error {
	switch e := ev.(type) {
	case *event.Move, *event.Switch, *event.Prepare, *event.NoTarget, *event.Miss,
		*event.Crit, *event.SuperEffective, *event.Resisted, *event.HitCount:
		return unexpected(ev)
	case *event.Damage:
		if e.From.IsZero() {
			return unexpected(ev)
		}
	case *event.Heal:
		if e.From.IsZero() {
			return unexpected(ev)
		}
	case *event.Fail:
		if e.From.IsZero() {
			return unexpected(ev)
		}
	case *event.Immune:
		if e.From.IsZero() {
			return unexpected(ev)
		}
	}
	return apply(ctx, ev)
}

// apply performs the direct model update for ev and reveals its attribution.
func apply(ctx *parser.Context, ev event.Event) error {
	b := ctx.Battle
	switch e := ev.(type) {
	case *event.Init:
		return applyInit(b, e)
	case *event.Turn:
		b.StartTurn(e.Number)
	case *event.Upkeep:
		b.Upkeep()
	case *event.Win:
		b.End(e.Side)
	case *event.Tie:
		b.End("")

	case *event.Switch:
		_, err := b.Switch(e.Side, e.Species, e.Level, e.HP, e.MaxHP)
		return err
	case *event.DetailsChange:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		return p.ChangeSpecies(ctx.Dex, e.Species)
	case *event.FormeChange:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		s, err := ctx.Dex.Species(e.Species)
		if err != nil {
			return err
		}
		p.Volatile.OverrideTypes = s.Types
		return reveal(ctx, e.From, e.Side)
	case *event.Transform:
		return applyTransform(ctx, e)
	case *event.Faint:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Faint()

	case *event.Cant:
		return applyCant(ctx, e)
	case *event.Prepare:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Volatile.TwoTurn = dex.ID(e.Move)
	case *event.MustRecharge:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Volatile.MustRecharge = true
	case *event.Fail:
		return reveal(ctx, e.From, holder(e.Side, e.Of))
	case *event.Immune:
		return reveal(ctx, e.From, holder(e.Side, e.Of))
	case *event.Activate:
		if e.Effect.Is(event.FromAbility) || e.Effect.Is(event.FromItem) {
			return reveal(ctx, e.Effect, e.Side)
		}
	case *event.SingleTurn:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		if id := dex.ID(e.Effect.Name); id == "protect" || id == "detect" {
			p.Volatile.Protect = true
			p.Volatile.StallCount++
		}

	case *event.Damage:
		return applyHP(ctx, e.Side, e.HP, e.MaxHP, e.From, e.Of)
	case *event.Heal:
		return applyHP(ctx, e.Side, e.HP, e.MaxHP, e.From, e.Of)

	case *event.Status:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.SetStatus(dex.MajorStatus(e.Status))
		return reveal(ctx, e.From, holder(e.Side, e.Of))
	case *event.CureStatus:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.SetStatus(dex.NoStatus)
		return reveal(ctx, e.From, e.Side)
	case *event.CureTeam:
		for _, p := range b.Team(e.Side).Pokemon {
			p.SetStatus(dex.NoStatus)
		}

	case *event.Boost:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Volatile.ApplyBoost(dex.Stat(e.Stat), e.Amount, b.Rules.MaxBoost)
		return reveal(ctx, e.From, holder(e.Side, e.Of))
	case *event.SetBoost:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Volatile.SetBoost(dex.Stat(e.Stat), e.Amount)
	case *event.ClearAllBoost:
		for _, t := range b.Teams {
			if p := t.Active(); p != nil {
				p.Volatile.ClearBoosts()
			}
		}
	case *event.ClearNegativeBoost:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		p.Volatile.ClearNegativeBoosts()

	case *event.Start:
		return applyStart(ctx, e)
	case *event.End:
		return applyEnd(ctx, e)

	case *event.Ability:
		return applyAbility(ctx, e)
	case *event.Item:
		return applyItem(ctx, e)
	case *event.EndItem:
		p, err := active(ctx, e.Side)
		if err != nil {
			return err
		}
		if err := reveal(ctx, e.From, e.Side); err != nil {
			return err
		}
		return p.RemoveItem(ctx.Dex, e.Item)

	case *event.Weather:
		if !e.Upkeep {
			b.Field.SetWeather(e.Weather)
		}
		if e.Of.Valid() {
			return reveal(ctx, e.From, e.Of)
		}
	case *event.FieldStart:
		b.Field.Start(e.Effect.Name)
		if e.Of.Valid() {
			return reveal(ctx, e.From, e.Of)
		}
	case *event.FieldEnd:
		b.Field.End(e.Effect.Name)
	case *event.SideStart:
		return b.Team(e.Side).Status.Start(b.Rules, e.Condition.Name)
	case *event.SideEnd:
		b.Team(e.Side).Status.End(e.Condition.Name)
	}
	return nil
}

func applyInit(b *state.Battle, e *event.Init) error {
	if e.Perspective != "" {
		b.Perspective = e.Perspective
	}
	if e.Gen > 0 {
		b.Rules.Gen = e.Gen
	}
	for i, n := range e.TeamSize {
		if n == 0 {
			continue
		}
		if err := b.Teams[i].SetSize(n, b.Rules); err != nil {
			return err
		}
	}
	return nil
}

func applyHP(ctx *parser.Context, side event.Side, hp, maxHP int, from event.Effect, of event.Side) error {
	p, err := active(ctx, side)
	if err != nil {
		return err
	}
	p.SetHP(hp, maxHP)
	return reveal(ctx, from, holder(side, of))
}

func applyTransform(ctx *parser.Context, e *event.Transform) error {
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	target, err := active(ctx, e.Target)
	if err != nil {
		return err
	}
	p.Volatile.Transformed = true
	p.Volatile.OverrideTypes = append([]dex.Type(nil), target.Types()...)
	p.Volatile.Boosts = target.Volatile.Boosts
	return nil
}

func applyCant(ctx *parser.Context, e *event.Cant) error {
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	switch dex.ID(e.Reason.Name) {
	case "recharge":
		p.Volatile.MustRecharge = false
	case "flinch":
		p.Volatile.Flinch = true
	}
	if e.Reason.Is(event.FromAbility) {
		// Abilities that stop a foe's move belong to the foe.
		owner := e.Side
		if a, err := ctx.Dex.Ability(e.Reason.Name); err == nil && a.BlockSelfDestruct {
			owner = e.Side.Foe()
		}
		if err := revealAbility(ctx, owner, e.Reason.Name); err != nil {
			return err
		}
	}
	if e.Move == "" || p.Volatile.Transformed {
		return nil
	}
	mv, err := ctx.Dex.Move(e.Move)
	if err != nil {
		return err
	}
	_, err = p.Moveset.Reveal(mv)
	return err
}

func applyStart(ctx *parser.Context, e *event.Start) error {
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	v := p.Volatile
	switch id := dex.ID(e.Effect.Name); id {
	case "confusion":
		v.Confusion = 1
	case "substitute":
		v.Substitute = true
	case "leechseed":
		v.LeechSeed = true
	case "taunt":
		v.Taunt = 3
	case "encore":
		v.Encore = 3
	case "disable":
		v.DisableTurns = 4
	case "flashfire":
		v.FlashFire = true
	case "slowstart":
		v.SlowStart = 5
	case "focusenergy":
		v.Focus = true
	case "perish3", "perish2", "perish1", "perish0":
		v.Perish = int(id[len(id)-1] - '0')
	default:
		if mv, err := ctx.Dex.Move(e.Effect.Name); err == nil && mv.Future {
			ctx.Battle.Team(e.Side).Status.FutureMoves[mv.ID] = 2
			break
		}
		v.Start(id, ctx.Battle.Turn)
	}
	if e.Effect.Is(event.FromAbility) {
		if err := revealAbility(ctx, e.Side, e.Effect.Name); err != nil {
			return err
		}
	}
	return reveal(ctx, e.From, holder(e.Side, e.Of))
}

func applyEnd(ctx *parser.Context, e *event.End) error {
	if mv, err := ctx.Dex.Move(e.Effect.Name); err == nil && mv.Future {
		delete(ctx.Battle.Team(e.Side.Foe()).Status.FutureMoves, mv.ID)
		return nil
	}
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	v := p.Volatile
	switch id := dex.ID(e.Effect.Name); id {
	case "confusion":
		v.Confusion = 0
	case "substitute":
		v.Substitute = false
	case "leechseed":
		v.LeechSeed = false
	case "taunt":
		v.Taunt = 0
	case "encore":
		v.Encore = 0
	case "disable":
		v.Disabled, v.DisableTurns = "", 0
	case "flashfire":
		v.FlashFire = false
	case "slowstart":
		v.SlowStart = 0
	default:
		v.End(id)
	}
	return reveal(ctx, e.From, e.Side)
}

func applyAbility(ctx *parser.Context, e *event.Ability) error {
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	if e.From.IsZero() {
		return revealAbility(ctx, e.Side, e.Ability)
	}
	// A copied or swapped ability: the source effect is the holder's own
	// ability when it is one.
	if e.From.Is(event.FromAbility) {
		if err := revealAbility(ctx, e.Side, e.From.Name); err != nil {
			return err
		}
	}
	a, err := ctx.Dex.Ability(e.Ability)
	if err != nil {
		return err
	}
	p.OverrideAbility(a)
	return nil
}

func applyItem(ctx *parser.Context, e *event.Item) error {
	p, err := active(ctx, e.Side)
	if err != nil {
		return err
	}
	switch {
	case e.From.Is(event.FromMove):
		it, err := ctx.Dex.Item(e.Item)
		if err != nil {
			return err
		}
		p.GainItem(it)
		return nil
	case e.From.Is(event.FromAbility):
		if err := revealAbility(ctx, holder(e.Side, e.Of), e.From.Name); err != nil {
			return err
		}
	}
	return revealItem(ctx, e.Side, e.Item)
}
