package dispatch

import (
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/parser"
)

// newFutureHit builds the dispatcher for a delayed move landing on e.Side.
// The user may have switched out or fainted since, so nothing about its
// current occupant is inferred.
func newFutureHit(ctx *parser.Context, e *event.End) (parser.Parser, error) {
	mv, err := ctx.Dex.Move(e.Effect.Name)
	if err != nil {
		return nil, err
	}
	defender, err := active(ctx, e.Side)
	if err != nil {
		return nil, err
	}
	m := &moveUse{
		move:      mv,
		user:      e.Side.Foe(),
		target:    e.Side,
		defender:  defender,
		moveType:  mv.Type,
		typeKnown: true,
	}
	return parser.Seq(
		parser.Const(parser.Require("future move end", parser.Expect("future end", func(ctx *parser.Context, ev event.Event) (bool, error) {
			if ev != event.Event(e) {
				return false, nil
			}
			return true, apply(ctx, e)
		}))),
		func(*parser.Context) (parser.Parser, error) {
			return parser.OneOf(
				parser.Candidate{Name: "immune", Parser: parser.Expect("immune", m.typeImmune)},
				parser.Candidate{Name: "hit", Parser: parser.Func(m.hit())},
			), nil
		},
		func(ctx *parser.Context) (parser.Parser, error) {
			if m.hits == 0 || m.lastSub {
				return nil, nil
			}
			cands := m.itemReactions()
			if len(cands) == 0 {
				return nil, nil
			}
			return parser.All(false, cands...), nil
		},
		m.faints,
	), nil
}
