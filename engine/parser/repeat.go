package parser

import (
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
)

type repeat struct {
	max   int
	body  func(i int) (Parser, error)
	until Matcher
	cur   Parser
	done  int
}

// Repeat runs body for successive iterations until an event accepted by until
// arrives. until is checked before each iteration starts; once max iterations
// have completed any other event is a HIT_LIMIT_EXCEEDED fault. If neither
// until nor a new iteration accepts an event the loop declines it. The result
// is the number of completed iterations.
func Repeat(max int, body func(i int) (Parser, error), until Matcher) Parser {
	return &repeat{max: max, body: body, until: until}
}

func (r *repeat) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	if r.cur != nil {
		out, err := r.cur.Advance(ctx, ev)
		if err != nil {
			return Decline, err
		}
		switch out.Status {
		case Continue:
			return More, nil
		case Done:
			r.cur = nil
			r.done++
			return More, nil
		}
		r.cur = nil
		r.done++
	}

	ok, err := r.until(ctx, ev)
	if err != nil {
		return Decline, err
	}
	if ok {
		return Finish(r.done), nil
	}
	if r.done >= r.max {
		return Decline, fault.New(fault.CodeHitLimitExceeded, "%d iterations done without terminator, got %s", r.done, describe(ev))
	}

	p, err := r.body(r.done)
	if err != nil {
		return Decline, err
	}
	out, err := p.Advance(ctx, ev)
	if err != nil {
		return Decline, err
	}
	if !out.Accepted() {
		return Decline, nil
	}
	if out.Status == Done {
		r.done++
		return More, nil
	}
	r.cur = p
	return More, nil
}
