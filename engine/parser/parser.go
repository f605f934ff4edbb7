// Package parser implements resumable event consumers and the schedulers that
// race them.
//
// A Parser is an explicit state machine driven one event at a time through
// Advance. On each call it either consumes the event and wants more
// (Continue), consumes it and finishes (Done), or hands it back (Declined).
// A parser that declines its first event did not match; one that declines
// after consuming events has simply finished. A parser is never advanced
// again after it reports Done or Declined.
package parser

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/state"
)

// Status is the result kind of one Advance call.
type Status int8

const (
	Declined Status = iota
	Continue
	Done
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case Done:
		return "done"
	default:
		return "declined"
	}
}

// Outcome is what a parser reports for one event.
type Outcome struct {
	Status Status
	Result any
}

// Accepted reports whether the event was consumed.
func (o Outcome) Accepted() bool { return o.Status != Declined }

// Helpers for the three outcomes.
var (
	Decline = Outcome{Status: Declined}
	More    = Outcome{Status: Continue}
)

// Finish returns a Done outcome carrying result.
func Finish(result any) Outcome { return Outcome{Status: Done, Result: result} }

// Context carries what every parser needs: the belief model, the rule data,
// the diagnostic log and the current move-call depth.
type Context struct {
	Battle *state.Battle
	Dex    *dex.Dex
	Log    logrus.FieldLogger
	Depth  int
}

// NewContext creates a context for battle. A nil log discards output.
func NewContext(b *state.Battle, log logrus.FieldLogger) *Context {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Context{Battle: b, Dex: b.Dex, Log: log}
}

// Nested returns a copy of the context one call level deeper.
func (c *Context) Nested() *Context {
	n := *c
	n.Depth++
	return &n
}

// Parser is a resumable event consumer.
type Parser interface {
	Advance(ctx *Context, ev event.Event) (Outcome, error)
}

// Func adapts a function to a Parser.
type Func func(ctx *Context, ev event.Event) (Outcome, error)

// Advance calls f.
func (f Func) Advance(ctx *Context, ev event.Event) (Outcome, error) { return f(ctx, ev) }

// Matcher judges a single event. It must not mutate state unless it returns
// true.
type Matcher func(ctx *Context, ev event.Event) (bool, error)

// ---------------------------------------------------------------------------
// Single-event parsers
// ---------------------------------------------------------------------------

type expect struct {
	desc  string
	match Matcher
}

// Expect returns a parser that consumes exactly one event accepted by match.
func Expect(desc string, match Matcher) Parser { return &expect{desc: desc, match: match} }

func (e *expect) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	ok, err := e.match(ctx, ev)
	if err != nil {
		return Decline, fmt.Errorf("%s: %w", e.desc, err)
	}
	if !ok {
		return Decline, nil
	}
	return Finish(ev), nil
}

func (e *expect) String() string { return e.desc }

// Nothing returns a parser that declines every event.
func Nothing() Parser {
	return Func(func(*Context, event.Event) (Outcome, error) { return Decline, nil })
}

// ---------------------------------------------------------------------------
// Require / Optional
// ---------------------------------------------------------------------------

type required struct {
	desc    string
	inner   Parser
	started bool
}

// Require wraps p so that declining its first event is an UNEXPECTED_EVENT
// fault.
func Require(desc string, p Parser) Parser { return &required{desc: desc, inner: p} }

func (r *required) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	out, err := r.inner.Advance(ctx, ev)
	if err != nil {
		return out, err
	}
	if !out.Accepted() && !r.started {
		return Decline, fault.New(fault.CodeUnexpectedEvent, "expected %s, got %s", r.desc, describe(ev))
	}
	r.started = true
	return out, nil
}

// Optional marks p as allowed to decline its first event. It exists to make
// pipelines read as written; any parser may decline.
func Optional(p Parser) Parser { return p }

func describe(ev event.Event) string {
	if ev == nil {
		return "end of stream"
	}
	return fmt.Sprintf("%s %+v", ev.Kind(), ev)
}

// ---------------------------------------------------------------------------
// Seq
// ---------------------------------------------------------------------------

// Step builds the parser for one pipeline step when the step is reached.
// Returning a nil parser skips the step.
type Step func(ctx *Context) (Parser, error)

// Const returns a step that always yields p.
func Const(p Parser) Step { return func(*Context) (Parser, error) { return p, nil } }

type seq struct {
	steps   []Step
	next    int
	cur     Parser
	results []any
}

// Seq runs steps in order. A step's parser receives events until it finishes;
// an event it declines is offered to the next step. Seq is Done when the last
// step consumes its final event, and Declined when an event is left over after
// every step has finished. Its result is the slice of step results.
func Seq(steps ...Step) Parser { return &seq{steps: steps} }

// pull builds parsers until a non-nil one is found. It returns false when the
// steps are exhausted.
func (s *seq) pull(ctx *Context) (bool, error) {
	for s.cur == nil {
		if s.next >= len(s.steps) {
			return false, nil
		}
		p, err := s.steps[s.next](ctx)
		s.next++
		if err != nil {
			return false, err
		}
		s.cur = p
	}
	return true, nil
}

func (s *seq) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	for {
		ok, err := s.pull(ctx)
		if err != nil {
			return Decline, err
		}
		if !ok {
			return Decline, nil
		}
		out, err := s.cur.Advance(ctx, ev)
		if err != nil {
			return Decline, err
		}
		switch out.Status {
		case Continue:
			return More, nil
		case Done:
			s.cur = nil
			s.results = append(s.results, out.Result)
			more, err := s.pull(ctx)
			if err != nil {
				return Decline, err
			}
			if !more {
				return Finish(s.results), nil
			}
			return More, nil
		default:
			s.cur = nil
		}
	}
}
