package parser

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/possibility"
)

func testContext() *Context {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Context{Log: l}
}

func tracker(names ...string) *possibility.Tracker[struct{}] {
	data := make(map[string]struct{}, len(names))
	for _, n := range names {
		data[n] = struct{}{}
	}
	return possibility.New(data)
}

// kind matches one event of the given kind and counts matches.
func kind(k event.Kind, hits *int) Parser {
	return Expect(string(k), func(_ *Context, ev event.Event) (bool, error) {
		if ev.Kind() != k {
			return false, nil
		}
		if hits != nil {
			*hits++
		}
		return true, nil
	})
}

func feed(t *testing.T, ctx *Context, p Parser, evs ...event.Event) []Status {
	t.Helper()
	var out []Status
	for _, ev := range evs {
		o, err := p.Advance(ctx, ev)
		require.NoError(t, err)
		out = append(out, o.Status)
	}
	return out
}

func TestExpectAndRequire(t *testing.T) {
	ctx := testContext()
	assert.Equal(t, []Status{Done}, feed(t, ctx, kind(event.KindCrit, nil), &event.Crit{}))
	assert.Equal(t, []Status{Declined}, feed(t, ctx, kind(event.KindCrit, nil), &event.Miss{}))

	_, err := Require("crit", kind(event.KindCrit, nil)).Advance(ctx, &event.Miss{})
	assert.True(t, errors.Is(err, fault.ErrUnexpectedEvent), "got %v", err)
}

func TestSeqReoffersDeclinedEvent(t *testing.T) {
	ctx := testContext()
	var crits, damages int
	p := Seq(
		Const(Optional(kind(event.KindCrit, &crits))),
		func(*Context) (Parser, error) { return nil, nil }, // skipped
		Const(Require("damage", kind(event.KindDamage, &damages))),
	)
	// No crit: the damage event falls through the optional step.
	assert.Equal(t, []Status{Done}, feed(t, ctx, p, &event.Damage{}))
	assert.Equal(t, 0, crits)
	assert.Equal(t, 1, damages)
}

func TestSeqDeclineAfterConsumingFinishes(t *testing.T) {
	ctx := testContext()
	p := Seq(Const(kind(event.KindCrit, nil)), Const(Optional(kind(event.KindResisted, nil))))
	assert.Equal(t, []Status{Continue, Declined}, feed(t, ctx, p, &event.Crit{}, &event.Damage{}))
}

func TestSeqResults(t *testing.T) {
	ctx := testContext()
	p := Seq(Const(kind(event.KindCrit, nil)), Const(kind(event.KindDamage, nil)))
	_, err := p.Advance(ctx, &event.Crit{})
	require.NoError(t, err)
	out, err := p.Advance(ctx, &event.Damage{Side: event.P2})
	require.NoError(t, err)
	require.Equal(t, Done, out.Status)
	results := out.Result.([]any)
	require.Len(t, results, 2)
	assert.Equal(t, &event.Damage{Side: event.P2}, results[1])
}

func TestOneOfExclusiveAcceptance(t *testing.T) {
	ctx := testContext()
	ability := tracker("drizzle", "drought", "sandstream")
	p := OneOf(
		Candidate{Name: "rain", Parser: kind(event.KindWeather, nil), Reasons: []inference.Reason{inference.Has("ability", ability, "drizzle")}},
		Candidate{Name: "miss", Parser: kind(event.KindMiss, nil), Reasons: []inference.Reason{inference.Has("ability", ability, "drought")}},
	)
	out, err := p.Advance(ctx, &event.Weather{Weather: "RainDance"})
	require.NoError(t, err)
	assert.Equal(t, Done, out.Status)
	assert.Equal(t, "rain", out.Result.(Chosen).Name)
	assert.Equal(t, []string{"drizzle"}, ability.Possible())
}

func TestOneOfLosersRejected(t *testing.T) {
	ctx := testContext()
	a := tracker("x", "y", "z")
	p := OneOf(
		Candidate{Name: "first", Parser: kind(event.KindCrit, nil), Reasons: []inference.Reason{inference.Has("a", a, "x")}},
		Candidate{Name: "second", Parser: kind(event.KindMiss, nil), Reasons: []inference.Reason{inference.Has("a", a, "y")}},
	)
	feed(t, ctx, p, &event.Miss{})
	assert.Equal(t, []string{"y"}, a.Possible())
}

func TestOneOfAmbiguousIsFault(t *testing.T) {
	ctx := testContext()
	p := OneOf(
		Candidate{Name: "a", Parser: kind(event.KindCrit, nil)},
		Candidate{Name: "b", Parser: kind(event.KindCrit, nil)},
	)
	_, err := p.Advance(ctx, &event.Crit{})
	assert.True(t, errors.Is(err, fault.ErrAmbiguousAccept), "got %v", err)
}

func TestOneOfNoMatchRejectsOnlyCertain(t *testing.T) {
	ctx := testContext()
	a := tracker("limber", "static", "other")
	p := OneOf(
		Candidate{Name: "certain", Parser: kind(event.KindStatus, nil), Reasons: []inference.Reason{inference.Has("a", a, "limber")}, Certain: true},
		Candidate{Name: "chance", Parser: kind(event.KindStatus, nil), Reasons: []inference.Reason{inference.Has("a", a, "static")}},
	)
	assert.Equal(t, []Status{Declined}, feed(t, ctx, p, &event.Turn{Number: 2}))
	assert.Equal(t, []string{"other", "static"}, a.Possible())
}

func TestOneOfWinnerKeepsRunning(t *testing.T) {
	ctx := testContext()
	p := OneOf(
		Candidate{Name: "crit then damage", Parser: Seq(Const(kind(event.KindCrit, nil)), Const(kind(event.KindDamage, nil)))},
		Candidate{Name: "miss", Parser: kind(event.KindMiss, nil)},
	)
	assert.Equal(t, []Status{Continue, Done}, feed(t, ctx, p, &event.Crit{}, &event.Damage{}))
}

func TestInferNarrowsToAcceptingName(t *testing.T) {
	ctx := testContext()
	ability := tracker("drizzle", "drought", "keeneye")
	weather := map[string]string{"drizzle": "RainDance", "drought": "SunnyDay"}
	p := Infer("ability", ability,
		func(name string, _ struct{}) bool { return weather[name] != "" },
		func(name string, _ struct{}) Candidate {
			want := weather[name]
			return Candidate{
				Certain: true,
				Parser: Expect(name, func(_ *Context, ev event.Event) (bool, error) {
					w, ok := ev.(*event.Weather)
					return ok && w.Weather == want, nil
				}),
			}
		})
	out, err := p.Advance(ctx, &event.Weather{Weather: "SunnyDay"})
	require.NoError(t, err)
	assert.Equal(t, "ability:drought", out.Result.(Chosen).Name)
	assert.Equal(t, []string{"drought"}, ability.Possible())
}

func TestInferNoMatchRefutesCertainCandidates(t *testing.T) {
	ctx := testContext()
	ability := tracker("drizzle", "keeneye")
	p := Infer("ability", ability,
		func(name string, _ struct{}) bool { return name == "drizzle" },
		func(string, struct{}) Candidate {
			return Candidate{Certain: true, Parser: kind(event.KindWeather, nil)}
		})
	feed(t, ctx, p, &event.Turn{})
	assert.Equal(t, []string{"keeneye"}, ability.Possible())
}

func TestAllStrict(t *testing.T) {
	ctx := testContext()
	faint := func(side event.Side) Parser {
		return Expect("faint "+string(side), func(_ *Context, ev event.Event) (bool, error) {
			f, ok := ev.(*event.Faint)
			return ok && f.Side == side, nil
		})
	}
	p := All(true, Candidate{Name: "p1", Parser: faint(event.P1)}, Candidate{Name: "p2", Parser: faint(event.P2)})
	assert.Equal(t, []Status{Continue, Done}, feed(t, ctx, p, &event.Faint{Side: event.P2}, &event.Faint{Side: event.P1}))

	p = All(true, Candidate{Name: "p1", Parser: faint(event.P1)}, Candidate{Name: "p2", Parser: faint(event.P2)})
	feed(t, ctx, p, &event.Faint{Side: event.P1})
	_, err := p.Advance(ctx, &event.Turn{Number: 3})
	assert.True(t, errors.Is(err, fault.ErrMissingEvent), "got %v", err)
}

func TestAllNonStrictRejectsPending(t *testing.T) {
	ctx := testContext()
	item := tracker("rockyhelmet", "leftovers")
	ability := tracker("roughskin", "sandveil")
	p := All(false,
		Candidate{Name: "helmet", Parser: kind(event.KindDamage, nil), Certain: true, Reasons: []inference.Reason{inference.Has("item", item, "rockyhelmet")}},
		Candidate{Name: "skin", Parser: kind(event.KindActivate, nil), Certain: true, Reasons: []inference.Reason{inference.Has("ability", ability, "roughskin")}},
	)
	assert.Equal(t, []Status{Continue, Declined}, feed(t, ctx, p, &event.Damage{}, &event.Turn{}))
	assert.Equal(t, []string{"rockyhelmet"}, item.Possible())
	assert.Equal(t, []string{"sandveil"}, ability.Possible())
}

func TestRepeatStopsAtTerminator(t *testing.T) {
	ctx := testContext()
	hits := 0
	hitCount := func(_ *Context, ev event.Event) (bool, error) { return ev.Kind() == event.KindHitCount, nil }
	p := Repeat(5, func(int) (Parser, error) { return kind(event.KindDamage, &hits), nil }, hitCount)
	status := feed(t, ctx, p, &event.Damage{}, &event.Damage{}, &event.Damage{})
	assert.Equal(t, []Status{Continue, Continue, Continue}, status)
	out, err := p.Advance(ctx, &event.HitCount{Count: 3})
	require.NoError(t, err)
	assert.Equal(t, Done, out.Status)
	assert.Equal(t, 3, out.Result)
	assert.Equal(t, 3, hits)
}

func TestRepeatLimit(t *testing.T) {
	ctx := testContext()
	hitCount := func(_ *Context, ev event.Event) (bool, error) { return ev.Kind() == event.KindHitCount, nil }
	p := Repeat(2, func(int) (Parser, error) { return kind(event.KindDamage, nil), nil }, hitCount)
	feed(t, ctx, p, &event.Damage{}, &event.Damage{})
	_, err := p.Advance(ctx, &event.Damage{})
	assert.True(t, errors.Is(err, fault.ErrHitLimitExceeded), "got %v", err)
}
