// internal/feed/feed_test.go
package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdown-ai/psbot/engine/event"
)

// recordingSink keeps the kinds it was handed and can fail on one.
type recordingSink struct {
	kinds  []event.Kind
	failOn event.Kind
}

func (r *recordingSink) Handle(_ context.Context, ev event.Event) error {
	if ev.Kind() == r.failOn {
		return errors.New("refused " + string(ev.Kind()))
	}
	r.kinds = append(r.kinds, ev.Kind())
	return nil
}

// scriptedSource replays a fixed list of events.
type scriptedSource struct {
	events []event.Event
	closed bool
}

func (s *scriptedSource) Next(context.Context) (event.Event, error) {
	if len(s.events) == 0 {
		return nil, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *scriptedSource) Close() error { s.closed = true; return nil }

const sampleLog = `{"kind":"init","teamSize":[1,1]}

# turn one
{"kind":"turn","number":1}
{"kind":"upkeep"}
`

func TestFileSourceSkipsBlankAndComments(t *testing.T) {
	src := NewFileSource(strings.NewReader(sampleLog))
	sink := &recordingSink{}
	require.NoError(t, Run(context.Background(), src, sink))
	assert.Equal(t, []event.Kind{event.KindInit, event.KindTurn, event.KindUpkeep}, sink.kinds)
	assert.Equal(t, 5, src.Line())
	assert.NoError(t, src.Close())
}

func TestFileSourceReportsLine(t *testing.T) {
	src := NewFileSource(strings.NewReader("{\"kind\":\"turn\",\"number\":1}\n{\"kind\":\"bogus\"}\n"))
	err := Run(context.Background(), src, &recordingSink{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRunStopsAtResult(t *testing.T) {
	src := &scriptedSource{events: []event.Event{
		&event.Turn{Number: 1},
		&event.Win{Side: event.P1},
		&event.Turn{Number: 2},
	}}
	sink := &recordingSink{}
	require.NoError(t, Run(context.Background(), src, sink))
	assert.Equal(t, []event.Kind{event.KindTurn, event.KindWin}, sink.kinds)
	assert.Len(t, src.events, 1)
}

func TestRunPropagatesSinkError(t *testing.T) {
	src := &scriptedSource{events: []event.Event{&event.Turn{Number: 1}, &event.Upkeep{}}}
	err := Run(context.Background(), src, &recordingSink{failOn: event.KindUpkeep})
	assert.EqualError(t, err, "refused upkeep")
}

func TestWebsocketSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		for _, ev := range []event.Event{&event.Turn{Number: 1}, &event.Upkeep{}} {
			data, _ := event.Encode(ev)
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
		c.Close(websocket.StatusNormalClosure, "done")
	}))
	defer srv.Close()

	ctx := context.Background()
	src, err := Dial(ctx, srv.URL)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, Run(ctx, src, sink))
	assert.Equal(t, []event.Kind{event.KindTurn, event.KindUpkeep}, sink.kinds)
	assert.NoError(t, src.Close())
}
