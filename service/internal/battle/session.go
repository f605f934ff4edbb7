// internal/battle/session.go
package battle

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/driver"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/state"
	"github.com/showdown-ai/psbot/service/internal/config"
	"github.com/showdown-ai/psbot/service/internal/metrics"
)

// Envelope is the unit handed to a Publisher after each handled event.
type Envelope struct {
	Battle   uuid.UUID      `json:"battle"`
	Seq      int            `json:"seq"`  // 1-based index of the event that produced the snapshot.
	Kind     event.Kind     `json:"kind"` // Kind of that event.
	Snapshot state.Snapshot `json:"snapshot"`
}

// Publisher receives snapshot envelopes. Implementations must be safe for
// concurrent use when shared between sessions.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Option configures a Session.
type Option func(*Session)

// WithPublisher publishes a snapshot after every handled event.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.pub = p }
}

// WithLogger sets the parent logger. Session fields are added to it.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.parent = log }
}

// WithID overrides the generated session id.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.ID = id }
}

// Session tracks the beliefs for one battle stream.
type Session struct {
	ID   uuid.UUID  // Unique identifier for this session.
	Side event.Side // Perspective the session was configured with, if any.

	Mu sync.Mutex // Guards every field below.

	drv    *driver.Driver
	parent logrus.FieldLogger
	log    *logrus.Entry
	pub    Publisher
	seq    int
	result string // Final metrics result once the battle is over.
}

// New creates a session over a fresh battle. The perspective from cfg applies
// until an init event names one.
func New(cfg config.Config, d *dex.Dex, opts ...Option) *Session {
	s := &Session{
		ID:   uuid.New(),
		Side: event.Side(cfg.Perspective),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parent == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.parent = l
	}
	s.log = s.parent.WithFields(logrus.Fields{"battle": s.ID, "side": s.Side})

	b := state.New(d, state.DefaultRules())
	b.Perspective = s.Side
	s.drv = driver.New(b, s.log)
	s.log.Info("battle started")
	return s
}

// Handle applies one event. After a fault every later call returns the same
// error. A failed publish is logged and counted but does not stop the session.
func (s *Session) Handle(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.result == metrics.ResultAborted {
		return s.drv.Err()
	}

	start := time.Now()
	err := s.drv.Handle(ev)
	metrics.HandleSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		s.abort(err)
		return err
	}
	s.seq++
	metrics.EventsHandled.WithLabelValues(string(ev.Kind())).Inc()

	switch e := ev.(type) {
	case *event.Win:
		s.finish(metrics.ResultWin, logrus.Fields{"winner": e.Side})
	case *event.Tie:
		s.finish(metrics.ResultTie, nil)
	}

	if s.pub != nil {
		env := Envelope{Battle: s.ID, Seq: s.seq, Kind: ev.Kind(), Snapshot: s.drv.Snapshot()}
		if err := s.pub.Publish(ctx, env); err != nil {
			metrics.Published.WithLabelValues("error").Inc()
			s.log.WithError(err).WithField("seq", s.seq).Warn("publish snapshot failed")
		} else {
			metrics.Published.WithLabelValues("ok").Inc()
		}
	}
	return nil
}

// Close ends the stream. Pending guaranteed effects are resolved against
// end-of-input; a battle that never reported a result is counted as cut.
func (s *Session) Close() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.result == metrics.ResultAborted {
		return s.drv.Err()
	}
	if err := s.drv.Flush(); err != nil {
		s.abort(err)
		return fmt.Errorf("close battle %s: %w", s.ID, err)
	}
	if s.result == "" {
		s.finish(metrics.ResultCut, nil)
	}
	return nil
}

// Snapshot returns a copy of the current beliefs.
func (s *Session) Snapshot() state.Snapshot {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.drv.Snapshot()
}

// Err returns the fault that aborted the battle, if any.
func (s *Session) Err() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.drv.Err()
}

// Seq returns the number of events handled.
func (s *Session) Seq() int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.seq
}

// Over reports whether the battle reached a result or was aborted.
func (s *Session) Over() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.result != ""
}

// abort records a fault. Caller holds Mu.
func (s *Session) abort(err error) {
	if s.result == metrics.ResultAborted {
		return
	}
	s.result = metrics.ResultAborted
	metrics.RecordFault(err)
	metrics.Battles.WithLabelValues(metrics.ResultAborted).Inc()
}

// finish records the battle result once. Caller holds Mu.
func (s *Session) finish(result string, fields logrus.Fields) {
	if s.result != "" {
		return
	}
	s.result = result
	metrics.Battles.WithLabelValues(result).Inc()
	s.log.WithFields(fields).WithField("events", s.seq).Info("battle ended")
}
