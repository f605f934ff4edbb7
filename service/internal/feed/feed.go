// internal/feed/feed.go
package feed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/coder/websocket"

	"github.com/showdown-ai/psbot/engine/event"
)

// maxLine bounds one encoded event, for both files and websocket frames.
const maxLine = 1 << 20

// Source yields decoded events one at a time. Next returns io.EOF once the
// stream ends cleanly.
type Source interface {
	Next(ctx context.Context) (event.Event, error)
	Close() error
}

// Sink consumes events; *battle.Session satisfies it.
type Sink interface {
	Handle(ctx context.Context, ev event.Event) error
}

// Run pumps events from src into sink until the stream ends, a result event
// is handled, or an error occurs. A clean end of stream returns nil.
func Run(ctx context.Context, src Source, sink Sink) error {
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		if err := sink.Handle(ctx, ev); err != nil {
			return err
		}
		switch ev.(type) {
		case *event.Win, *event.Tie:
			return nil
		}
	}
}

// ---------------------------------------------------------------------------
// JSON lines
// ---------------------------------------------------------------------------

// FileSource reads one JSON event per line. Blank lines and lines starting
// with '#' are skipped.
type FileSource struct {
	scan   *bufio.Scanner
	closer io.Closer
	line   int
}

// NewFileSource reads events from r. Close closes r if it is an io.Closer.
func NewFileSource(r io.Reader) *FileSource {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLine)
	src := &FileSource{scan: scan}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}

// OpenFile opens path as a FileSource.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return NewFileSource(f), nil
}

// Next implements Source.
func (s *FileSource) Next(ctx context.Context) (event.Event, error) {
	for s.scan.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.line++
		line := bytes.TrimSpace(s.scan.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		ev, err := event.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}
		return ev, nil
	}
	if err := s.scan.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Line returns the number of the last line read.
func (s *FileSource) Line() int { return s.line }

// Close implements Source.
func (s *FileSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ---------------------------------------------------------------------------
// Websocket
// ---------------------------------------------------------------------------

// WebsocketSource reads one JSON event per websocket message.
type WebsocketSource struct {
	conn   *websocket.Conn
	closed bool // peer ended the stream
}

// Dial connects to a live event feed at url.
func Dial(ctx context.Context, url string) (*WebsocketSource, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWebsocketSource(conn), nil
}

// NewWebsocketSource reads from an established connection.
func NewWebsocketSource(conn *websocket.Conn) *WebsocketSource {
	conn.SetReadLimit(maxLine)
	return &WebsocketSource{conn: conn}
}

// Next implements Source. A normal closure by the peer ends the stream.
func (s *WebsocketSource) Next(ctx context.Context) (event.Event, error) {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				s.closed = true
				return nil, io.EOF
			}
			return nil, err
		}
		if typ != websocket.MessageText {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		return event.Decode(data)
	}
}

// Close implements Source. Closing after the peer already closed is a no-op.
func (s *WebsocketSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
