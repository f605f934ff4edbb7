package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/showdown-ai/psbot/engine/fault"
)

type envelope struct {
	Kind Kind `json:"kind"`
}

// New returns a zero value of the variant tagged kind.
func New(kind Kind) (Event, error) {
	f, ok := factories[kind]
	if !ok {
		return nil, fault.New(fault.CodeUnexpectedEvent, "unknown event kind %q", kind)
	}
	return f(), nil
}

// Decode parses one JSON-encoded event of the form {"kind":"move",...}.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	ev, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", env.Kind, err)
	}
	return ev, nil
}

// Encode renders ev as a single JSON object carrying its kind tag.
func Encode(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Kind(), err)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	kind, _ := json.Marshal(ev.Kind())
	buf.Write(kind)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
