// internal/publish/redis_test.go
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/state"
	"github.com/showdown-ai/psbot/service/internal/battle"
)

type fakeClient struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeClient) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestPublishEncodesEnvelope(t *testing.T) {
	fc := &fakeClient{}
	p := &RedisPublisher{client: fc, channel: "psbot:snapshots"}
	id := uuid.New()

	err := p.Publish(context.Background(), battle.Envelope{
		Battle:   id,
		Seq:      3,
		Kind:     event.KindTurn,
		Snapshot: state.Snapshot{Turn: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "psbot:snapshots", fc.channel)

	var got struct {
		Battle   uuid.UUID `json:"battle"`
		Seq      int       `json:"seq"`
		Kind     string    `json:"kind"`
		Snapshot struct {
			Turn int `json:"turn"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(fc.payload, &got))
	assert.Equal(t, id, got.Battle)
	assert.Equal(t, 3, got.Seq)
	assert.Equal(t, "turn", got.Kind)
	assert.Equal(t, 2, got.Snapshot.Turn)
}

func TestPublishWrapsClientError(t *testing.T) {
	boom := errors.New("connection refused")
	p := &RedisPublisher{client: &fakeClient{err: boom}, channel: "c"}
	err := p.Publish(context.Background(), battle.Envelope{Seq: 1})
	assert.ErrorIs(t, err, boom)
}
