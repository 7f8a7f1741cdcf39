package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

func init() {
	logger.InitForTests()
}

func TestBroadcaster_SendTo(t *testing.T) {
	b := NewBroadcaster()
	p1 := types.PackEntityID(enums.EntityTypePlayer, 1, 1)
	p2 := types.PackEntityID(enums.EntityTypePlayer, 1, 2)

	ch := b.Register(p1)
	require.True(t, b.HasSubscriber(p1))
	assert.False(t, b.HasSubscriber(p2))

	assert.True(t, b.SendTo(p1, api.ServerResponse{Type: api.TypeAck}))
	assert.False(t, b.SendTo(p2, api.ServerResponse{Type: api.TypeAck}))

	msg := <-ch
	assert.Equal(t, api.TypeAck, msg.Type)
}

func TestBroadcaster_ReRegisterClosesOldChannel(t *testing.T) {
	b := NewBroadcaster()
	p := types.PackEntityID(enums.EntityTypePlayer, 1, 1)

	old := b.Register(p)
	_ = b.Register(p)

	_, open := <-old
	assert.False(t, open)
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBroadcaster_FullChannelDrops(t *testing.T) {
	b := NewBroadcaster()
	p := types.PackEntityID(enums.EntityTypePlayer, 1, 1)
	b.Register(p)

	for i := 0; i < InboxSize; i++ {
		require.True(t, b.SendTo(p, api.ServerResponse{Type: api.TypeState}))
	}
	assert.False(t, b.SendTo(p, api.ServerResponse{Type: api.TypeState}))
}

func TestBroadcaster_BroadcastAndUnregister(t *testing.T) {
	b := NewBroadcaster()
	p1 := types.PackEntityID(enums.EntityTypePlayer, 1, 1)
	p2 := types.PackEntityID(enums.EntityTypePlayer, 1, 2)
	ch1 := b.Register(p1)
	ch2 := b.Register(p2)

	b.Broadcast(api.ServerResponse{Type: api.TypeTurnResult})
	assert.Equal(t, api.TypeTurnResult, (<-ch1).Type)
	assert.Equal(t, api.TypeTurnResult, (<-ch2).Type)

	b.Unregister(p1)
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, b.SubscriberCount())

	// повторная отписка безопасна
	b.Unregister(p1)
}
