package engine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/pkg/api"
)

type recordingPublisher struct {
	mu      sync.Mutex
	updates []api.ServerResponse
}

func (p *recordingPublisher) Publish(_ context.Context, update api.ServerResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

type sessionHarness struct {
	s      *Session
	hub    *network.Broadcaster
	pub    *recordingPublisher
	cancel context.CancelFunc
	runErr chan error
}

func startSession(t *testing.T) *sessionHarness {
	t.Helper()

	g, err := testLayout().Build(1)
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.Tick = 5 * time.Millisecond

	h := &sessionHarness{
		hub:    network.NewBroadcaster(),
		pub:    &recordingPublisher{},
		runErr: make(chan error, 1),
	}
	h.s = NewSession(cfg, g, h.hub, h.pub)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.runErr <- h.s.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-h.s.Done()
	})
	return h
}

func (h *sessionHarness) send(t *testing.T, action domain.ActionType, player types.EntityID, payload any) api.ServerResponse {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := h.s.Submit(ctx, domain.InternalCommand{Action: action, Player: player, Payload: raw})
	require.NoError(t, err)
	return resp
}

func (h *sessionHarness) join(t *testing.T, name string) (types.EntityID, chan api.ServerResponse) {
	t.Helper()
	resp := h.send(t, domain.ActionJoin, types.NilEntityID, api.JoinPayload{Name: name})
	require.Equal(t, api.TypeWelcome, resp.Type, resp.Error)
	require.False(t, resp.PlayerID.IsNil())
	return resp.PlayerID, h.hub.Register(resp.PlayerID)
}

// await ждёт сообщение нужного типа в личном канале игрока.
func await(t *testing.T, ch chan api.ServerResponse, typ string) api.ServerResponse {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if msg.Type == typ {
				return msg
			}
		case <-timeout:
			t.Fatalf("no %s message", typ)
			return api.ServerResponse{}
		}
	}
}

func TestSession_JoinWelcome(t *testing.T) {
	h := startSession(t)

	resp := h.send(t, domain.ActionJoin, types.NilEntityID, api.JoinPayload{Name: "red"})
	require.Equal(t, api.TypeWelcome, resp.Type)
	assert.Equal(t, "TEAM_1", resp.Team)
	assert.Equal(t, 1, resp.Turn)
	require.NotNil(t, resp.Galaxy)
	assert.Len(t, resp.Galaxy.Nodes, 4)
	assert.Len(t, resp.Galaxy.Players, 1)

	again := h.send(t, domain.ActionJoin, resp.PlayerID, api.JoinPayload{Name: "red"})
	assert.Equal(t, api.TypeError, again.Type)
	assert.Equal(t, "conflict", again.ErrorKind)
}

func TestSession_RejectsBadRequests(t *testing.T) {
	h := startSession(t)

	resp := h.send(t, domain.ActionUnknown, types.NilEntityID, nil)
	assert.Equal(t, api.TypeError, resp.Type)
	assert.Equal(t, "validation", resp.ErrorKind)

	resp = h.send(t, domain.ActionSubmitTurn, types.NilEntityID, nil)
	assert.Equal(t, api.TypeError, resp.Type)
	assert.Equal(t, "forbidden", resp.ErrorKind)

	resp = h.send(t, domain.ActionJoin, types.NilEntityID, api.JoinPayload{Name: "  "})
	assert.Equal(t, "validation", resp.ErrorKind)

	resp = h.send(t, domain.ActionJoin, types.NilEntityID, nil)
	assert.Equal(t, "validation", resp.ErrorKind)
}

func TestSession_FullTurn(t *testing.T) {
	h := startSession(t)

	red, redInbox := h.join(t, "red")
	blue, blueInbox := h.join(t, "blue")

	state := h.send(t, domain.ActionSnapshot, types.NilEntityID, nil)
	require.Equal(t, api.TypeState, state.Type)
	var alpha, gamma api.NodeView
	for _, n := range state.Galaxy.Nodes {
		switch n.Name {
		case "Alpha":
			alpha = n
		case "Gamma":
			gamma = n
		}
	}
	require.False(t, alpha.Ship.IsNil())

	ack := h.send(t, domain.ActionCommand, red, api.CommandPacket{
		Kind: "MoveShip",
		Refs: []types.EntityID{red, gamma.ID, alpha.Ship},
	})
	require.Equal(t, api.TypeAck, ack.Type, ack.Error)
	assert.Equal(t, uint32(1), ack.CommandID)

	queued := h.send(t, domain.ActionSnapshot, types.NilEntityID, nil)
	require.Len(t, queued.Commands, 1)
	assert.Equal(t, "MoveShip", queued.Commands[0].Kind)

	require.Equal(t, api.TypeAck, h.send(t, domain.ActionSubmitTurn, red, nil).Type)
	require.Equal(t, api.TypeAck, h.send(t, domain.ActionSubmitTurn, blue, nil).Type)

	processed := await(t, redInbox, api.TypeTurnProcessed)
	require.Len(t, processed.Results, 1)
	assert.Empty(t, processed.Results[0].Error)

	blueProcessed := await(t, blueInbox, api.TypeTurnProcessed)
	assert.Empty(t, blueProcessed.Results)

	result := await(t, redInbox, api.TypeTurnResult)
	assert.Equal(t, 2, result.Turn)
	require.Len(t, result.Combat, 1)
	assert.Equal(t, "Gamma", result.Combat[0].NodeName)
	assert.Equal(t, "TEAM_1", result.Combat[0].Team)
	require.NotNil(t, result.Galaxy)
	assert.Equal(t, "IDLE", result.Galaxy.Phase)

	await(t, blueInbox, api.TypeTurnResult)

	require.Eventually(t, func() bool { return h.pub.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSession_LeaveAndCancel(t *testing.T) {
	h := startSession(t)
	red, _ := h.join(t, "red")

	resp := h.send(t, domain.ActionCancel, red, api.CancelPayload{ID: 7})
	assert.Equal(t, "not_found", resp.ErrorKind)

	resp = h.send(t, domain.ActionCancelAll, red, nil)
	assert.Equal(t, api.TypeAck, resp.Type)

	resp = h.send(t, domain.ActionLeave, red, nil)
	assert.Equal(t, api.TypeAck, resp.Type)
	assert.Equal(t, red, resp.PlayerID)

	resp = h.send(t, domain.ActionCancelTurn, red, nil)
	assert.Equal(t, "forbidden", resp.ErrorKind)
}

func TestSession_StopsOnCancel(t *testing.T) {
	h := startSession(t)
	h.cancel()

	select {
	case err := <-h.runErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	_, err := h.s.Submit(context.Background(), domain.InternalCommand{Action: domain.ActionSnapshot})
	assert.ErrorIs(t, err, ErrSessionClosed)
}
