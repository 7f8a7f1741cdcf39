package agent

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitForTests()
	os.Exit(m.Run())
}

func nodeID(i uint32) types.EntityID {
	return types.PackEntityID(enums.EntityTypeNode, 1, i)
}

func shipID(i uint32) types.EntityID {
	return types.PackEntityID(enums.EntityTypeShip, 1, i)
}

func TestPlan(t *testing.T) {
	me := types.PackEntityID(enums.EntityTypePlayer, 1, 0)
	home, empty, enemy, mine, waypoint := nodeID(0), nodeID(1), nodeID(2), nodeID(3), nodeID(4)

	view := api.GalaxyView{
		Turn:  3,
		Phase: "IDLE",
		Nodes: []api.NodeView{
			{ID: home, Name: "Home", Kind: "PLANET", Team: "TEAM_1", Ship: shipID(0)},
			{ID: empty, Name: "Empty", Kind: "PLANET", Team: "UNOWNED"},
			{ID: enemy, Name: "Enemy", Kind: "PLANET", Team: "TEAM_2", Ship: shipID(1)},
			{ID: mine, Name: "Mine", Kind: "PLANET", Team: "TEAM_1"},
			{ID: waypoint, Name: "Waypoint", Kind: "WAYPOINT", Team: "UNOWNED"},
		},
		Ships: []api.ShipView{
			{ID: shipID(0), Team: "TEAM_1", Power: 1, Node: home},
			{ID: shipID(1), Team: "TEAM_2", Power: 1, Node: enemy},
		},
		Lanes: []api.LaneView{
			{A: home, B: enemy},
			{A: home, B: empty},
			{A: home, B: mine},
		},
	}

	orders := Plan(view, me, "TEAM_1")
	require.Len(t, orders, 2)

	assert.Equal(t, "BuildShip", orders[0].Kind)
	assert.Equal(t, []types.EntityID{me, mine}, orders[0].Refs)

	// пустой чужой узел важнее занятого
	assert.Equal(t, "MoveShip", orders[1].Kind)
	assert.Equal(t, []types.EntityID{me, empty, shipID(0)}, orders[1].Refs)
}

func TestPlan_SkipsClaimedAndBusy(t *testing.T) {
	me := types.PackEntityID(enums.EntityTypePlayer, 1, 0)
	home, target := nodeID(0), nodeID(1)

	view := api.GalaxyView{
		Nodes: []api.NodeView{
			{ID: home, Name: "Home", Kind: "PLANET", Team: "TEAM_1", Ship: shipID(0)},
			{ID: target, Name: "Target", Kind: "PLANET", Team: "UNOWNED", Flags: "MOVING_SHIP"},
		},
		Ships: []api.ShipView{{ID: shipID(0), Team: "TEAM_1", Node: home}},
		Lanes: []api.LaneView{{A: home, B: target}},
	}
	assert.Empty(t, Plan(view, me, "TEAM_1"))

	view.Nodes[1].Flags = ""
	view.Ships[0].Moving = true
	assert.Empty(t, Plan(view, me, "TEAM_1"))
}

func TestHasHumans(t *testing.T) {
	view := api.GalaxyView{Players: []api.PlayerView{{Bot: true, Active: true}, {Active: false}}}
	assert.False(t, hasHumans(view))

	view.Players = append(view.Players, api.PlayerView{Active: true})
	assert.True(t, hasHumans(view))
}

type match struct {
	session *engine.Session
	hub     *network.Broadcaster
}

func startMatch(t *testing.T) *match {
	t.Helper()

	g, err := engine.DemoLayout().Build(1)
	require.NoError(t, err)

	cfg := engine.NewConfig()
	cfg.Tick = 5 * time.Millisecond

	m := &match{hub: network.NewBroadcaster()}
	m.session = engine.NewSession(cfg, g, m.hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = m.session.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-m.session.Done()
	})
	return m
}

func (m *match) send(t *testing.T, action domain.ActionType, player types.EntityID, payload any) api.ServerResponse {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := m.session.Submit(ctx, domain.InternalCommand{Action: action, Player: player, Payload: raw})
	require.NoError(t, err)
	return resp
}

func (m *match) galaxy(t *testing.T) api.GalaxyView {
	t.Helper()
	resp := m.send(t, domain.ActionSnapshot, types.NilEntityID, nil)
	require.NotNil(t, resp.Galaxy)
	return *resp.Galaxy
}

func runBot(t *testing.T, m *match) (*Bot, context.CancelFunc, chan error) {
	t.Helper()

	bot := NewBot("bot-1", m.session, m.hub)
	bot.Think = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()
	t.Cleanup(cancel)

	require.Eventually(t, func() bool {
		for _, p := range m.galaxy(t).Players {
			if p.Bot && p.Active {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	return bot, cancel, done
}

func TestBot_WaitsForHumans(t *testing.T) {
	m := startMatch(t)
	runBot(t, m)

	time.Sleep(50 * time.Millisecond)
	view := m.galaxy(t)
	assert.Equal(t, 1, view.Turn)
	for _, p := range view.Players {
		assert.False(t, p.Submitted)
	}
}

func TestBot_PlaysWithHuman(t *testing.T) {
	m := startMatch(t)
	runBot(t, m)

	welcome := m.send(t, domain.ActionJoin, types.NilEntityID, api.JoinPayload{Name: "human"})
	require.Equal(t, api.TypeWelcome, welcome.Type)

	ack := m.send(t, domain.ActionSubmitTurn, welcome.PlayerID, nil)
	require.Equal(t, api.TypeAck, ack.Type)

	require.Eventually(t, func() bool {
		return m.galaxy(t).Turn >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBot_LeavesOnCancel(t *testing.T) {
	m := startMatch(t)
	bot, cancel, done := runBot(t, m)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}

	for _, p := range m.galaxy(t).Players {
		if p.ID == bot.Player() {
			assert.False(t, p.Active)
		}
	}
	assert.False(t, m.hub.HasSubscriber(bot.Player()))
}
