package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/systems"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitForTests()
	os.Exit(m.Run())
}

// testLayout - Alpha(1) - Gamma - Beta(2), Alpha - Beta, Alpha - Delta(1).
// На Alpha и Beta стоят корабли, Delta пустая.
func testLayout() *Layout {
	return &Layout{
		Nodes: []NodeLayout{
			{Name: "Alpha", Kind: "PLANET", Team: "TEAM_1", Ship: &ShipLayout{Power: 1}},
			{Name: "Beta", Kind: "PLANET", Team: "TEAM_2", Ship: &ShipLayout{Power: 1}},
			{Name: "Gamma", Kind: "WAYPOINT"},
			{Name: "Delta", Kind: "PLANET", Team: "TEAM_1"},
		},
		Lanes: [][2]string{
			{"Alpha", "Gamma"},
			{"Gamma", "Beta"},
			{"Alpha", "Beta"},
			{"Alpha", "Delta"},
		},
	}
}

// match - всё состояние матча без сессии и сети.
type match struct {
	g         *domain.Galaxy
	env       *commands.Env
	queue     *commands.Queue
	processor *Processor
	turns     *TurnTracker

	processed []commands.Report
	finished  [][]systems.CombatOutcome
}

func newMatch(t *testing.T) *match {
	t.Helper()

	g, err := testLayout().Build(1)
	require.NoError(t, err)

	m := &match{g: g}
	m.env = commands.NewEnv(g, 1)
	m.queue = commands.NewQueue(m.env, commands.DefaultPriorities())
	m.processor = NewProcessor(g, m.env.Lanes, systems.NewCombatResolver(g, systems.HomePowerActual))
	m.turns = NewTurnTracker(g, m.queue, m.processor, 8)

	m.turns.OnProcessed(func(r commands.Report) { m.processed = append(m.processed, r) })
	m.processor.OnFinished(func(o []systems.CombatOutcome) {
		m.turns.FinishTurn()
		m.finished = append(m.finished, o)
	})
	return m
}

func (m *match) node(t *testing.T, name string) *domain.Node {
	t.Helper()
	n, ok := m.g.NodeByName(name)
	require.True(t, ok, "node %s", name)
	return n
}

func (m *match) ship(t *testing.T, node string) *domain.Ship {
	t.Helper()
	s, ok := m.g.Ship(m.node(t, node).Ship)
	require.True(t, ok, "ship at %s", node)
	return s
}

func (m *match) join(t *testing.T, name string) *domain.Player {
	t.Helper()
	p, err := m.turns.Join(name, false)
	require.NoError(t, err)
	return p
}

func (m *match) movePacket(p *domain.Player, ship *domain.Ship, to *domain.Node) api.CommandPacket {
	return api.CommandPacket{Kind: "MoveShip", Refs: []types.EntityID{p.ID, to.ID, ship.ID}}
}

func (m *match) buildPacket(p *domain.Player, at *domain.Node) api.CommandPacket {
	return api.CommandPacket{Kind: "BuildShip", Refs: []types.EntityID{p.ID, at.ID}}
}

// drain крутит Processor до возврата в Idle.
func (m *match) drain(t *testing.T) int {
	t.Helper()
	ticks := 0
	for m.processor.Busy() {
		m.processor.Tick()
		ticks++
		require.Less(t, ticks, 100, "processor did not finish")
	}
	return ticks
}
