package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// launch повторяет то, что делает MoveShip при исполнении.
func launch(s *domain.Ship, to *domain.Node) {
	s.Flags.Add(domain.FlagMovingShip)
	to.AddPendingShip(s.ID, false)
}

func TestProcessor_EmptyTurn(t *testing.T) {
	m := newMatch(t)

	require.Equal(t, PhaseIdle, m.processor.Phase())
	require.True(t, m.processor.Start())
	assert.Equal(t, PhaseMoveShips, m.processor.Phase())
	assert.False(t, m.processor.Start(), "second start while busy")

	m.processor.Tick()
	assert.Equal(t, PhaseCombat, m.processor.Phase())

	m.processor.Tick()
	assert.Equal(t, PhaseIdle, m.processor.Phase())
	require.Len(t, m.finished, 1)
	assert.Empty(t, m.finished[0])
	assert.Equal(t, 2, m.turns.Turn())
}

func TestProcessor_TickWhileIdleDoesNothing(t *testing.T) {
	m := newMatch(t)
	m.processor.Tick()
	assert.Equal(t, PhaseIdle, m.processor.Phase())
	assert.Empty(t, m.finished)
}

func TestProcessor_ProgressiveResolution(t *testing.T) {
	m := newMatch(t)
	alpha, beta, gamma := m.node(t, "Alpha"), m.node(t, "Beta"), m.node(t, "Gamma")
	a, b := m.ship(t, "Alpha"), m.ship(t, "Beta")

	require.NoError(t, m.env.Lanes.ReserveShipTraversal(a.ID, gamma.ID))
	require.NoError(t, m.env.Lanes.ReserveShipTraversal(b.ID, alpha.ID))
	launch(a, gamma)
	launch(b, alpha)

	m.processor.Start()
	m.processor.Tick() // MoveShips -> Combat
	m.processor.Tick()

	// Alpha ждёт: её корабль улетает, а исход на Alpha ничейный.
	assert.Equal(t, PhaseCombat, m.processor.Phase())
	assert.False(t, alpha.Flags.Has(domain.FlagResolved))
	assert.True(t, gamma.Flags.Has(domain.FlagResolved))
	assert.Equal(t, a.ID, gamma.Ship)
	assert.True(t, alpha.Ship.IsNil())

	m.processor.Tick()
	require.Equal(t, PhaseIdle, m.processor.Phase())

	assert.Equal(t, b.ID, alpha.Ship)
	assert.Equal(t, types.TeamTwo, alpha.Team)
	assert.True(t, beta.Ship.IsNil())
	assert.Equal(t, types.TeamOne, gamma.Team)

	for _, n := range m.g.AllNodes() {
		assert.False(t, n.Flags.Has(domain.FlagResolved), n.Name)
		assert.Empty(t, n.Pending, n.Name)
	}
	for _, s := range m.g.AllShips() {
		assert.False(t, s.IsMoving())
	}
	for _, l := range m.g.Lanes() {
		assert.False(t, l.IsReserved())
	}

	require.Len(t, m.finished, 1)
	outcomes := m.finished[0]
	require.Len(t, outcomes, 2)
	assert.Equal(t, "Gamma", outcomes[0].NodeName)
	assert.Equal(t, "Alpha", outcomes[1].NodeName)
	assert.True(t, outcomes[1].Captured())
}

func TestProcessor_ForcedResolutionBreaksCycle(t *testing.T) {
	m := newMatch(t)
	alpha, beta := m.node(t, "Alpha"), m.node(t, "Beta")
	a, b := m.ship(t, "Alpha"), m.ship(t, "Beta")
	a.Power = 2

	// Корабли меняются местами: ни один узел не разрешим независимо.
	launch(a, beta)
	launch(b, alpha)

	m.processor.Start()
	m.processor.Tick()
	m.processor.Tick()

	assert.Equal(t, PhaseCombat, m.processor.Phase())
	assert.False(t, alpha.Flags.Has(domain.FlagResolved))
	assert.False(t, beta.Flags.Has(domain.FlagResolved))

	m.processor.Tick()
	require.Equal(t, PhaseIdle, m.processor.Phase())

	// Alpha разрешается первой (порядок слотов): A удерживает её,
	// затем на Beta A побеждает B и перелетает.
	assert.Equal(t, a.ID, beta.Ship)
	assert.Equal(t, types.TeamOne, beta.Team)
	assert.True(t, alpha.Ship.IsNil())
	assert.Equal(t, types.TeamOne, alpha.Team)

	_, alive := m.g.Ship(b.ID)
	assert.False(t, alive, "B destroyed")

	require.Len(t, m.finished, 1)
	outcomes := m.finished[0]
	require.Len(t, outcomes, 2)
	assert.Equal(t, "Alpha", outcomes[0].NodeName)
	assert.False(t, outcomes[0].Captured())
	assert.Equal(t, "Beta", outcomes[1].NodeName)
	assert.Equal(t, b.ID, outcomes[1].Destroyed)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "IDLE", PhaseIdle.String())
	assert.Equal(t, "MOVE_SHIPS", PhaseMoveShips.String())
	assert.Equal(t, "COMBAT", PhaseCombat.String())
	assert.Equal(t, "UNKNOWN", Phase(42).String())
}
