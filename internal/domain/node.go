package domain

import (
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
)

// PendingShip — корабль, прибывающий на узел в этом ходу.
// Supporting == true: корабль только добавляет силу своей команде
// и не может занять узел.
type PendingShip struct {
	Ship       types.EntityID
	Supporting bool
}

// Node — узел галактики (планета или путевая точка).
type Node struct {
	ID           types.EntityID
	Name         string
	Kind         enums.NodeKind
	Team         types.Team
	PreviousTeam types.Team
	OwningPlayer types.EntityID

	// Ship — пристыкованный корабль, не больше одного.
	Ship types.EntityID

	Flags    CommandFlags
	Commands ActiveCommands

	// Pending — прибытия текущего хода в порядке добавления.
	Pending []PendingShip

	claim CommandHandle
	lanes map[types.EntityID]*Lane
}

func newNode(name string, kind enums.NodeKind, team types.Team) *Node {
	return &Node{
		Name:  name,
		Kind:  kind,
		Team:  team,
		lanes: make(map[types.EntityID]*Lane),
	}
}

func (n *Node) IsPlanet() bool {
	return n.Kind == enums.NodeKindPlanet
}

// HasShip читает флаг стыковки, который ведут SetCurrentShip и RemoveShip.
func (n *Node) HasShip() bool {
	return n.Flags.Has(FlagHasShip)
}

// SetTeam меняет владельца узла, запоминая предыдущего.
func (n *Node) SetTeam(team types.Team) {
	if n.Team == team {
		return
	}
	n.PreviousTeam = n.Team
	n.Team = team
}

// AddPendingShip добавляет прибытие. Повторное добавление того же корабля
// перезаписывает признак поддержки.
func (n *Node) AddPendingShip(ship types.EntityID, supporting bool) {
	for i := range n.Pending {
		if n.Pending[i].Ship == ship {
			n.Pending[i].Supporting = supporting
			return
		}
	}
	n.Pending = append(n.Pending, PendingShip{Ship: ship, Supporting: supporting})
}

// RemovePendingShip убирает прибытие. false, если корабля не было.
func (n *Node) RemovePendingShip(ship types.EntityID) bool {
	for i := range n.Pending {
		if n.Pending[i].Ship == ship {
			n.Pending = append(n.Pending[:i], n.Pending[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) ClearPendingShips() {
	n.Pending = nil
}

// ClaimIncoming резервирует узел под входящий корабль.
// Одновременно допускается только одна заявка на узел.
func (n *Node) ClaimIncoming(cmd CommandHandle, flags CommandFlags) error {
	if n.claim != nil && n.claim != cmd {
		return errs.Conflictf("node %q already claimed by %s", n.Name, n.claim)
	}
	n.claim = cmd
	n.Flags.Add(flags)
	return nil
}

// ReleaseIncoming снимает заявку. Снять её может только команда-владелец.
func (n *Node) ReleaseIncoming(cmd CommandHandle, flags CommandFlags) error {
	if n.claim != cmd {
		return errs.Conflictf("node %q: claim is not held by %s", n.Name, cmd)
	}
	n.claim = nil
	n.Flags.Remove(flags)
	return nil
}

// Claim возвращает команду, держащую заявку на узел.
func (n *Node) Claim() (CommandHandle, bool) {
	return n.claim, n.claim != nil
}

// LaneTo возвращает полосу до соседнего узла.
func (n *Node) LaneTo(other types.EntityID) (*Lane, bool) {
	l, ok := n.lanes[other]
	return l, ok
}

// HasLaneTable — false для узлов, созданных в обход Galaxy.
func (n *Node) HasLaneTable() bool {
	return n.lanes != nil
}

// Neighbors возвращает соседей в порядке индексов слотов.
func (n *Node) Neighbors() []types.EntityID {
	out := make([]types.EntityID, 0, len(n.lanes))
	for id := range n.lanes {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}
