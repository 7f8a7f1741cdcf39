package domain

import (
	"sort"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
)

// Galaxy — всё состояние матча: узлы, корабли, игроки и полосы.
// Владелец — горутина сессии, конкурентного доступа нет.
type Galaxy struct {
	Nodes   *types.Arena[*Node]
	Ships   *types.Arena[*Ship]
	Players *types.Arena[*Player]

	lanes []*Lane
}

func NewGalaxy() *Galaxy {
	return &Galaxy{
		Nodes:   types.NewArena[*Node](enums.EntityTypeNode),
		Ships:   types.NewArena[*Ship](enums.EntityTypeShip),
		Players: types.NewArena[*Player](enums.EntityTypePlayer),
	}
}

// AddNode создаёт узел.
func (g *Galaxy) AddNode(name string, kind enums.NodeKind, team types.Team) *Node {
	n := newNode(name, kind, team)
	n.ID = g.Nodes.Insert(n)
	return n
}

// Connect соединяет два узла полосой. Повторное соединение возвращает
// существующую полосу.
func (g *Galaxy) Connect(a, b types.EntityID) (*Lane, error) {
	na, ok := g.Node(a)
	if !ok {
		return nil, errs.NotFoundf("connect: unknown node %v", a)
	}
	nb, ok := g.Node(b)
	if !ok {
		return nil, errs.NotFoundf("connect: unknown node %v", b)
	}
	if a == b {
		return nil, errs.Validationf("connect: node %q cannot link to itself", na.Name)
	}
	if l, ok := na.lanes[b]; ok {
		return l, nil
	}

	l := &Lane{A: a, B: b}
	na.lanes[b] = l
	nb.lanes[a] = l
	g.lanes = append(g.lanes, l)
	return l, nil
}

func (g *Galaxy) Node(id types.EntityID) (*Node, bool) {
	return g.Nodes.Get(id)
}

func (g *Galaxy) Ship(id types.EntityID) (*Ship, bool) {
	return g.Ships.Get(id)
}

func (g *Galaxy) Player(id types.EntityID) (*Player, bool) {
	return g.Players.Get(id)
}

// NodeByName — линейный поиск, нужен загрузчику карты и тестам.
func (g *Galaxy) NodeByName(name string) (*Node, bool) {
	var found *Node
	g.Nodes.Each(func(_ types.EntityID, n *Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// AllNodes возвращает узлы в порядке слотов арены.
func (g *Galaxy) AllNodes() []*Node {
	out := make([]*Node, 0, g.Nodes.Len())
	g.Nodes.Each(func(_ types.EntityID, n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

func (g *Galaxy) AllShips() []*Ship {
	out := make([]*Ship, 0, g.Ships.Len())
	g.Ships.Each(func(_ types.EntityID, s *Ship) bool {
		out = append(out, s)
		return true
	})
	return out
}

func (g *Galaxy) AllPlayers() []*Player {
	out := make([]*Player, 0, g.Players.Len())
	g.Players.Each(func(_ types.EntityID, p *Player) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (g *Galaxy) Lanes() []*Lane {
	return g.lanes
}

// AddPlayer регистрирует игрока с заданной командой.
func (g *Galaxy) AddPlayer(name string, team types.Team) *Player {
	p := &Player{Name: name, Team: team, Active: true}
	p.ID = g.Players.Insert(p)
	return p
}

// SpawnShip создаёт корабль, ещё не пристыкованный ни к одному узлу.
func (g *Galaxy) SpawnShip(team types.Team, power int, owner types.EntityID) *Ship {
	if power < 1 {
		power = DefaultShipPower
	}
	s := &Ship{Team: team, Power: power, OwningPlayer: owner}
	s.ID = g.Ships.Insert(s)
	return s
}

// SetCurrentShip стыкует корабль к узлу.
//
// Корабль отстыковывается от прежнего узла, а прежний корабль узла (если
// он есть) - от этого узла. Узел переходит к команде корабля вместе с
// игроком-владельцем.
func (g *Galaxy) SetCurrentShip(node *Node, ship *Ship) {
	if prev, ok := g.Node(ship.Node); ok && prev.Ship == ship.ID {
		g.RemoveShip(prev)
	}
	if node.HasShip() && node.Ship != ship.ID {
		g.RemoveShip(node)
	}

	node.Ship = ship.ID
	node.Flags.Add(FlagHasShip)
	ship.Node = node.ID

	if !types.SameTeam(node.Team, ship.Team) {
		node.SetTeam(ship.Team)
	}
	node.OwningPlayer = ship.OwningPlayer
}

// RemoveShip отстыковывает корабль от узла, не уничтожая его.
func (g *Galaxy) RemoveShip(node *Node) {
	if s, ok := g.Ship(node.Ship); ok && s.Node == node.ID {
		s.Node = types.NilEntityID
	}
	node.Ship = types.NilEntityID
	node.Flags.Remove(FlagHasShip)
}

// DestroyShip отстыковывает и удаляет корабль. Все старые ссылки на него
// после этого перестают резолвиться.
func (g *Galaxy) DestroyShip(id types.EntityID) bool {
	s, ok := g.Ship(id)
	if !ok {
		return false
	}
	if n, ok := g.Node(s.Node); ok && n.Ship == id {
		g.RemoveShip(n)
	}
	return g.Ships.Remove(id)
}

// IsNodeReachable — можно ли кораблю долететь до узла за один ход:
// узел соседний и не совпадает с текущим.
func (g *Galaxy) IsNodeReachable(ship *Ship, target types.EntityID) bool {
	if ship.Node == target {
		return false
	}
	from, ok := g.Node(ship.Node)
	if !ok {
		return false
	}
	_, ok = from.LaneTo(target)
	return ok
}

func sortIDs(ids []types.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Index() < ids[j].Index() })
}
