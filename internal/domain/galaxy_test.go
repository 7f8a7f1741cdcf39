package domain

import (
	"testing"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
)

type fakeCommand struct {
	kind string
	name string
}

func (f *fakeCommand) CommandKind() string { return f.kind }
func (f *fakeCommand) String() string      { return f.name }

func TestGalaxy_Connect(t *testing.T) {
	g := NewGalaxy()
	a := g.AddNode("A", enums.NodeKindPlanet, types.TeamUnowned)
	b := g.AddNode("B", enums.NodeKindWaypoint, types.TeamUnowned)

	l, err := g.Connect(a.ID, b.ID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	again, err := g.Connect(b.ID, a.ID)
	if err != nil || again != l {
		t.Errorf("second Connect() must return the same lane")
	}
	if len(g.Lanes()) != 1 {
		t.Errorf("Lanes() = %d, want 1", len(g.Lanes()))
	}
	if l.Other(a.ID) != b.ID || l.Other(b.ID) != a.ID {
		t.Error("Other() mismatch")
	}
	if _, err := g.Connect(a.ID, a.ID); !errs.Is(err, errs.KindValidation) {
		t.Errorf("self link error = %v", err)
	}
	if _, err := g.Connect(a.ID, types.NilEntityID); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("unknown node error = %v", err)
	}
}

func TestGalaxy_SetCurrentShip(t *testing.T) {
	g := NewGalaxy()
	p := g.AddPlayer("red", types.TeamOne)
	a := g.AddNode("A", enums.NodeKindPlanet, types.TeamOne)
	b := g.AddNode("B", enums.NodeKindPlanet, types.TeamTwo)
	s := g.SpawnShip(types.TeamOne, 1, p.ID)

	g.SetCurrentShip(a, s)
	if a.Ship != s.ID || s.Node != a.ID {
		t.Fatal("ship not docked at A")
	}

	g.SetCurrentShip(b, s)
	if a.HasShip() {
		t.Error("ship still docked at A after moving")
	}
	if b.Ship != s.ID {
		t.Error("ship not docked at B")
	}
	if b.Team != types.TeamOne || b.PreviousTeam != types.TeamTwo {
		t.Errorf("B team = %v (prev %v), want TEAM_1 (prev TEAM_2)", b.Team, b.PreviousTeam)
	}
	if b.OwningPlayer != p.ID {
		t.Error("owning player not cascaded")
	}
	if a.Team != types.TeamOne {
		t.Error("A must keep its owner after the ship leaves")
	}
}

func TestGalaxy_RemoveShipKeepsShipAlive(t *testing.T) {
	g := NewGalaxy()
	a := g.AddNode("A", enums.NodeKindPlanet, types.TeamOne)
	b := g.AddNode("B", enums.NodeKindPlanet, types.TeamOne)
	s := g.SpawnShip(types.TeamOne, 1, types.NilEntityID)
	other := g.SpawnShip(types.TeamTwo, 1, types.NilEntityID)

	g.SetCurrentShip(a, s)
	if !a.Flags.Has(FlagHasShip) {
		t.Fatal("docking must set HAS_SHIP")
	}

	g.RemoveShip(a)
	if a.HasShip() || a.Flags.Has(FlagHasShip) || !a.Ship.IsNil() {
		t.Error("node still holds the ship after RemoveShip")
	}
	if !s.Node.IsNil() {
		t.Error("ship still points at the node")
	}
	if _, ok := g.Ship(s.ID); !ok {
		t.Error("RemoveShip must not destroy the ship")
	}

	// стыковка на занятый узел отстыковывает прежний корабль
	g.SetCurrentShip(b, s)
	g.SetCurrentShip(b, other)
	if b.Ship != other.ID || !s.Node.IsNil() {
		t.Errorf("B ship = %v, displaced ship node = %v", b.Ship, s.Node)
	}
	if !b.HasShip() {
		t.Error("B lost HAS_SHIP")
	}
}

func TestGalaxy_DestroyShip(t *testing.T) {
	g := NewGalaxy()
	a := g.AddNode("A", enums.NodeKindPlanet, types.TeamOne)
	s := g.SpawnShip(types.TeamOne, 0, types.NilEntityID)
	if s.Power != DefaultShipPower {
		t.Errorf("Power = %d, want default", s.Power)
	}
	g.SetCurrentShip(a, s)

	id := s.ID
	if !g.DestroyShip(id) {
		t.Fatal("DestroyShip() = false")
	}
	if a.HasShip() || !a.Ship.IsNil() {
		t.Error("node still references destroyed ship")
	}
	if _, ok := g.Ship(id); ok {
		t.Error("destroyed ship still resolves")
	}

	next := g.SpawnShip(types.TeamTwo, 1, types.NilEntityID)
	if next.ID == id {
		t.Error("recycled slot produced the same id")
	}
	if _, ok := g.Ship(id); ok {
		t.Error("stale id resolves to recycled slot")
	}
}

func TestGalaxy_IsNodeReachable(t *testing.T) {
	g := NewGalaxy()
	a := g.AddNode("A", enums.NodeKindPlanet, types.TeamOne)
	b := g.AddNode("B", enums.NodeKindPlanet, types.TeamOne)
	c := g.AddNode("C", enums.NodeKindPlanet, types.TeamOne)
	_, _ = g.Connect(a.ID, b.ID)
	s := g.SpawnShip(types.TeamOne, 1, types.NilEntityID)
	g.SetCurrentShip(a, s)

	if !g.IsNodeReachable(s, b.ID) {
		t.Error("adjacent node must be reachable")
	}
	if g.IsNodeReachable(s, a.ID) {
		t.Error("current node must not be reachable")
	}
	if g.IsNodeReachable(s, c.ID) {
		t.Error("unconnected node must not be reachable")
	}
}

func TestNode_PendingShips(t *testing.T) {
	g := NewGalaxy()
	n := g.AddNode("A", enums.NodeKindPlanet, types.TeamUnowned)
	s1 := g.SpawnShip(types.TeamOne, 1, types.NilEntityID)
	s2 := g.SpawnShip(types.TeamTwo, 1, types.NilEntityID)

	n.AddPendingShip(s1.ID, false)
	n.AddPendingShip(s2.ID, true)
	n.AddPendingShip(s1.ID, true)

	if len(n.Pending) != 2 {
		t.Fatalf("Pending = %d, want 2", len(n.Pending))
	}
	if !n.Pending[0].Supporting || n.Pending[0].Ship != s1.ID {
		t.Error("re-adding a ship must overwrite in place")
	}
	if !n.RemovePendingShip(s2.ID) || n.RemovePendingShip(s2.ID) {
		t.Error("RemovePendingShip() result mismatch")
	}
	n.ClearPendingShips()
	if len(n.Pending) != 0 {
		t.Error("ClearPendingShips() left entries")
	}
}

func TestNode_IncomingClaim(t *testing.T) {
	g := NewGalaxy()
	n := g.AddNode("A", enums.NodeKindPlanet, types.TeamUnowned)
	first := &fakeCommand{kind: "MoveShip", name: "first"}
	second := &fakeCommand{kind: "BuildShip", name: "second"}

	if err := n.ClaimIncoming(first, FlagMovingShip); err != nil {
		t.Fatalf("ClaimIncoming() error = %v", err)
	}
	if !n.Flags.Has(FlagMovingShip) {
		t.Error("claim flag not set")
	}
	if err := n.ClaimIncoming(second, FlagMovingShip); !errs.Is(err, errs.KindConflict) {
		t.Errorf("second claim error = %v, want conflict", err)
	}
	if err := n.ReleaseIncoming(second, FlagMovingShip); !errs.Is(err, errs.KindConflict) {
		t.Errorf("foreign release error = %v, want conflict", err)
	}
	if err := n.ReleaseIncoming(first, FlagMovingShip); err != nil {
		t.Errorf("ReleaseIncoming() error = %v", err)
	}
	if n.Flags.Has(FlagMovingShip) {
		t.Error("claim flag not cleared")
	}
	if _, ok := n.Claim(); ok {
		t.Error("claim still held")
	}
}

func TestActiveCommands_RejectsDuplicateKind(t *testing.T) {
	var reg ActiveCommands
	a := &fakeCommand{kind: "MoveShip", name: "a"}
	b := &fakeCommand{kind: "MoveShip", name: "b"}
	c := &fakeCommand{kind: "BuildShip", name: "c"}

	if err := reg.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(b); !errs.Is(err, errs.KindConflict) {
		t.Errorf("duplicate kind error = %v", err)
	}
	if err := reg.Register(c); err != nil {
		t.Errorf("other kind error = %v", err)
	}
	if !reg.Unregister(a) || reg.Unregister(a) {
		t.Error("Unregister() result mismatch")
	}
	if _, ok := reg.Find("BuildShip"); !ok || reg.Len() != 1 {
		t.Error("Find() after unregister mismatch")
	}
}

func TestCommandFlags(t *testing.T) {
	var f CommandFlags
	if f.Add(FlagResolved) {
		t.Error("Add() reported existing flag on empty mask")
	}
	if !f.Add(FlagResolved) {
		t.Error("Add() did not report existing flag")
	}
	f.Add(FlagMovingShip)
	if got := f.String(); got != "RESOLVED|MOVING_SHIP" {
		t.Errorf("String() = %q", got)
	}
	if !f.Remove(FlagResolved) || f.Remove(FlagResolved) {
		t.Error("Remove() result mismatch")
	}
	if f.Has(FlagResolved) || !f.Has(FlagMovingShip) {
		t.Error("Remove() cleared wrong bits")
	}
}
