package commands

import (
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// TrialBuildShip проверяет, может ли игрок построить корабль на узле.
// Возвращает причину отказа, понятную игроку.
func TrialBuildShip(g *domain.Galaxy, playerID, nodeID types.EntityID) error {
	player, ok := g.Player(playerID)
	if !ok {
		return errs.Validationf("Invalid player")
	}
	node, ok := g.Node(nodeID)
	if !ok {
		return errs.Validationf("Invalid target")
	}
	if !node.IsPlanet() {
		return errs.Validationf("Target is not a planet")
	}
	if !types.SameTeam(node.Team, player.Team) {
		return errs.Validationf("Planet is not on your team")
	}
	if node.HasShip() {
		return errs.Conflictf("Planet already has a ship")
	}
	if _, claimed := node.Claim(); claimed {
		return errs.Conflictf("Planet already has an incoming ship")
	}
	return nil
}

// TrialMoveShip проверяет, может ли игрок отправить корабль на узел.
func TrialMoveShip(g *domain.Galaxy, playerID, shipID, nodeID types.EntityID) error {
	player, ok := g.Player(playerID)
	if !ok {
		return errs.Validationf("Invalid player")
	}
	ship, ok := g.Ship(shipID)
	if !ok {
		return errs.Validationf("Invalid ship")
	}
	if _, ok := g.Node(nodeID); !ok {
		return errs.Validationf("Invalid target")
	}
	if !types.SameTeam(ship.Team, player.Team) {
		return errs.Validationf("Ship is not on your team")
	}
	if !g.IsNodeReachable(ship, nodeID) {
		return errs.Validationf("Target is not reachable")
	}
	return nil
}

// Trial прогоняет проверку для уже собранной команды перед постановкой
// в очередь. Неизвестные виды проверяются только в RegisterCommand.
func Trial(g *domain.Galaxy, c *Command) error {
	switch c.Kind() {
	case KindBuildShip:
		return TrialBuildShip(g, c.Player, c.Target)
	case KindMoveShip:
		return TrialMoveShip(g, c.Player, c.Ship, c.Target)
	}
	return nil
}
