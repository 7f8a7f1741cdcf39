package commands

import (
	"fmt"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// BuildShip строит корабль на своей планете.
var buildShipHandler = handler{
	flags:          domain.FlagMovingShip,
	minRefs:        2,
	validate:       validateBuildShip,
	run:            runBuildShip,
	onRegistered:   registerBuildShip,
	onUnregistered: unregisterBuildShip,
	describe:       describeBuildShip,
}

func validateBuildShip(env *Env, c *Command) error {
	player, node, err := validateBase(env, c)
	if err != nil {
		return err
	}
	if !node.IsPlanet() {
		return errs.Validationf("%s: %q is not a planet", c, node.Name)
	}
	if !types.SameTeam(node.Team, player.Team) {
		return errs.Validationf("%s: planet %q belongs to %s, not %s", c, node.Name, node.Team, player.Team)
	}
	return nil
}

func runBuildShip(env *Env, c *Command) error {
	if !env.Authoritative {
		return errs.Forbiddenf("%s: ships can only be built on the authoritative server", c)
	}

	node, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return errs.Stalef("%s: target node %v no longer exists", c, c.Target)
	}
	if !node.IsPlanet() {
		return errs.Validationf("%s: %q is not a planet", c, node.Name)
	}
	if node.HasShip() {
		return errs.Conflictf("%s: planet %q already has a ship", c, node.Name)
	}
	player, ok := env.Galaxy.Player(c.Player)
	if !ok {
		return errs.Stalef("%s: player %v no longer exists", c, c.Player)
	}

	ship := env.Galaxy.SpawnShip(player.Team, env.ShipPower, player.ID)
	env.Galaxy.SetCurrentShip(node, ship)
	return nil
}

func registerBuildShip(env *Env, c *Command) error {
	node, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return errs.Stalef("%s: target node %v no longer exists", c, c.Target)
	}
	if err := node.ClaimIncoming(c, domain.FlagMovingShip); err != nil {
		return err
	}
	if err := node.Commands.Register(c); err != nil {
		_ = node.ReleaseIncoming(c, domain.FlagMovingShip)
		return err
	}
	return nil
}

func unregisterBuildShip(env *Env, c *Command) error {
	node, ok := env.Galaxy.Node(c.Target)
	if !ok {
		// Узла больше нет, снимать нечего.
		return nil
	}
	node.Commands.Unregister(c)
	return node.ReleaseIncoming(c, domain.FlagMovingShip)
}

func describeBuildShip(env *Env, c *Command) string {
	return fmt.Sprintf("%s: %s builds a ship at %s",
		c, playerName(env, c.Player), nodeName(env, c.Target))
}
