package commands

import (
	"fmt"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// MoveShip перемещает свой корабль на соседний узел.
var moveShipHandler = handler{
	flags:          domain.FlagMovingShip,
	minRefs:        3,
	initialize:     initMoveShip,
	validate:       validateMoveShip,
	run:            runMoveShip,
	onRegistered:   registerMoveShip,
	onUnregistered: unregisterMoveShip,
	describe:       describeMoveShip,
}

func initMoveShip(c *Command, p Params) error {
	if p.Ship.IsNil() {
		return errs.Validationf("initialize %s: nil ship", c.kind)
	}
	c.Ship = p.Ship
	return nil
}

func validateMoveShip(env *Env, c *Command) error {
	player, ok := env.Galaxy.Player(c.Player)
	if !ok {
		return errs.Stalef("%s: player %v no longer exists", c, c.Player)
	}
	ship, ok := env.Galaxy.Ship(c.Ship)
	if !ok {
		return errs.Stalef("%s: ship %v no longer exists", c, c.Ship)
	}
	if !types.SameTeam(ship.Team, player.Team) {
		return errs.Validationf("%s: ship belongs to %s, not %s", c, ship.Team, player.Team)
	}
	return nil
}

func runMoveShip(env *Env, c *Command) error {
	ship, ok := env.Galaxy.Ship(c.Ship)
	if !ok {
		return errs.Stalef("%s: ship %v no longer exists", c, c.Ship)
	}
	target, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return errs.Stalef("%s: target node %v no longer exists", c, c.Target)
	}

	if !ship.Node.IsNil() {
		if err := env.Lanes.ReserveShipTraversal(ship.ID, target.ID); err != nil {
			return err
		}
	}

	ship.Flags.Add(domain.FlagMovingShip)
	target.AddPendingShip(ship.ID, false)
	return nil
}

func registerMoveShip(env *Env, c *Command) error {
	ship, ok := env.Galaxy.Ship(c.Ship)
	if !ok {
		return errs.Stalef("%s: ship %v no longer exists", c, c.Ship)
	}
	origin, ok := env.Galaxy.Node(ship.Node)
	if !ok {
		return errs.Validationf("%s: ship %v is not docked", c, c.Ship)
	}
	target, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return errs.Stalef("%s: target node %v no longer exists", c, c.Target)
	}
	if !env.Galaxy.IsNodeReachable(ship, target.ID) {
		return errs.Validationf("%s: %s is not reachable from %s", c, target.Name, origin.Name)
	}

	if err := target.ClaimIncoming(c, domain.FlagMovingShip); err != nil {
		return err
	}
	if err := origin.Commands.Register(c); err != nil {
		_ = target.ReleaseIncoming(c, domain.FlagMovingShip)
		return err
	}
	c.origin = origin.ID
	return nil
}

func unregisterMoveShip(env *Env, c *Command) error {
	origin, ok := env.Galaxy.Node(c.origin)
	if !ok {
		return errs.Invariantf("%s: origin node %v is missing on unregister", c, c.origin)
	}
	origin.Commands.Unregister(c)

	target, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return nil
	}
	return target.ReleaseIncoming(c, domain.FlagMovingShip)
}

func describeMoveShip(env *Env, c *Command) string {
	return fmt.Sprintf("%s: %s moves %v from %s to %s",
		c, playerName(env, c.Player), c.Ship, nodeName(env, c.origin), nodeName(env, c.Target))
}
