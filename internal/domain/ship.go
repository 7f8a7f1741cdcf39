package domain

import "github.com/lumpybrain/DedMult/internal/core/types"

// DefaultShipPower — сила корабля по умолчанию.
const DefaultShipPower = 1

// Ship — корабль. Всегда пристыкован к узлу, кроме момента перелёта
// внутри разрешения боя.
type Ship struct {
	ID           types.EntityID
	Team         types.Team
	PreviousTeam types.Team
	Power        int
	Node         types.EntityID
	Flags        CommandFlags
	OwningPlayer types.EntityID
}

func (s *Ship) SetTeam(team types.Team) {
	if s.Team == team {
		return
	}
	s.PreviousTeam = s.Team
	s.Team = team
}

func (s *Ship) IsMoving() bool {
	return s.Flags.Has(FlagMovingShip)
}
