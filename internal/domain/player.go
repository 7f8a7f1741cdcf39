package domain

import "github.com/lumpybrain/DedMult/internal/core/types"

// Player — участник матча.
type Player struct {
	ID            types.EntityID
	Name          string
	Team          types.Team
	PreviousTeam  types.Team
	TurnSubmitted bool
	Active        bool
	Bot           bool
}

func (p *Player) SetTeam(team types.Team) {
	if p.Team == team {
		return
	}
	p.PreviousTeam = p.Team
	p.Team = team
}
