package engine

import (
	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/systems"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// BuildGalaxyView создает "снимок" галактики. Порядок узлов, кораблей и
// игроков совпадает с порядком слотов арены.
func BuildGalaxyView(g *domain.Galaxy, turn int, phase Phase) api.GalaxyView {
	view := api.GalaxyView{
		Turn:    turn,
		Phase:   phase.String(),
		Nodes:   []api.NodeView{},
		Ships:   []api.ShipView{},
		Lanes:   []api.LaneView{},
		Players: []api.PlayerView{},
	}

	for _, n := range g.AllNodes() {
		nv := api.NodeView{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     n.Kind.String(),
			Team:     n.Team.String(),
			Ship:     n.Ship,
			Commands: n.Commands.Kinds(),
		}
		if n.Flags != domain.FlagNone {
			nv.Flags = n.Flags.String()
		}
		view.Nodes = append(view.Nodes, nv)
	}

	for _, s := range g.AllShips() {
		view.Ships = append(view.Ships, api.ShipView{
			ID:     s.ID,
			Team:   s.Team.String(),
			Power:  s.Power,
			Node:   s.Node,
			Owner:  s.OwningPlayer,
			Moving: s.IsMoving(),
		})
	}

	for _, l := range g.Lanes() {
		view.Lanes = append(view.Lanes, api.LaneView{A: l.A, B: l.B, Traversing: l.Traversing})
	}

	for _, p := range g.AllPlayers() {
		view.Players = append(view.Players, api.PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Team:      p.Team.String(),
			Submitted: p.TurnSubmitted,
			Active:    p.Active,
			Bot:       p.Bot,
		})
	}

	return view
}

// BuildQueueView описывает команды очереди в порядке регистрации.
func BuildQueueView(q *commands.Queue) []api.CommandView {
	active := q.Active()
	out := make([]api.CommandView, 0, len(active))
	for _, c := range active {
		out = append(out, api.CommandView{
			ID:          uint32(c.ID()),
			Kind:        c.Kind().String(),
			Priority:    c.Priority(),
			Description: c.Describe(q.Env()),
			Packet:      commands.FillPacket(c),
		})
	}
	return out
}

// BuildCommandResults переводит итоги исполнения команд игрока в DTO.
func BuildCommandResults(results []commands.Result) []api.CommandResult {
	out := make([]api.CommandResult, 0, len(results))
	for _, r := range results {
		cr := api.CommandResult{
			ID:      uint32(r.ID),
			Kind:    r.Kind.String(),
			Skipped: r.Skipped,
		}
		if r.Err != nil {
			cr.Error = r.Err.Error()
		}
		out = append(out, cr)
	}
	return out
}

// BuildCombatView переводит итоги боёв в DTO.
func BuildCombatView(outcomes []systems.CombatOutcome) []api.CombatView {
	out := make([]api.CombatView, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, api.CombatView{
			Node:      o.Node,
			NodeName:  o.NodeName,
			Previous:  o.PreviousTeam.String(),
			Team:      o.Team.String(),
			Winner:    o.Winner,
			Destroyed: o.Destroyed,
			Tie:       o.Tie,
		})
	}
	return out
}
