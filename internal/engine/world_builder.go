package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/core/types/enums"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// Layout - описание стартовой галактики.
//
//	{"nodes":[{"name":"Sol","kind":"PLANET","team":"TEAM_1","ship":{"power":1}}],
//	 "lanes":[["Sol","Vega"]]}
type Layout struct {
	Nodes []NodeLayout `json:"nodes"`
	Lanes [][2]string  `json:"lanes"`
}

type NodeLayout struct {
	Name string      `json:"name"`
	Kind string      `json:"kind"`
	Team string      `json:"team,omitempty"`
	Ship *ShipLayout `json:"ship,omitempty"`
}

type ShipLayout struct {
	Power int `json:"power"`
}

// LoadLayout читает раскладку из JSON-файла.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return &l, nil
}

// Build создаёт галактику. Корабли раскладки принадлежат команде узла и
// получают игрока-владельца при входе игрока этой команды.
func (l *Layout) Build(shipPower int) (*domain.Galaxy, error) {
	if len(l.Nodes) == 0 {
		return nil, fmt.Errorf("layout has no nodes")
	}

	g := domain.NewGalaxy()
	for i, nl := range l.Nodes {
		if nl.Name == "" {
			return nil, fmt.Errorf("node #%d has no name", i)
		}
		if _, dup := g.NodeByName(nl.Name); dup {
			return nil, fmt.Errorf("duplicate node %q", nl.Name)
		}

		kind := enums.ParseNodeKind(nl.Kind)
		if kind == enums.NodeKindUnknown {
			return nil, fmt.Errorf("node %q: unknown kind %q", nl.Name, nl.Kind)
		}
		team := types.ParseTeam(nl.Team)
		if team == types.TeamInvalid {
			return nil, fmt.Errorf("node %q: unknown team %q", nl.Name, nl.Team)
		}

		node := g.AddNode(nl.Name, kind, team)
		if nl.Ship == nil {
			continue
		}
		if !team.IsPlayable() {
			return nil, fmt.Errorf("node %q: ship needs a player team, got %s", nl.Name, team)
		}
		power := nl.Ship.Power
		if power < 1 {
			power = shipPower
		}
		g.SetCurrentShip(node, g.SpawnShip(team, power, types.NilEntityID))
	}

	for _, pair := range l.Lanes {
		a, ok := g.NodeByName(pair[0])
		if !ok {
			return nil, fmt.Errorf("lane %s-%s: unknown node %q", pair[0], pair[1], pair[0])
		}
		b, ok := g.NodeByName(pair[1])
		if !ok {
			return nil, fmt.Errorf("lane %s-%s: unknown node %q", pair[0], pair[1], pair[1])
		}
		if _, err := g.Connect(a.ID, b.ID); err != nil {
			return nil, fmt.Errorf("lane %s-%s: %w", pair[0], pair[1], err)
		}
	}

	return g, nil
}

// DemoLayout - небольшая галактика на четырёх игроков: по домашней планете
// с кораблём, нейтральные планеты и путевые точки между ними.
func DemoLayout() *Layout {
	return &Layout{
		Nodes: []NodeLayout{
			{Name: "Sol", Kind: "PLANET", Team: "TEAM_1", Ship: &ShipLayout{Power: 1}},
			{Name: "Vega", Kind: "PLANET", Team: "TEAM_2", Ship: &ShipLayout{Power: 1}},
			{Name: "Rigel", Kind: "PLANET", Team: "TEAM_3", Ship: &ShipLayout{Power: 1}},
			{Name: "Deneb", Kind: "PLANET", Team: "TEAM_4", Ship: &ShipLayout{Power: 1}},
			{Name: "Altair", Kind: "PLANET"},
			{Name: "Procyon", Kind: "PLANET"},
			{Name: "Nexus", Kind: "WAYPOINT"},
			{Name: "Drift", Kind: "WAYPOINT"},
		},
		Lanes: [][2]string{
			{"Sol", "Nexus"},
			{"Vega", "Nexus"},
			{"Rigel", "Drift"},
			{"Deneb", "Drift"},
			{"Nexus", "Altair"},
			{"Drift", "Altair"},
			{"Nexus", "Procyon"},
			{"Drift", "Procyon"},
			{"Sol", "Altair"},
			{"Rigel", "Procyon"},
		},
	}
}

// BuildGalaxy загружает раскладку по пути или берёт демонстрационную.
func BuildGalaxy(path string, shipPower int) (*domain.Galaxy, error) {
	layout := DemoLayout()
	if path != "" {
		var err error
		if layout, err = LoadLayout(path); err != nil {
			return nil, err
		}
	}
	return layout.Build(shipPower)
}
