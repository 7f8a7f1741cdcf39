package systems

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// HomePowerPolicy - как считается сила пристыкованного корабля.
type HomePowerPolicy uint8

const (
	// HomePowerActual - пристыкованный корабль вносит свою реальную силу.
	HomePowerActual HomePowerPolicy = iota
	// HomePowerFlat - пристыкованный корабль всегда вносит 1.
	HomePowerFlat
)

func (p HomePowerPolicy) String() string {
	if p == HomePowerFlat {
		return "flat"
	}
	return "actual"
}

// ParseHomePowerPolicy понимает "actual" и "flat".
func ParseHomePowerPolicy(s string) (HomePowerPolicy, error) {
	switch strings.ToLower(s) {
	case "", "actual":
		return HomePowerActual, nil
	case "flat":
		return HomePowerFlat, nil
	}
	return HomePowerActual, fmt.Errorf("unknown home power policy %q", s)
}

// FactionPower - суммарная сила команды на узле.
// Primary - корабль, который займёт узел при победе. Может быть пустым,
// если у команды есть только поддержка.
type FactionPower struct {
	Team    types.Team
	Primary types.EntityID
	Power   int
}

// CombatOutcome - итог боя на одном узле.
type CombatOutcome struct {
	Node         types.EntityID
	NodeName     string
	PreviousTeam types.Team
	Team         types.Team
	Winner       types.EntityID
	WinnerTeam   types.Team
	Destroyed    types.EntityID
	Tie          bool
	Powers       []FactionPower
	// Anomalies - переживаемые странности боя (errs.KindAnomaly).
	Anomalies []error
}

// Captured - узел сменил владельца.
func (o CombatOutcome) Captured() bool {
	return o.PreviousTeam != o.Team
}

// CombatResolver разрешает бои на узлах.
type CombatResolver struct {
	galaxy *domain.Galaxy
	policy HomePowerPolicy
}

func NewCombatResolver(g *domain.Galaxy, policy HomePowerPolicy) *CombatResolver {
	return &CombatResolver{galaxy: g, policy: policy}
}

func (r *CombatResolver) Policy() HomePowerPolicy {
	return r.policy
}

func (r *CombatResolver) log(node *domain.Node) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "combat",
		"node":      node.Name,
	})
}

// homeContribution - вклад пристыкованного корабля по текущей политике.
func (r *CombatResolver) homeContribution(ship *domain.Ship) int {
	if r.policy == HomePowerFlat {
		return 1
	}
	return ship.Power
}

// PendingPowers собирает силы команд на узле.
//
// Пристыкованный корабль засевает свою команду и становится её
// основным кораблём. Дальше прибытия идут в порядке добавления:
// поддержка только добавляет силу, атакующий становится основным, если
// у команды его ещё нет. Второй атакующий той же команды игнорируется
// целиком, его сила не учитывается.
func (r *CombatResolver) PendingPowers(node *domain.Node) []FactionPower {
	powers, _ := r.collectPowers(node)
	return powers
}

// anomaly логирует переживаемую странность и возвращает её как ошибку.
func anomaly(log *logrus.Entry, format string, args ...interface{}) error {
	err := errs.Anomalyf(format, args...)
	log.WithError(err).Warn("Combat anomaly")
	return err
}

func (r *CombatResolver) collectPowers(node *domain.Node) ([]FactionPower, []error) {
	log := r.log(node)

	var (
		powers    []FactionPower
		anomalies []error
	)
	index := make(map[types.Team]int)

	if home, ok := r.galaxy.Ship(node.Ship); ok {
		index[home.Team] = len(powers)
		powers = append(powers, FactionPower{
			Team:    home.Team,
			Primary: home.ID,
			Power:   r.homeContribution(home),
		})
	}

	for _, p := range node.Pending {
		ship, ok := r.galaxy.Ship(p.Ship)
		if !ok {
			anomalies = append(anomalies, anomaly(log, "pending ship %v no longer exists", p.Ship))
			continue
		}

		i, seen := index[ship.Team]
		if !seen {
			fp := FactionPower{Team: ship.Team, Power: ship.Power}
			if !p.Supporting {
				fp.Primary = ship.ID
			}
			index[ship.Team] = len(powers)
			powers = append(powers, fp)
			continue
		}

		fp := &powers[i]
		switch {
		case p.Supporting:
			fp.Power += ship.Power
		case fp.Primary.IsNil():
			fp.Primary = ship.ID
			fp.Power += ship.Power
		default:
			anomalies = append(anomalies, anomaly(log,
				"second attacker %v of %s ignored, primary is %v", ship.ID, ship.Team, fp.Primary))
		}
	}

	return powers, anomalies
}

// pickWinner ищет команду со строго наибольшей силой.
// Ничья с лидером сбрасывает лидера. lead - отрыв победителя от
// ближайшего соперника.
func pickWinner(powers []FactionPower) (winner int, lead int) {
	winner = -1
	highest := 0
	for i, fp := range powers {
		switch {
		case fp.Power > highest:
			highest = fp.Power
			winner = i
		case fp.Power == highest:
			winner = -1
		}
	}
	if winner < 0 {
		return -1, 0
	}

	second := 0
	for i, fp := range powers {
		if i != winner && fp.Power > second {
			second = fp.Power
		}
	}
	return winner, highest - second
}

// CanResolveTurn сообщает, можно ли разрешить узел, не дожидаясь
// результатов на соседних узлах.
//
// Узел готов, если прибытий нет, если пристыкованного корабля нет или он
// никуда не улетает, либо если команда-владелец побеждает с отрывом не
// меньше вклада улетающего корабля (то есть победила бы и без него).
func (r *CombatResolver) CanResolveTurn(node *domain.Node) bool {
	if len(node.Pending) == 0 {
		if home, ok := r.galaxy.Ship(node.Ship); ok && home.IsMoving() {
			r.log(node).WithError(errs.Anomalyf("ship %v leaves a node without arrivals", home.ID)).Debug("Nothing to resolve")
		}
		return true
	}

	home, ok := r.galaxy.Ship(node.Ship)
	if !ok || !home.IsMoving() {
		return true
	}

	powers := r.PendingPowers(node)
	w, lead := pickWinner(powers)
	if w < 0 || powers[w].Team != node.Team {
		return false
	}
	return lead >= r.homeContribution(home)
}

// ResolveTurn разрешает бой на узле.
//
// Победитель с основным кораблём занимает узел: прежний пристыкованный
// корабль (если это не он сам) уничтожается, узел переходит команде
// победителя. При ничьей или победе одной поддержки ничего не меняется.
// Список прибытий очищается в любом случае.
func (r *CombatResolver) ResolveTurn(node *domain.Node) CombatOutcome {
	out := CombatOutcome{
		Node:         node.ID,
		NodeName:     node.Name,
		PreviousTeam: node.Team,
		Team:         node.Team,
	}
	if len(node.Pending) == 0 {
		return out
	}
	defer node.ClearPendingShips()

	log := r.log(node)
	out.Powers, out.Anomalies = r.collectPowers(node)

	w, _ := pickWinner(out.Powers)
	if w < 0 {
		out.Tie = true
		log.WithField("factions", len(out.Powers)).Info("Combat tied, node unchanged")
		return out
	}

	win := out.Powers[w]
	out.WinnerTeam = win.Team
	if win.Primary.IsNil() {
		log.WithField("team", win.Team.String()).Info("Supporting ships won, node unchanged")
		return out
	}

	winner, ok := r.galaxy.Ship(win.Primary)
	if !ok {
		out.Anomalies = append(out.Anomalies, anomaly(log, "winning ship %v no longer exists", win.Primary))
		return out
	}
	out.Winner = winner.ID

	if winner.ID != node.Ship {
		if !node.Ship.IsNil() {
			out.Destroyed = node.Ship
			r.galaxy.DestroyShip(node.Ship)
		}
		r.galaxy.SetCurrentShip(node, winner)
	}
	out.Team = node.Team

	log.WithFields(logrus.Fields{
		"winner":    winner.ID.String(),
		"team":      win.Team.String(),
		"destroyed": out.Destroyed.String(),
		"captured":  out.Captured(),
	}).Info("Combat resolved")

	return out
}
