package systems

import (
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// LaneSystem управляет резервированием полос на время хода.
type LaneSystem struct {
	galaxy *domain.Galaxy
}

func NewLaneSystem(g *domain.Galaxy) *LaneSystem {
	return &LaneSystem{galaxy: g}
}

// ReserveShipTraversal резервирует полосу между текущим узлом корабля
// и target.
//
// Если полоса уже занята другим кораблём, это встречный перелёт: оба
// корабля «отскакивают». Ранее зарезервировавший корабль снимается с
// прибытий на узле назначения и теряет флаг перелёта, новый запрос
// получает KindConflict. Резервация первого корабля остаётся, поэтому
// третий корабль на той же полосе тоже отскочит, а первый больше не
// пострадает.
func (s *LaneSystem) ReserveShipTraversal(shipID, target types.EntityID) error {
	if shipID.IsNil() {
		return errs.Validationf("reserve traversal: nil ship")
	}
	if target.IsNil() {
		return errs.Validationf("reserve traversal: nil target")
	}

	ship, ok := s.galaxy.Ship(shipID)
	if !ok {
		return errs.Stalef("reserve traversal: ship %v no longer exists", shipID)
	}
	from, ok := s.galaxy.Node(ship.Node)
	if !ok {
		return errs.Validationf("reserve traversal: ship %v is not docked", shipID)
	}
	if !from.HasLaneTable() {
		return errs.Invariantf("reserve traversal: node %q has no lane table", from.Name)
	}

	lane, ok := from.LaneTo(target)
	if !ok {
		return errs.Validationf("reserve traversal: no lane between %q and %v", from.Name, target)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"component": "lanes",
		"ship":      shipID.String(),
		"from":      from.Name,
		"target":    target.String(),
	})

	if lane.Traversing == shipID {
		return nil
	}

	if lane.IsReserved() {
		s.bounce(lane, log)
		log.Info("Traversal bounced: lane already reserved")
		return errs.Conflictf("lane between %q and %v is already traversed by %v", from.Name, target, lane.Traversing)
	}

	lane.Traversing = shipID
	log.Debug("Lane reserved")
	return nil
}

// bounce отменяет прибытие корабля, уже зарезервировавшего полосу.
func (s *LaneSystem) bounce(lane *domain.Lane, log *logrus.Entry) {
	other, ok := s.galaxy.Ship(lane.Traversing)
	if !ok {
		log.WithError(errs.Anomalyf("lane reserved by destroyed ship %v", lane.Traversing)).Warn("Bounce skipped")
		return
	}

	dest, ok := s.galaxy.Node(lane.Other(other.Node))
	if !ok {
		log.WithError(errs.Anomalyf("bounced ship %v is not docked at either end of the lane", other.ID)).Warn("Bounce skipped")
		return
	}

	dest.RemovePendingShip(other.ID)
	other.Flags.Remove(domain.FlagMovingShip)
	log.WithField("bounced_ship", other.ID.String()).Debug("Reserved ship bounced back")
}

// ClearReservations освобождает все полосы. Вызывается в конце хода.
func (s *LaneSystem) ClearReservations() {
	for _, l := range s.galaxy.Lanes() {
		l.Traversing = types.NilEntityID
	}
}
