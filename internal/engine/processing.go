package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/systems"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// Phase - фаза обработки хода.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseMoveShips
	PhaseCombat
)

var phaseToString = map[Phase]string{
	PhaseIdle:      "IDLE",
	PhaseMoveShips: "MOVE_SHIPS",
	PhaseCombat:    "COMBAT",
}

func (p Phase) String() string {
	if s, ok := phaseToString[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Processor ведёт автомат фаз Idle -> MoveShips -> Combat -> Idle.
// Один вызов Tick продвигает автомат не больше чем на один шаг.
type Processor struct {
	galaxy   *domain.Galaxy
	lanes    *systems.LaneSystem
	resolver *systems.CombatResolver

	phase    Phase
	outcomes []systems.CombatOutcome

	onFinished func(outcomes []systems.CombatOutcome)
}

func NewProcessor(g *domain.Galaxy, lanes *systems.LaneSystem, resolver *systems.CombatResolver) *Processor {
	return &Processor{
		galaxy:   g,
		lanes:    lanes,
		resolver: resolver,
	}
}

// OnFinished задаёт обработчик конца хода. Вызывается из Tick,
// после возврата в Idle.
func (p *Processor) OnFinished(fn func(outcomes []systems.CombatOutcome)) {
	p.onFinished = fn
}

func (p *Processor) Phase() Phase {
	return p.phase
}

// Busy - ход ещё обрабатывается.
func (p *Processor) Busy() bool {
	return p.phase != PhaseIdle
}

func (p *Processor) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "processing",
		"phase":     p.phase.String(),
	})
}

// Start переводит автомат в MoveShips. Вне Idle ничего не делает.
func (p *Processor) Start() bool {
	if p.phase != PhaseIdle {
		p.log().Warn("Processing already in progress")
		return false
	}
	p.phase = PhaseMoveShips
	p.outcomes = nil
	p.log().Debug("Turn processing started")
	return true
}

// Tick делает один шаг автомата.
func (p *Processor) Tick() {
	switch p.phase {
	case PhaseMoveShips:
		// Анимации перелёта нет, сразу к бою.
		p.phase = PhaseCombat
	case PhaseCombat:
		p.combatStep()
	}
}

// combatStep разрешает все узлы, которые можно разрешить независимо.
// Если таких нет, разрешает все оставшиеся, так что за шаг всегда
// разрешается хотя бы один узел.
func (p *Processor) combatStep() {
	log := p.log()

	var unresolved []*domain.Node
	for _, n := range p.galaxy.AllNodes() {
		if !n.Flags.Has(domain.FlagResolved) {
			unresolved = append(unresolved, n)
		}
	}

	var ready []*domain.Node
	for _, n := range unresolved {
		if p.resolver.CanResolveTurn(n) {
			ready = append(ready, n)
		}
	}
	if len(ready) == 0 {
		log.WithField("nodes", len(unresolved)).Debug("No independent nodes, resolving the rest")
		ready = unresolved
	}

	for _, n := range ready {
		n.Flags.Add(domain.FlagResolved)
	}
	for _, n := range ready {
		out := p.resolver.ResolveTurn(n)
		if len(out.Powers) > 0 {
			p.outcomes = append(p.outcomes, out)
		}
	}

	log.WithFields(logrus.Fields{
		"resolved":  len(ready),
		"remaining": len(unresolved) - len(ready),
	}).Debug("Combat step")

	if len(ready) == len(unresolved) {
		p.finish()
	}
}

func (p *Processor) finish() {
	for _, n := range p.galaxy.AllNodes() {
		n.Flags.Remove(domain.FlagResolved)
	}
	for _, s := range p.galaxy.AllShips() {
		s.Flags.Remove(domain.FlagMovingShip)
	}
	p.lanes.ClearReservations()

	p.phase = PhaseIdle
	outcomes := p.outcomes
	p.outcomes = nil

	p.log().WithField("battles", len(outcomes)).Info("Turn processing finished")

	if p.onFinished != nil {
		p.onFinished(outcomes)
	}
}
