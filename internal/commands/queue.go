package commands

import (
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// Result - итог одной команды при исполнении хода.
type Result struct {
	ID      CommandID
	Kind    Kind
	Player  types.EntityID
	Skipped bool  // не прошла повторную проверку и не исполнялась
	Err     error // причина пропуска или отказа
}

// Report - итог ExecuteCommandsForTurn. Сначала идут пропущенные
// команды, затем исполненные в порядке исполнения.
type Report struct {
	Results []Result
}

// Ran возвращает ID исполненных команд в порядке исполнения.
func (r Report) Ran() []CommandID {
	var out []CommandID
	for _, res := range r.Results {
		if !res.Skipped {
			out = append(out, res.ID)
		}
	}
	return out
}

// ForPlayer возвращает результаты команд игрока.
func (r Report) ForPlayer(player types.EntityID) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Player == player {
			out = append(out, res)
		}
	}
	return out
}

// Queue - очередь команд текущего хода.
type Queue struct {
	env        *Env
	priorities PriorityTable
	active     []*Command
	nextID     CommandID
}

func NewQueue(env *Env, priorities PriorityTable) *Queue {
	if priorities == nil {
		priorities = DefaultPriorities()
	}
	return &Queue{
		env:        env,
		priorities: priorities,
		nextID:     1,
	}
}

func (q *Queue) log() *logrus.Entry {
	return logger.For("command_queue")
}

// RegisterCommand ставит команду в очередь.
//
// Команда должна быть инициализирована и проходить проверку. Ей
// назначаются приоритет по виду и новый ID, после чего она ставит свои
// флаги и заявки на сущности. При отказе очередь не меняется.
func (q *Queue) RegisterCommand(c *Command) (CommandID, error) {
	log := q.log()

	if c == nil {
		log.Warn("Attempted to register a nil command")
		return InvalidCommandID, errs.Validationf("register: nil command")
	}
	if c.state != StateInitialized {
		log.WithField("state", c.state.String()).Warn("Command was not initialized properly")
		return InvalidCommandID, errs.Validationf("register %s: command is %s, expected %s", c.kind, c.state, StateInitialized)
	}
	if err := c.Validate(q.env); err != nil {
		log.WithError(err).WithField("kind", c.kind.String()).Warn("Command failed validation")
		return InvalidCommandID, err
	}

	priority, ok := q.priorities.For(c.kind)
	if !ok {
		log.WithField("kind", c.kind.String()).Warn("No priority mapped for command kind, using 0")
	}
	c.priority = priority
	c.id = q.nextID
	q.nextID++

	if err := handlers[c.kind].onRegistered(q.env, c); err != nil {
		log.WithError(err).WithField("command", c.String()).Warn("Command rejected on registration")
		c.id = InvalidCommandID
		return InvalidCommandID, err
	}

	c.state = StateRegistered
	q.active = append(q.active, c)

	log.WithFields(logrus.Fields{
		"command":  c.Describe(q.env),
		"priority": c.priority,
	}).Debug("Command registered")

	return c.id, nil
}

// CancelCommand снимает команду с очереди.
// Отменить команду может только игрок той же команды (фракции).
func (q *Queue) CancelCommand(requester types.EntityID, id CommandID) error {
	log := q.log().WithField("command_id", id)

	idx := q.indexOf(id)
	if idx < 0 {
		log.Error("Attempted to cancel an unknown command")
		return errs.NotFoundf("cancel: no active command with id %d", id)
	}
	c := q.active[idx]

	req, ok := q.env.Galaxy.Player(requester)
	if !ok {
		return errs.Forbiddenf("cancel %s: unknown requester %v", c, requester)
	}
	owner, ok := q.env.Galaxy.Player(c.Player)
	if !ok || !types.SameTeam(owner.Team, req.Team) {
		log.WithField("requester", req.Name).Warn("Cancel rejected: command belongs to another team")
		return errs.Forbiddenf("cancel %s: command belongs to another team", c)
	}

	q.active = append(q.active[:idx], q.active[idx+1:]...)
	if err := q.unregister(c); err != nil {
		return err
	}

	log.WithField("command", c.String()).Debug("Command cancelled")
	return nil
}

// CancelCommands снимает все команды игрока и возвращает их количество.
func (q *Queue) CancelCommands(player types.EntityID) (int, error) {
	kept := q.active[:0]
	var removed []*Command
	for _, c := range q.active {
		if c.Player == player {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	q.active = kept

	for _, c := range removed {
		if err := q.unregister(c); err != nil {
			return len(removed), err
		}
	}
	return len(removed), nil
}

// ExecuteCommandsForTurn исполняет все команды хода.
//
// Команды, не прошедшие повторную проверку, пропускаются. Остальные
// исполняются по убыванию приоритета, при равенстве в порядке
// регистрации. Сразу после исполнения каждая команда снимает свои
// флаги. После прохода очередь пуста, а счётчик ID начинается с 1.
//
// Ошибка возвращается только при нарушении инварианта.
func (q *Queue) ExecuteCommandsForTurn() (Report, error) {
	log := q.log()
	var report Report

	valid := make([]*Command, 0, len(q.active))
	for _, c := range q.active {
		if err := c.Validate(q.env); err != nil {
			log.WithError(err).WithField("command", c.String()).Warn("Skipping invalid command")
			report.Results = append(report.Results, Result{ID: c.id, Kind: c.kind, Player: c.Player, Skipped: true, Err: err})
			if uerr := q.unregister(c); uerr != nil {
				return report, uerr
			}
			continue
		}
		valid = append(valid, c)
	}

	for _, c := range sortForExecution(valid) {
		desc := c.Describe(q.env)
		err := c.Run(q.env)
		switch {
		case err == nil:
			log.WithField("command", desc).Info("Command executed")
		case errs.Is(err, errs.KindConflict):
			log.WithError(err).WithField("command", desc).Info("Command bounced")
		default:
			log.WithError(err).WithField("command", desc).Error("Command failed")
		}
		report.Results = append(report.Results, Result{ID: c.id, Kind: c.kind, Player: c.Player, Err: err})

		if uerr := q.unregister(c); uerr != nil {
			return report, uerr
		}
	}

	q.active = nil
	q.nextID = 1
	return report, nil
}

func (q *Queue) unregister(c *Command) error {
	err := handlers[c.kind].onUnregistered(q.env, c)
	c.state = StateUnregistered
	if err != nil {
		q.log().WithError(err).WithField("command", c.String()).Error("Failed to unregister command")
		if errs.Is(err, errs.KindInvariant) {
			return err
		}
	}
	return nil
}

func (q *Queue) indexOf(id CommandID) int {
	for i, c := range q.active {
		if c.id == id {
			return i
		}
	}
	return -1
}

// Active возвращает копию активных команд в порядке регистрации.
func (q *Queue) Active() []*Command {
	out := make([]*Command, len(q.active))
	copy(out, q.active)
	return out
}

func (q *Queue) Len() int {
	return len(q.active)
}

// Env возвращает окружение очереди.
func (q *Queue) Env() *Env {
	return q.env
}
