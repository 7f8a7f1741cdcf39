package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// TurnTracker следит за игроками и отправкой ходов.
//
// Когда ход отправил последний активный игрок, очередь команд
// исполняется, флаги отправки сбрасываются, игроки получают
// уведомление, а Processor начинает разрешение боёв. Пока ход
// обрабатывается, команды и отправка ходов отклоняются.
type TurnTracker struct {
	galaxy    *domain.Galaxy
	queue     *commands.Queue
	processor *Processor

	maxPlayers int
	processing bool
	turn       int

	onProcessed func(report commands.Report)
}

func NewTurnTracker(g *domain.Galaxy, q *commands.Queue, p *Processor, maxPlayers int) *TurnTracker {
	if maxPlayers <= 0 || maxPlayers > types.MaxPlayerTeams {
		maxPlayers = types.MaxPlayerTeams
	}
	return &TurnTracker{
		galaxy:     g,
		queue:      q,
		processor:  p,
		maxPlayers: maxPlayers,
		turn:       1,
	}
}

// OnProcessed задаёт обработчик исполненной очереди.
func (t *TurnTracker) OnProcessed(fn func(report commands.Report)) {
	t.onProcessed = fn
}

func (t *TurnTracker) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "turns",
		"turn":      t.turn,
	})
}

// Turn - номер текущего хода, начиная с 1.
func (t *TurnTracker) Turn() int {
	return t.turn
}

// Busy - ход исполняется или бои ещё разрешаются.
func (t *TurnTracker) Busy() bool {
	return t.processing || t.processor.Busy()
}

// FinishTurn открывает следующий ход.
func (t *TurnTracker) FinishTurn() {
	t.turn++
}

// Join добавляет игрока и выдаёт ему первую команду, не занятую
// активным игроком. Команды вышедших игроков раздаются заново.
// Узлы и корабли этой команды без активного владельца переходят игроку.
func (t *TurnTracker) Join(name string, bot bool) (*domain.Player, error) {
	team, ok := t.freeTeam()
	if !ok {
		return nil, errs.Conflictf("game is full (%d players)", t.maxPlayers)
	}

	p := t.galaxy.AddPlayer(name, team)
	p.Bot = bot

	nodes := 0
	for _, n := range t.galaxy.AllNodes() {
		if n.Team == team && !t.ownedByActive(n.OwningPlayer) {
			n.OwningPlayer = p.ID
			nodes++
		}
	}
	for _, s := range t.galaxy.AllShips() {
		if s.Team == team && !t.ownedByActive(s.OwningPlayer) {
			s.OwningPlayer = p.ID
		}
	}

	t.log().WithFields(logrus.Fields{
		"player": p.Name,
		"team":   team.String(),
		"nodes":  nodes,
		"bot":    bot,
	}).Info("Player joined")

	return p, nil
}

// Leave выводит игрока из матча: его команды снимаются, а сам он
// переходит в TeamUnowned. Если остальные уже отправили ход, ход
// исполняется.
func (t *TurnTracker) Leave(playerID types.EntityID) error {
	p, ok := t.galaxy.Player(playerID)
	if !ok {
		return errs.NotFoundf("leave: unknown player %v", playerID)
	}
	if !p.Active {
		return nil
	}

	if _, err := t.queue.CancelCommands(p.ID); err != nil {
		return err
	}

	p.SetTeam(types.TeamUnowned)
	p.Active = false
	p.TurnSubmitted = false

	t.log().WithField("player", p.Name).Info("Player left")

	if t.Busy() {
		return nil
	}
	return t.checkAllSubmitted()
}

// freeTeam - младшая играбельная команда без активного игрока.
// Вышедшие игроки мест не занимают.
func (t *TurnTracker) freeTeam() (types.Team, bool) {
	taken := make(map[types.Team]bool)
	for _, p := range t.galaxy.AllPlayers() {
		if p.Active {
			taken[p.Team] = true
		}
	}
	if len(taken) >= t.maxPlayers {
		return types.TeamInvalid, false
	}
	for team := types.TeamOne; team.IsPlayable(); team = team.Next() {
		if !taken[team] {
			return team, true
		}
	}
	return types.TeamInvalid, false
}

func (t *TurnTracker) ownedByActive(id types.EntityID) bool {
	p, ok := t.galaxy.Player(id)
	return ok && p.Active
}

func (t *TurnTracker) activePlayer(op string, playerID types.EntityID) (*domain.Player, error) {
	p, ok := t.galaxy.Player(playerID)
	if !ok {
		return nil, errs.NotFoundf("%s: unknown player %v", op, playerID)
	}
	if !p.Active {
		return nil, errs.Forbiddenf("%s: player %s has left", op, p.Name)
	}
	if t.Busy() {
		return nil, errs.Forbiddenf("%s: turn is being processed", op)
	}
	return p, nil
}

// SubmitCommand собирает команду из пакета, проверяет её через
// commands.Trial и ставит в очередь. Первая ссылка пакета должна
// совпадать с отправителем.
func (t *TurnTracker) SubmitCommand(playerID types.EntityID, pkt api.CommandPacket) (commands.CommandID, error) {
	p, err := t.activePlayer("command", playerID)
	if err != nil {
		return commands.InvalidCommandID, err
	}
	if len(pkt.Refs) > 0 && pkt.Refs[0] != p.ID {
		return commands.InvalidCommandID, errs.Forbiddenf("command: packet is issued for another player")
	}

	cmd, err := commands.FromPacket(t.queue.Env(), pkt)
	if err != nil {
		return commands.InvalidCommandID, err
	}
	if err := commands.Trial(t.galaxy, cmd); err != nil {
		return commands.InvalidCommandID, err
	}
	return t.queue.RegisterCommand(cmd)
}

func (t *TurnTracker) CancelCommand(playerID types.EntityID, id commands.CommandID) error {
	if _, err := t.activePlayer("cancel", playerID); err != nil {
		return err
	}
	return t.queue.CancelCommand(playerID, id)
}

// CancelAll снимает все команды игрока.
func (t *TurnTracker) CancelAll(playerID types.EntityID) (int, error) {
	if _, err := t.activePlayer("cancel all", playerID); err != nil {
		return 0, err
	}
	return t.queue.CancelCommands(playerID)
}

// SubmitTurn отмечает ход игрока отправленным. Если это последний
// игрок, ход исполняется сразу.
func (t *TurnTracker) SubmitTurn(playerID types.EntityID) error {
	p, err := t.activePlayer("submit turn", playerID)
	if err != nil {
		return err
	}
	if p.TurnSubmitted {
		return errs.Conflictf("submit turn: already submitted")
	}

	p.TurnSubmitted = true
	t.log().WithField("player", p.Name).Debug("Turn submitted")

	return t.checkAllSubmitted()
}

// CancelTurn снимает отметку об отправке хода.
func (t *TurnTracker) CancelTurn(playerID types.EntityID) error {
	p, err := t.activePlayer("cancel turn", playerID)
	if err != nil {
		return err
	}
	p.TurnSubmitted = false
	return nil
}

// AllSubmitted - есть хотя бы один активный игрок, и все активные
// игроки отправили ход.
func (t *TurnTracker) AllSubmitted() bool {
	active := 0
	for _, p := range t.galaxy.AllPlayers() {
		if !p.Active {
			continue
		}
		if !p.TurnSubmitted {
			return false
		}
		active++
	}
	return active > 0
}

func (t *TurnTracker) checkAllSubmitted() error {
	if !t.AllSubmitted() {
		return nil
	}

	log := t.log()
	log.WithField("commands", t.queue.Len()).Info("All players submitted, executing turn")

	t.processing = true
	report, err := t.queue.ExecuteCommandsForTurn()

	for _, p := range t.galaxy.AllPlayers() {
		p.TurnSubmitted = false
	}
	if t.onProcessed != nil {
		t.onProcessed(report)
	}
	t.processing = false

	if err != nil {
		return errs.Wrap("execute turn", err)
	}

	t.processor.Start()
	return nil
}

// Snapshot - снимок галактики на текущий момент.
func (t *TurnTracker) Snapshot() api.GalaxyView {
	return BuildGalaxyView(t.galaxy, t.turn, t.processor.Phase())
}

// QueueView - команды текущего хода.
func (t *TurnTracker) QueueView() []api.CommandView {
	return BuildQueueView(t.queue)
}
