package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/engine/handlers"
	"github.com/lumpybrain/DedMult/internal/engine/handlers/actions"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/internal/systems"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// ErrSessionClosed - сессия больше не принимает сообщения.
var ErrSessionClosed = errors.New("session closed")

const (
	inboxSize      = 100
	publishTimeout = 2 * time.Second
)

// Publisher получает итог каждого завершённого хода.
type Publisher interface {
	Publish(ctx context.Context, update api.ServerResponse) error
}

// Request - сообщение клиента во входящей очереди сессии.
type Request struct {
	Cmd   domain.InternalCommand
	Reply chan api.ServerResponse // буфер 1, может быть nil
}

// Session - один матч. Всё состояние матча меняется только внутри Run.
type Session struct {
	ID uuid.UUID

	cfg       Config
	galaxy    *domain.Galaxy
	queue     *commands.Queue
	processor *Processor
	turns     *TurnTracker
	hub       *network.Broadcaster
	publisher Publisher

	handlers map[domain.ActionType]handlers.HandlerFunc

	inbox chan Request
	done  chan struct{}
	fatal error
}

// NewSession собирает матч вокруг готовой галактики. publisher может быть nil.
func NewSession(cfg Config, g *domain.Galaxy, hub *network.Broadcaster, publisher Publisher) *Session {
	env := commands.NewEnv(g, cfg.ShipPower)
	queue := commands.NewQueue(env, cfg.Priorities)
	processor := NewProcessor(g, env.Lanes, systems.NewCombatResolver(g, cfg.HomePower))

	s := &Session{
		ID:        uuid.New(),
		cfg:       cfg,
		galaxy:    g,
		queue:     queue,
		processor: processor,
		turns:     NewTurnTracker(g, queue, processor, cfg.MaxPlayers),
		hub:       hub,
		publisher: publisher,
		handlers:  make(map[domain.ActionType]handlers.HandlerFunc),
		inbox:     make(chan Request, inboxSize),
		done:      make(chan struct{}),
	}

	s.turns.OnProcessed(s.onTurnProcessed)
	processor.OnFinished(s.onTurnFinished)
	s.registerHandlers()

	return s
}

func (s *Session) registerHandlers() {
	s.handlers[domain.ActionJoin] = handlers.WithPayload(actions.HandleJoin)
	s.handlers[domain.ActionLeave] = handlers.RequirePlayer(handlers.WithEmptyPayload(actions.HandleLeave))
	s.handlers[domain.ActionCommand] = handlers.RequirePlayer(handlers.WithPayload(actions.HandleCommand))
	s.handlers[domain.ActionCancel] = handlers.RequirePlayer(handlers.WithPayload(actions.HandleCancel))
	s.handlers[domain.ActionCancelAll] = handlers.RequirePlayer(handlers.WithEmptyPayload(actions.HandleCancelAll))
	s.handlers[domain.ActionSubmitTurn] = handlers.RequirePlayer(handlers.WithEmptyPayload(actions.HandleSubmitTurn))
	s.handlers[domain.ActionCancelTurn] = handlers.RequirePlayer(handlers.WithEmptyPayload(actions.HandleCancelTurn))
	s.handlers[domain.ActionSnapshot] = handlers.WithEmptyPayload(actions.HandleSnapshot)
}

func (s *Session) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "session",
		"session":   s.ID.String(),
	})
}

// Submit отправляет сообщение в сессию и ждёт ответа.
func (s *Session) Submit(ctx context.Context, cmd domain.InternalCommand) (api.ServerResponse, error) {
	reply := make(chan api.ServerResponse, 1)

	select {
	case s.inbox <- Request{Cmd: cmd, Reply: reply}:
	case <-ctx.Done():
		return api.ServerResponse{}, ctx.Err()
	case <-s.done:
		return api.ServerResponse{}, ErrSessionClosed
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		return api.ServerResponse{}, ctx.Err()
	case <-s.done:
		return api.ServerResponse{}, ErrSessionClosed
	}
}

// Done закрывается, когда Run завершился.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run запускает игровой цикл матча. Возвращает nil при отмене ctx и
// ошибку при нарушении инварианта.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	log := s.log()
	log.WithFields(logrus.Fields{
		"nodes": s.galaxy.Nodes.Len(),
		"tick":  s.cfg.Tick.String(),
	}).Info("Session loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Session loop stopped")
			return nil

		case req := <-s.inbox:
			resp := s.handle(req.Cmd)
			if req.Reply != nil {
				req.Reply <- resp
			}

		case <-ticker.C:
			s.processor.Tick()
		}

		if s.fatal != nil {
			log.WithError(s.fatal).Error("Invariant violated, stopping session")
			return s.fatal
		}
	}
}

// handle выполняет одно сообщение клиента через таблицу хендлеров.
func (s *Session) handle(cmd domain.InternalCommand) api.ServerResponse {
	log := s.log().WithFields(logrus.Fields{
		"action": cmd.Action.String(),
		"player": cmd.Player.String(),
	})

	handler, ok := s.handlers[cmd.Action]
	if !ok {
		log.Warn("Unknown action")
		return s.errorResponse(cmd.Action, errs.Validationf("unknown action %q", cmd.Action.String()))
	}

	ctx := handlers.Context{Game: s.turns, Player: cmd.Player, Bot: cmd.Bot}
	res, err := handler(ctx, cmd.Payload)
	if err != nil {
		if errs.Is(err, errs.KindInvariant) {
			s.fatal = err
		}
		log.WithError(err).WithField("kind", string(errs.KindOf(err))).Warn("Action rejected")
		return s.errorResponse(cmd.Action, err)
	}

	resp := api.ServerResponse{
		Type:      api.TypeAck,
		Turn:      s.turns.Turn(),
		Action:    cmd.Action.String(),
		CommandID: res.CommandID,
		Galaxy:    res.Galaxy,
		Commands:  res.Commands,
	}
	if !res.PlayerID.IsNil() {
		resp.PlayerID = res.PlayerID
	}
	if res.Team.IsValid() {
		resp.Team = res.Team.String()
	}

	switch cmd.Action {
	case domain.ActionJoin:
		resp.Type = api.TypeWelcome
	case domain.ActionSnapshot:
		resp.Type = api.TypeState
	}

	log.Debug("Action handled")
	return resp
}

func (s *Session) errorResponse(action domain.ActionType, err error) api.ServerResponse {
	return api.ServerResponse{
		Type:      api.TypeError,
		Turn:      s.turns.Turn(),
		Action:    action.String(),
		Error:     err.Error(),
		ErrorKind: string(errs.KindOf(err)),
	}
}

// onTurnProcessed сообщает каждому активному игроку итоги его команд.
func (s *Session) onTurnProcessed(report commands.Report) {
	for _, p := range s.galaxy.AllPlayers() {
		if !p.Active {
			continue
		}
		s.hub.SendTo(p.ID, api.ServerResponse{
			Type:     api.TypeTurnProcessed,
			Turn:     s.turns.Turn(),
			PlayerID: p.ID,
			Team:     p.Team.String(),
			Results:  BuildCommandResults(report.ForPlayer(p.ID)),
		})
	}
}

// onTurnFinished открывает новый ход и рассылает его итог.
func (s *Session) onTurnFinished(outcomes []systems.CombatOutcome) {
	s.turns.FinishTurn()

	view := s.turns.Snapshot()
	msg := api.ServerResponse{
		Type:   api.TypeTurnResult,
		Turn:   s.turns.Turn(),
		Galaxy: &view,
		Combat: BuildCombatView(outcomes),
	}
	s.hub.Broadcast(msg)

	s.log().WithFields(logrus.Fields{
		"turn":    msg.Turn,
		"battles": len(outcomes),
	}).Info("Turn finished")

	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log().WithError(err).Warn("Failed to publish turn result")
		}
	}()
}
