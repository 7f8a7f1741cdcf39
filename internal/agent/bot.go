package agent

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

const (
	requestTimeout = 2 * time.Second
	// DefaultThink - как часто бот проверяет, не пора ли ходить.
	DefaultThink = 500 * time.Millisecond
)

// Bot - встроенный игрок-компьютер.
// Он ходит через ту же очередь сессии, что и клиенты по WebSocket,
// и получает итоги ходов из хаба.
//
// Жизненный цикл:
//  1. Run -> JOIN от имени бота, регистрация в хабе.
//  2. На каждый TURN_RESULT (и по таймеру think) бот берёт снимок галактики
//     и, если в игре есть живые игроки, планирует команды и отправляет ход.
//  3. При отмене ctx бот выходит из матча (LEAVE).
type Bot struct {
	Name  string
	Think time.Duration

	session *engine.Session
	hub     *network.Broadcaster

	player     types.EntityID
	team       string
	playedTurn int
}

func NewBot(name string, session *engine.Session, hub *network.Broadcaster) *Bot {
	return &Bot{
		Name:    name,
		Think:   DefaultThink,
		session: session,
		hub:     hub,
	}
}

func (b *Bot) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "bot",
		"bot":       b.Name,
		"player":    b.player.String(),
	})
}

// Player возвращает ID игрока бота (после JOIN).
func (b *Bot) Player() types.EntityID {
	return b.player
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run(ctx context.Context) error {
	payload, err := json.Marshal(api.JoinPayload{Name: b.Name})
	if err != nil {
		return err
	}
	welcome, err := b.submit(ctx, domain.ActionJoin, payload)
	if err != nil {
		return err
	}
	if welcome.Type != api.TypeWelcome {
		b.log().WithField("error", welcome.Error).Warn("Bot could not join")
		return nil
	}
	b.player = welcome.PlayerID
	b.team = welcome.Team

	inbox := b.hub.Register(b.player)
	defer b.hub.Unregister(b.player)

	log := b.log().WithField("team", b.team)
	log.Info("Bot joined")

	if welcome.Galaxy != nil {
		b.play(ctx, *welcome.Galaxy)
	}

	ticker := time.NewTicker(b.Think)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.leave()
			log.Info("Bot shut down")
			return nil

		case event, ok := <-inbox:
			if !ok {
				return nil
			}
			if event.Type == api.TypeTurnResult && event.Galaxy != nil {
				b.play(ctx, *event.Galaxy)
			}

		case <-ticker.C:
			state, err := b.submit(ctx, domain.ActionSnapshot, nil)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				return err
			}
			if state.Galaxy != nil {
				b.play(ctx, *state.Galaxy)
			}
		}
	}
}

// play отправляет команды и ход, если этот ход ещё не сыгран.
func (b *Bot) play(ctx context.Context, view api.GalaxyView) {
	if view.Turn <= b.playedTurn || view.Phase != engine.PhaseIdle.String() || !hasHumans(view) {
		return
	}

	log := b.log().WithField("turn", view.Turn)
	orders := Plan(view, b.player, b.team)
	for _, pkt := range orders {
		data, err := json.Marshal(pkt)
		if err != nil {
			log.WithError(err).Error("Failed to encode command")
			continue
		}
		resp, err := b.submit(ctx, domain.ActionCommand, data)
		if err != nil {
			return
		}
		if resp.Type == api.TypeError {
			log.WithFields(logrus.Fields{"kind": pkt.Kind, "error": resp.Error}).Debug("Command rejected")
		}
	}

	resp, err := b.submit(ctx, domain.ActionSubmitTurn, nil)
	if err != nil {
		return
	}
	if resp.Type == api.TypeError {
		log.WithField("error", resp.Error).Debug("Submit rejected")
		return
	}
	b.playedTurn = view.Turn
	log.WithField("orders", len(orders)).Debug("Bot submitted turn")
}

func (b *Bot) leave() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if _, err := b.submit(ctx, domain.ActionLeave, nil); err != nil {
		b.log().WithError(err).Debug("Leave not delivered")
	}
}

func (b *Bot) submit(ctx context.Context, action domain.ActionType, payload json.RawMessage) (api.ServerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return b.session.Submit(ctx, domain.InternalCommand{
		Action:  action,
		Player:  b.player,
		Payload: payload,
		Bot:     true,
	})
}

// hasHumans: боты не играют сами с собой.
func hasHumans(view api.GalaxyView) bool {
	for _, p := range view.Players {
		if p.Active && !p.Bot {
			return true
		}
	}
	return false
}

// Plan - мозг бота. Строит корабли на своих пустых планетах и отправляет
// каждый свой корабль на соседний чужой узел, предпочитая пустые.
// Один узел получает не больше одной команды.
func Plan(view api.GalaxyView, player types.EntityID, team string) []api.CommandPacket {
	nodes := make(map[types.EntityID]api.NodeView, len(view.Nodes))
	for _, n := range view.Nodes {
		nodes[n.ID] = n
	}

	adjacent := make(map[types.EntityID][]types.EntityID)
	for _, l := range view.Lanes {
		adjacent[l.A] = append(adjacent[l.A], l.B)
		adjacent[l.B] = append(adjacent[l.B], l.A)
	}
	for id := range adjacent {
		ns := adjacent[id]
		sort.Slice(ns, func(i, j int) bool { return nodes[ns[i]].Name < nodes[ns[j]].Name })
	}

	claimed := make(map[types.EntityID]bool)
	for _, n := range view.Nodes {
		if strings.Contains(n.Flags, domain.FlagMovingShip.String()) {
			claimed[n.ID] = true
		}
	}

	var orders []api.CommandPacket

	for _, n := range view.Nodes {
		if n.Kind != "PLANET" || n.Team != team || !n.Ship.IsNil() || claimed[n.ID] {
			continue
		}
		claimed[n.ID] = true
		orders = append(orders, api.CommandPacket{
			Kind: "BuildShip",
			Refs: []types.EntityID{player, n.ID},
		})
	}

	for _, s := range view.Ships {
		if s.Team != team || s.Moving || s.Node.IsNil() {
			continue
		}
		if origin, ok := nodes[s.Node]; !ok || len(origin.Commands) > 0 {
			continue
		}

		var target types.EntityID
		for _, id := range adjacent[s.Node] {
			n := nodes[id]
			if claimed[id] || n.Team == team {
				continue
			}
			if n.Ship.IsNil() {
				target = id
				break
			}
			if target.IsNil() {
				target = id
			}
		}
		if target.IsNil() {
			continue
		}

		claimed[target] = true
		orders = append(orders, api.CommandPacket{
			Kind: "MoveShip",
			Refs: []types.EntityID{player, target, s.ID},
		})
	}

	return orders
}
