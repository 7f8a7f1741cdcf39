package actions

import (
	"strings"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/engine/handlers"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// HandleJoin регистрирует отправителя как нового игрока.
func HandleJoin(ctx handlers.Context, p api.JoinPayload) (handlers.Result, error) {
	if !ctx.Player.IsNil() {
		return handlers.Result{}, errs.Conflictf("already joined as %s", ctx.Player)
	}

	player, err := ctx.Game.Join(strings.TrimSpace(p.Name), ctx.Bot)
	if err != nil {
		return handlers.Result{}, err
	}

	view := ctx.Game.Snapshot()
	return handlers.Result{
		Msg:      "Welcome, " + player.Name,
		PlayerID: player.ID,
		Team:     player.Team,
		Galaxy:   &view,
	}, nil
}

// HandleLeave выводит игрока из матча.
func HandleLeave(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Game.Leave(ctx.Player); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{PlayerID: ctx.Player}, nil
}
