package actions

import (
	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/engine/handlers"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// HandleCommand ставит команду игрока в очередь хода.
func HandleCommand(ctx handlers.Context, p api.CommandPacket) (handlers.Result, error) {
	id, err := ctx.Game.SubmitCommand(ctx.Player, p)
	if err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{CommandID: uint32(id)}, nil
}

// HandleCancel отменяет одну команду по ID.
func HandleCancel(ctx handlers.Context, p api.CancelPayload) (handlers.Result, error) {
	if err := ctx.Game.CancelCommand(ctx.Player, commands.CommandID(p.ID)); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{CommandID: p.ID}, nil
}

// HandleCancelAll отменяет все команды игрока.
func HandleCancelAll(ctx handlers.Context) (handlers.Result, error) {
	if _, err := ctx.Game.CancelAll(ctx.Player); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}
