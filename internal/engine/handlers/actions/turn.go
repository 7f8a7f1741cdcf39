package actions

import (
	"github.com/lumpybrain/DedMult/internal/engine/handlers"
)

func HandleSubmitTurn(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Game.SubmitTurn(ctx.Player); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}

func HandleCancelTurn(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Game.CancelTurn(ctx.Player); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}
