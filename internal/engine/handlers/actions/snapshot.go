package actions

import (
	"github.com/lumpybrain/DedMult/internal/engine/handlers"
)

// HandleSnapshot возвращает полный снимок галактики и очереди команд.
func HandleSnapshot(ctx handlers.Context) (handlers.Result, error) {
	view := ctx.Game.Snapshot()
	return handlers.Result{
		Galaxy:   &view,
		Commands: ctx.Game.QueueView(),
	}, nil
}
