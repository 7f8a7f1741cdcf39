package handlers

import (
	"encoding/json"

	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// Game описывает состояние матча, доступное хендлерам.
// TurnTracker неявно реализует этот интерфейс.
type Game interface {
	Join(name string, bot bool) (*domain.Player, error)
	Leave(player types.EntityID) error
	SubmitCommand(player types.EntityID, pkt api.CommandPacket) (commands.CommandID, error)
	CancelCommand(player types.EntityID, id commands.CommandID) error
	CancelAll(player types.EntityID) (int, error)
	SubmitTurn(player types.EntityID) error
	CancelTurn(player types.EntityID) error
	Snapshot() api.GalaxyView
	QueueView() []api.CommandView
}

// Context передает хендлеру матч и отправителя команды.
type Context struct {
	Game   Game
	Player types.EntityID // NilEntityID до JOIN
	Bot    bool
}

// Result - возвращает результат выполнения команды.
// Хендлер не пишет клиенту напрямую, он возвращает данные.
type Result struct {
	Msg       string
	PlayerID  types.EntityID
	Team      types.Team
	CommandID uint32
	Galaxy    *api.GalaxyView
	Commands  []api.CommandView
}

// HandlerFunc - это контракт для любого действия (JOIN, COMMAND, ...).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
