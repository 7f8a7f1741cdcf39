package domain

import (
	"encoding/json"

	"github.com/lumpybrain/DedMult/internal/core/types"
)

// InternalCommand - клиентское сообщение, уже привязанное к игроку.
// Транспорт кладёт его во входящую очередь сессии.
type InternalCommand struct {
	Action  ActionType
	Player  types.EntityID  // Игрок, от имени которого пришло сообщение
	Payload json.RawMessage // Сырые данные (парсятся сессией)
	Bot     bool            // Отправитель — встроенный бот
}
