package domain

import "strings"

// ActionType - Внутренний числовой идентификатор клиентского действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionJoin
	ActionLeave
	ActionCommand
	ActionCancel
	ActionCancelAll
	ActionSubmitTurn
	ActionCancelTurn
	ActionSnapshot
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"JOIN":        ActionJoin,
	"LEAVE":       ActionLeave,
	"COMMAND":     ActionCommand,
	"CANCEL":      ActionCancel,
	"CANCEL_ALL":  ActionCancelAll,
	"SUBMIT_TURN": ActionSubmitTurn,
	"CANCEL_TURN": ActionCancelTurn,
	"SNAPSHOT":    ActionSnapshot,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionJoin:       "JOIN",
	ActionLeave:      "LEAVE",
	ActionCommand:    "COMMAND",
	ActionCancel:     "CANCEL",
	ActionCancelAll:  "CANCEL_ALL",
	ActionSubmitTurn: "SUBMIT_TURN",
	ActionCancelTurn: "CANCEL_TURN",
	ActionSnapshot:   "SNAPSHOT",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}
