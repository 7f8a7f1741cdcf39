package api

import (
	"encoding/json"

	"github.com/lumpybrain/DedMult/internal/core/types"
)

// Типы сообщений сервера.
const (
	TypeWelcome       = "WELCOME"        // ответ на JOIN
	TypeAck           = "ACK"            // команда принята / отменена / ход отправлен
	TypeError         = "ERROR"          // запрос отклонён
	TypeState         = "STATE"          // полный снимок галактики
	TypeTurnProcessed = "TURN_PROCESSED" // команды хода исполнены, начался бой
	TypeTurnResult    = "TURN_RESULT"    // бой разрешён, новый ход открыт
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
type ServerResponse struct {
	Type string `json:"type"`

	// Turn номер текущего хода (с 1).
	Turn int `json:"turn"`

	// Action на какое действие клиента это ответ (для ACK / ERROR).
	Action string `json:"action,omitempty"`

	// PlayerID игрок, которым управляет клиент.
	PlayerID types.EntityID `json:"playerId,omitempty"`
	Team     string         `json:"team,omitempty"`

	// CommandID выданный ID команды (для ACK на COMMAND).
	CommandID uint32 `json:"commandId,omitempty"`

	Error string `json:"error,omitempty"`
	// ErrorKind категория ошибки: validation, conflict, stale, ...
	ErrorKind string `json:"errorKind,omitempty"`

	Galaxy   *GalaxyView     `json:"galaxy,omitempty"`
	Commands []CommandView   `json:"commands,omitempty"`
	Combat   []CombatView    `json:"combat,omitempty"`
	Results  []CommandResult `json:"results,omitempty"`
}

// GalaxyView — снимок галактики.
type GalaxyView struct {
	Turn    int          `json:"turn"`
	Phase   string       `json:"phase"`
	Nodes   []NodeView   `json:"nodes"`
	Ships   []ShipView   `json:"ships"`
	Lanes   []LaneView   `json:"lanes"`
	Players []PlayerView `json:"players"`
}

type NodeView struct {
	ID       types.EntityID `json:"id"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Team     string         `json:"team"`
	Ship     types.EntityID `json:"ship,omitempty"`
	Flags    string         `json:"flags,omitempty"`
	Commands []string       `json:"commands,omitempty"`
}

type ShipView struct {
	ID     types.EntityID `json:"id"`
	Team   string         `json:"team"`
	Power  int            `json:"power"`
	Node   types.EntityID `json:"node"`
	Owner  types.EntityID `json:"owner,omitempty"`
	Moving bool           `json:"moving,omitempty"`
}

type LaneView struct {
	A          types.EntityID `json:"a"`
	B          types.EntityID `json:"b"`
	Traversing types.EntityID `json:"traversing,omitempty"`
}

type PlayerView struct {
	ID        types.EntityID `json:"id"`
	Name      string         `json:"name"`
	Team      string         `json:"team"`
	Submitted bool           `json:"submitted"`
	Active    bool           `json:"active"`
	Bot       bool           `json:"bot,omitempty"`
}

// CommandView — команда в очереди (для отладки).
type CommandView struct {
	ID          uint32        `json:"id"`
	Kind        string        `json:"kind"`
	Priority    int           `json:"priority"`
	Description string        `json:"description"`
	Packet      CommandPacket `json:"packet"`
}

// CommandResult — итог исполнения команды игрока.
type CommandResult struct {
	ID      uint32 `json:"id"`
	Kind    string `json:"kind"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CombatView — итог боя на узле.
type CombatView struct {
	Node      types.EntityID `json:"node"`
	NodeName  string         `json:"nodeName"`
	Previous  string         `json:"previousTeam"`
	Team      string         `json:"team"`
	Winner    types.EntityID `json:"winner,omitempty"`
	Destroyed types.EntityID `json:"destroyed,omitempty"`
	Tie       bool           `json:"tie,omitempty"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Action название действия: JOIN, COMMAND, CANCEL, CANCEL_ALL,
	// SUBMIT_TURN, CANCEL_TURN, SNAPSHOT.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// JoinPayload первое сообщение клиента.
type JoinPayload struct {
	Name string `json:"name"`
}

// CommandPacket сериализованная команда:
// refs = [игрок, цель] или [игрок, цель, корабль].
type CommandPacket struct {
	Kind string           `json:"kind"`
	Refs []types.EntityID `json:"refs"`
}

// CancelPayload отмена команды по ID.
type CancelPayload struct {
	ID uint32 `json:"id"`
}
