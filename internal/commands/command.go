// Package commands реализует приказы игроков на ход: постройку и перелёт
// кораблей, их очередь и сериализацию.
//
// Команда - это вариант с фиксированным набором видов (Kind). Поведение
// каждого вида задаётся строкой в таблице handlers, а сама Command хранит
// только ссылки на сущности галактики.
package commands

import (
	"fmt"
	"strings"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
)

// Kind - вид команды.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBuildShip
	KindMoveShip
)

var kindToString = map[Kind]string{
	KindBuildShip: "BuildShip",
	KindMoveShip:  "MoveShip",
}

var kindStringToKind = map[string]Kind{
	"BUILDSHIP": KindBuildShip,
	"MOVESHIP":  KindMoveShip,
}

func (k Kind) String() string {
	if val, ok := kindToString[k]; ok {
		return val
	}
	return "Unknown"
}

// ParseKind не чувствителен к регистру.
func ParseKind(s string) Kind {
	if val, ok := kindStringToKind[strings.ToUpper(s)]; ok {
		return val
	}
	return KindUnknown
}

// CommandID - идентификатор команды внутри хода. 0 не выдаётся.
type CommandID uint32

const InvalidCommandID CommandID = 0

// State - этап жизненного цикла команды.
type State uint8

const (
	StateCreated State = iota
	StateInitialized
	StateRegistered
	StateUnregistered
)

var stateToString = map[State]string{
	StateCreated:      "CREATED",
	StateInitialized:  "INITIALIZED",
	StateRegistered:   "REGISTERED",
	StateUnregistered: "UNREGISTERED",
}

func (s State) String() string {
	if val, ok := stateToString[s]; ok {
		return val
	}
	return "UNKNOWN"
}

// Params - ссылки, которыми инициализируется команда.
// Ship нужен только для MoveShip.
type Params struct {
	Player types.EntityID
	Target types.EntityID
	Ship   types.EntityID
}

// Command - приказ игрока на текущий ход.
type Command struct {
	Player types.EntityID
	Target types.EntityID
	Ship   types.EntityID

	id       CommandID
	kind     Kind
	priority int
	state    State

	// origin - узел, с которого улетает корабль MoveShip.
	// Запоминается при регистрации.
	origin types.EntityID
}

// New создаёт команду указанного вида в состоянии Created.
func New(kind Kind) *Command {
	return &Command{kind: kind, state: StateCreated}
}

// Initialize заполняет ссылки команды.
func (c *Command) Initialize(p Params) error {
	h, ok := handlers[c.kind]
	if !ok {
		return errs.Validationf("initialize: unknown command kind %d", c.kind)
	}
	if c.state != StateCreated {
		return errs.Validationf("initialize %s: command is already %s", c.kind, c.state)
	}
	if p.Player.IsNil() {
		return errs.Validationf("initialize %s: nil player", c.kind)
	}
	if p.Target.IsNil() {
		return errs.Validationf("initialize %s: nil target", c.kind)
	}
	if h.initialize != nil {
		if err := h.initialize(c, p); err != nil {
			return err
		}
	}

	c.Player = p.Player
	c.Target = p.Target
	c.state = StateInitialized
	return nil
}

func (c *Command) ID() CommandID {
	return c.id
}

func (c *Command) Kind() Kind {
	return c.kind
}

func (c *Command) Priority() int {
	return c.priority
}

func (c *Command) State() State {
	return c.state
}

// Origin - узел вылета MoveShip (пусто до регистрации).
func (c *Command) Origin() types.EntityID {
	return c.origin
}

// Flags - флаги, которые команда ставит на свою цель.
func (c *Command) Flags() domain.CommandFlags {
	return handlers[c.kind].flags
}

// CommandKind реализует domain.CommandHandle.
func (c *Command) CommandKind() string {
	return c.kind.String()
}

func (c *Command) String() string {
	return fmt.Sprintf("%s#%d", c.kind, c.id)
}

// Validate проверяет, что все ссылки команды живы и она допустима
// в текущем состоянии галактики.
func (c *Command) Validate(env *Env) error {
	if c.state == StateCreated {
		return errs.Validationf("%s: command was not initialized", c)
	}
	if _, _, err := validateBase(env, c); err != nil {
		return err
	}
	if v := handlers[c.kind].validate; v != nil {
		return v(env, c)
	}
	return nil
}

// Run исполняет команду.
func (c *Command) Run(env *Env) error {
	return handlers[c.kind].run(env, c)
}

// Describe - человекочитаемое описание для логов и отладки.
func (c *Command) Describe(env *Env) string {
	if d := handlers[c.kind].describe; d != nil {
		return d(env, c)
	}
	return c.String()
}

// validateBase - общая проверка: игрок и целевой узел существуют.
func validateBase(env *Env, c *Command) (*domain.Player, *domain.Node, error) {
	player, ok := env.Galaxy.Player(c.Player)
	if !ok {
		return nil, nil, errs.Stalef("%s: player %v no longer exists", c, c.Player)
	}
	node, ok := env.Galaxy.Node(c.Target)
	if !ok {
		return nil, nil, errs.Stalef("%s: target node %v no longer exists", c, c.Target)
	}
	return player, node, nil
}

// nodeName - имя узла для описаний, "?" для устаревших ссылок.
func nodeName(env *Env, id types.EntityID) string {
	if n, ok := env.Galaxy.Node(id); ok {
		return n.Name
	}
	return "?"
}

func playerName(env *Env, id types.EntityID) string {
	if p, ok := env.Galaxy.Player(id); ok {
		return p.Name
	}
	return "?"
}
