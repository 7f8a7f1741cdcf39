package commands

import (
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/systems"
)

// Env - всё, что нужно командам для проверки и исполнения.
type Env struct {
	Galaxy *domain.Galaxy
	Lanes  *systems.LaneSystem

	// Authoritative - false на реплике, которая не может создавать корабли.
	Authoritative bool

	// ShipPower - сила новых кораблей.
	ShipPower int
}

// NewEnv собирает окружение авторитетного сервера.
func NewEnv(g *domain.Galaxy, shipPower int) *Env {
	if shipPower < 1 {
		shipPower = domain.DefaultShipPower
	}
	return &Env{
		Galaxy:        g,
		Lanes:         systems.NewLaneSystem(g),
		Authoritative: true,
		ShipPower:     shipPower,
	}
}

// handler - строка таблицы диспетчеризации по виду команды.
// Функции строки не должны обращаться к самой таблице handlers.
type handler struct {
	flags domain.CommandFlags
	// minRefs - длина пакета: [игрок, цель] или [игрок, цель, корабль].
	minRefs int

	initialize     func(c *Command, p Params) error
	validate       func(env *Env, c *Command) error
	run            func(env *Env, c *Command) error
	onRegistered   func(env *Env, c *Command) error
	onUnregistered func(env *Env, c *Command) error
	describe       func(env *Env, c *Command) string
}

var handlers = map[Kind]handler{
	KindBuildShip: buildShipHandler,
	KindMoveShip:  moveShipHandler,
}

// Kinds возвращает все известные виды команд.
func Kinds() []Kind {
	return []Kind{KindBuildShip, KindMoveShip}
}
