package domain

import (
	"github.com/lumpybrain/DedMult/internal/core/errs"
)

// CommandHandle — то, что сущность знает о поставленной на неё команде.
// Реализуется commands.Command.
type CommandHandle interface {
	CommandKind() string
	String() string
}

// ActiveCommands — команды, зарегистрированные на сущности в текущем ходу.
// На одной сущности может висеть не больше одной команды каждого вида.
type ActiveCommands struct {
	list []CommandHandle
}

func (a *ActiveCommands) Register(cmd CommandHandle) error {
	for _, c := range a.list {
		if c == cmd {
			return errs.Conflictf("command %s already registered", cmd)
		}
		if c.CommandKind() == cmd.CommandKind() {
			return errs.Conflictf("entity already has a %s command (%s)", cmd.CommandKind(), c)
		}
	}
	a.list = append(a.list, cmd)
	return nil
}

// Unregister убирает команду. false, если её не было.
func (a *ActiveCommands) Unregister(cmd CommandHandle) bool {
	for i, c := range a.list {
		if c == cmd {
			a.list = append(a.list[:i], a.list[i+1:]...)
			return true
		}
	}
	return false
}

// Find ищет команду по виду.
func (a *ActiveCommands) Find(kind string) (CommandHandle, bool) {
	for _, c := range a.list {
		if c.CommandKind() == kind {
			return c, true
		}
	}
	return nil, false
}

func (a *ActiveCommands) Len() int {
	return len(a.list)
}

// Kinds возвращает виды команд (для отладочного вывода).
func (a *ActiveCommands) Kinds() []string {
	out := make([]string, 0, len(a.list))
	for _, c := range a.list {
		out = append(out, c.CommandKind())
	}
	return out
}
