package domain

import "strings"

// CommandFlags — битовая маска состояния, которую команды выставляют
// на узлах и кораблях.
type CommandFlags uint8

const (
	FlagNone       CommandFlags = 0
	FlagResolved   CommandFlags = 1 << 1 // узел уже обработан в текущей фазе боя
	FlagHasShip    CommandFlags = 1 << 2 // к узлу пристыкован корабль
	FlagMovingShip CommandFlags = 1 << 3 // корабль покидает узел / к узлу летит корабль
)

func (f CommandFlags) Has(flag CommandFlags) bool {
	return f&flag != 0
}

// Add выставляет флаг и сообщает, был ли он уже выставлен.
func (f *CommandFlags) Add(flag CommandFlags) bool {
	existed := f.Has(flag)
	*f |= flag
	return existed
}

// Remove снимает флаг и сообщает, был ли он выставлен.
func (f *CommandFlags) Remove(flag CommandFlags) bool {
	existed := f.Has(flag)
	*f &^= flag
	return existed
}

func (f CommandFlags) String() string {
	if f == FlagNone {
		return "NONE"
	}
	var parts []string
	if f.Has(FlagResolved) {
		parts = append(parts, "RESOLVED")
	}
	if f.Has(FlagHasShip) {
		parts = append(parts, "HAS_SHIP")
	}
	if f.Has(FlagMovingShip) {
		parts = append(parts, "MOVING_SHIP")
	}
	return strings.Join(parts, "|")
}
