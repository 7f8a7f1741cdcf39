package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// PriorityTable задаёт порядок исполнения видов команд внутри хода:
// чем больше число, тем раньше.
type PriorityTable map[Kind]int

// DefaultPriorities - постройки раньше перелётов.
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		KindBuildShip: 10,
		KindMoveShip:  5,
	}
}

// ParsePriorities разбирает строку вида "BuildShip=10,MoveShip=5".
func ParsePriorities(s string) (PriorityTable, error) {
	table := PriorityTable{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("priority %q: expected Kind=Value", part)
		}
		kind := ParseKind(strings.TrimSpace(name))
		if kind == KindUnknown {
			return nil, fmt.Errorf("priority %q: unknown command kind", part)
		}
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("priority %q: %w", part, err)
		}
		table[kind] = v
	}
	return table, nil
}

// For возвращает приоритет вида. ok == false, если вид не указан.
func (t PriorityTable) For(kind Kind) (int, bool) {
	v, ok := t[kind]
	return v, ok
}
