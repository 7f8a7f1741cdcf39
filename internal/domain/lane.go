package domain

import "github.com/lumpybrain/DedMult/internal/core/types"

// Lane — полоса между двумя узлами. За ход по полосе может пройти
// только один корабль: Traversing хранит его резервацию.
type Lane struct {
	A, B       types.EntityID
	Traversing types.EntityID
}

// Other возвращает противоположный конец полосы.
func (l *Lane) Other(node types.EntityID) types.EntityID {
	switch node {
	case l.A:
		return l.B
	case l.B:
		return l.A
	}
	return types.NilEntityID
}

func (l *Lane) IsReserved() bool {
	return !l.Traversing.IsNil()
}
