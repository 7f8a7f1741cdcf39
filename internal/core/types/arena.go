package types

import (
	"math"

	"github.com/lumpybrain/DedMult/internal/core/types/enums"
)

type arenaSlot[T any] struct {
	gen   uint16
	alive bool
	value T
}

// Arena - таблица слотов с проверкой поколения.
//
// Все сущности галактики живут в аренах и адресуются через EntityID.
// Get сверяет тип, индекс и поколение, поэтому ссылка на уничтоженную
// сущность (или на слот, уже занятый другой сущностью) не резолвится.
// Слот 0 зарезервирован, валидный EntityID никогда не равен NilEntityID.
//
// Arena не потокобезопасна: ею владеет единственная горутина сессии.
type Arena[T any] struct {
	typ   enums.EntityType
	slots []arenaSlot[T]
	free  []uint32
	count int
}

func NewArena[T any](typ enums.EntityType) *Arena[T] {
	return &Arena[T]{
		typ:   typ,
		slots: make([]arenaSlot[T], 1),
	}
}

// Insert кладёт значение в свободный слот и возвращает его EntityID.
func (a *Arena[T]) Insert(value T) EntityID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot[T]{})
	}

	s := &a.slots[idx]
	s.alive = true
	s.value = value
	a.count++

	return PackEntityID(a.typ, s.gen, idx)
}

func (a *Arena[T]) slot(id EntityID) (*arenaSlot[T], bool) {
	if id.IsNil() || id.Type() != a.typ {
		return nil, false
	}
	idx := id.Index()
	if idx == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.alive || s.gen != id.Generation() {
		return nil, false
	}
	return s, true
}

// Get возвращает значение по EntityID. ok == false для nil, чужого типа
// и устаревших ссылок.
func (a *Arena[T]) Get(id EntityID) (T, bool) {
	s, ok := a.slot(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Contains - то же, что Get, но без значения.
func (a *Arena[T]) Contains(id EntityID) bool {
	_, ok := a.slot(id)
	return ok
}

// Remove освобождает слот и увеличивает его поколение.
// Слот, поколение которого дошло до math.MaxUint16, списывается и больше
// не выдаётся: иначе поколение обернулось бы в 0 и старые ссылки ожили бы.
func (a *Arena[T]) Remove(id EntityID) bool {
	s, ok := a.slot(id)
	if !ok {
		return false
	}

	var zero T
	s.value = zero
	s.alive = false
	a.count--
	if s.gen == math.MaxUint16 {
		return true
	}
	s.gen++
	a.free = append(a.free, id.Index())
	return true
}

// Each обходит живые слоты по возрастанию индекса.
// Обход прекращается, если fn вернула false.
func (a *Arena[T]) Each(fn func(id EntityID, value T) bool) {
	for i := 1; i < len(a.slots); i++ {
		s := &a.slots[i]
		if !s.alive {
			continue
		}
		if !fn(PackEntityID(a.typ, s.gen, uint32(i)), s.value) {
			return
		}
	}
}

// Len возвращает количество живых сущностей.
func (a *Arena[T]) Len() int {
	return a.count
}
