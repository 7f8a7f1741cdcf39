package types

import (
	"fmt"
	"strconv"

	"github.com/lumpybrain/DedMult/internal/core/types/enums"
)

// EntityID - 64-битный идентификатор сущности галактики.
//
// EntityID является value-type и предназначен для дешёвого копирования,
// сериализации и сравнения. Узлы, корабли и игроки ссылаются друг на друга
// только через EntityID, никогда через указатели.
//
// Формат битов (от старших к младшим):
//
//	[ Reserved (8) | Type (8) | Generation (16) | Index (32) ]
//
// Где:
//   - Type - тип сущности (Node, Ship, Player)
//   - Generation - версия слота арены (защита от устаревших ссылок)
//   - Index - индекс слота в арене, 0 никогда не выдаётся
//
// Уничтоженный корабль освобождает слот и увеличивает его поколение,
// поэтому старый EntityID перестаёт резолвиться.
type EntityID uint64

// NilEntityID - нулевой идентификатор сущности.
//
// Используется как аналог nil для случаев, когда сущность отсутствует
// или ссылка ещё не инициализирована.
const NilEntityID EntityID = 0

// Конфигурация битов EntityID.
const (
	// bitsIndex - количество бит, выделенных под индекс слота.
	bitsIndex = 32

	// bitsGen - количество бит для поколения слота.
	bitsGen = 16

	// bitsType - количество бит для типа сущности.
	bitsType = 8

	// Сдвиги битов
	shiftGen  = bitsIndex
	shiftType = bitsIndex + bitsGen

	// Маски для извлечения значений
	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
	maskType  = (1 << bitsType) - 1
)

// PackEntityID собирает EntityID из составных частей.
//
// Функция не выполняет проверок диапазонов значений и предполагает,
// что входные данные валидны.
func PackEntityID(typ enums.EntityType, gen uint16, index uint32) EntityID {
	return EntityID(
		(uint64(typ) << shiftType) |
			(uint64(gen) << shiftGen) |
			uint64(index),
	)
}

// Index возвращает индекс слота в арене.
func (id EntityID) Index() uint32 {
	return uint32(id & maskIndex)
}

// Generation возвращает поколение слота сущности.
func (id EntityID) Generation() uint16 {
	return uint16((id >> shiftGen) & maskGen)
}

// Type возвращает тип сущности.
func (id EntityID) Type() enums.EntityType {
	return enums.EntityType((id >> shiftType) & maskType)
}

// IsNil проверяет, является ли идентификатор нулевым.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String возвращает человекочитаемое строковое представление EntityID.
//
// Предназначено для логирования и отладки.
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}

	return fmt.Sprintf(
		"[%s gen=%d idx=%d]",
		id.Type(),
		id.Generation(),
		id.Index(),
	)
}

// MarshalJSON сериализует EntityID в JSON как строку.
//
// Это необходимо для предотвращения потери точности при работе с
// JavaScript и другими средами, не поддерживающими uint64.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON десериализует EntityID из JSON.
//
// Поддерживаются как строковое, так и числовое представление.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	s := string(data)

	if len(s) > 1 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*id = NilEntityID
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}

	*id = EntityID(v)
	return nil
}
