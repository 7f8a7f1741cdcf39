// Package errs описывает таксономию ошибок ядра.
//
// Каждая ошибка несёт Kind, по которому вызывающий код решает, что делать:
// validation/stale/conflict - отказ в конкретной операции, invariant -
// нарушение внутреннего инварианта, после которого сессия останавливается.
package errs

import (
	"errors"
	"fmt"
)

// Kind - категория ошибки.
type Kind string

const (
	// KindValidation - не хватает данных или команда не проходит проверку.
	KindValidation Kind = "validation"
	// KindStale - ссылка на уже уничтоженную сущность.
	KindStale Kind = "stale"
	// KindConflict - столкновение с уже занятым ресурсом (полоса, узел, команда).
	KindConflict Kind = "conflict"
	// KindAnomaly - странное, но переживаемое состояние.
	KindAnomaly Kind = "anomaly"
	// KindNotFound - неизвестный идентификатор.
	KindNotFound Kind = "not_found"
	// KindForbidden - операция запрещена для этого игрока или в этой фазе.
	KindForbidden Kind = "forbidden"
	// KindInvariant - нарушен внутренний инвариант.
	KindInvariant Kind = "invariant"
	// KindInternal - всё, что не классифицировано.
	KindInternal Kind = "internal"
)

// Error - базовый тип ошибок ядра.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) error {
	return newf(KindValidation, format, args...)
}

func Stalef(format string, args ...interface{}) error {
	return newf(KindStale, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return newf(KindConflict, format, args...)
}

func Anomalyf(format string, args ...interface{}) error {
	return newf(KindAnomaly, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newf(KindForbidden, format, args...)
}

func Invariantf(format string, args ...interface{}) error {
	return newf(KindInvariant, format, args...)
}

// Wrap оборачивает err, сохраняя её Kind, если он уже был.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Op: op, Msg: "failed", Err: err}
}

// KindOf возвращает категорию ошибки. Для nil - пустая строка,
// для посторонних ошибок - KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is проверяет категорию ошибки.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
