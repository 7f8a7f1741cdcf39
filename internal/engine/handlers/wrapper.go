package handlers

import (
	"encoding/json"

	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// TypedHandlerFunc - хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер, которому не нужны данные (SUBMIT_TURN, SNAPSHOT)
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload превращает типизированный хендлер в HandlerFunc:
// распаковывает JSON и проверяет payload, если он реализует api.Validator.
// Обе ошибки имеют вид validation.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		var payload T

		if len(raw) == 0 {
			return Result{}, errs.Validationf("payload is required")
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Result{}, &errs.Error{Kind: errs.KindValidation, Msg: "invalid payload format", Err: err}
		}

		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, &errs.Error{Kind: errs.KindValidation, Msg: "validation failed", Err: err}
			}
		}

		return handler(ctx, payload)
	}
}

// WithEmptyPayload - обертка для действий без данных
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}

// RequirePlayer отклоняет действие, если отправитель ещё не вошёл в матч.
func RequirePlayer(handler HandlerFunc) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		if ctx.Player.IsNil() {
			return Result{}, errs.Forbiddenf("join the game first")
		}
		return handler(ctx, raw)
	}
}
