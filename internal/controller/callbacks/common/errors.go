package common

import (
	"errors"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки.
// Отказ в доступе не раскрывает, существует ли объект
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return "❌ Доступно только администратору"
	case errors.Is(err, service.ErrForbidden):
		return "❌ У вас нет доступа к этому эпизоду"
	case errors.Is(err, service.ErrConflict):
		return "❌ Вы уже купили этот эпизод или ваша заявка ещё на проверке"
	case errors.Is(err, service.ErrAlreadyProcessed):
		return "ℹ️ Эта заявка уже обработана"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Не найдено"
	case errors.Is(err, service.ErrValidation), errors.Is(err, state.ErrValidation):
		return "❌ Неверное значение, попробуйте ещё раз"
	case errors.Is(err, state.ErrNoSession):
		return "❌ Нет активной операции. Начните заново"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка. Попробуйте позже"
	}
}
