package service

import "errors"

// Доменные ошибки. Контроллеры сопоставляют их с текстом для пользователя через errors.Is
var (
	// ErrValidation некорректный ввод, шаг можно повторить
	ErrValidation = errors.New("validation failed")
	// ErrConflict повторная неотклонённая покупка или занятый номер эпизода
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized действие доступно только администратору
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden у пользователя нет одобренной покупки
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	// ErrAlreadyProcessed покупка уже одобрена или отклонена
	ErrAlreadyProcessed = errors.New("already processed")
)
