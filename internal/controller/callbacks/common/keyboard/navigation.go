package keyboard

import "github.com/go-telegram/bot/models"

// BackButton создаёт кнопку "Назад"
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("🔙 Назад", callbackData)
}

// CancelButton создаёт кнопку "Отмена"
func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("❌ Отмена", callbackData)
}

// ConfirmButton создаёт кнопку "Подтвердить"
func ConfirmButton(text, callbackData string) models.InlineKeyboardButton {
	if text == "" {
		text = "✅ Подтвердить"
	}
	return Button(text, callbackData)
}

// DeleteButton создаёт кнопку удаления
func DeleteButton(callbackData string) models.InlineKeyboardButton {
	return Button("🗑", callbackData)
}

// AddBackButton добавляет кнопку "Назад" к builder
func (b *Builder) AddBackButton(text, callbackData string) *Builder {
	if text == "" {
		return b.Row(BackButton(callbackData))
	}
	return b.Row(Button(text, callbackData))
}
