package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleTextMessage передаёт текст в активный диалог
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	h.submit(ctx, b, update.Message, messageInput(update.Message))
}

// IsMediaMessage matcher для фото и видео
func IsMediaMessage(update *models.Update) bool {
	if update.Message == nil {
		return false
	}
	return len(update.Message.Photo) > 0 || common.VideoID(update.Message) != ""
}

// HandleMediaMessage передаёт фото чека или видео эпизода в активный диалог
func (h *Handlers) HandleMediaMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	h.submit(ctx, b, update.Message, messageInput(update.Message))
}

// messageInput собирает ответ пользователя из сообщения
func messageInput(msg *models.Message) state.Input {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return state.Input{
		Text:    text,
		PhotoID: common.LargestPhoto(msg),
		VideoID: common.VideoID(msg),
	}
}

// submit отправляет ответ в менеджер диалогов и показывает следующий шаг
func (h *Handlers) submit(ctx context.Context, b *bot.Bot, msg *models.Message, in state.Input) {
	telegramID := msg.From.ID
	chatID := msg.Chat.ID

	s, err := h.sessions.Submit(ctx, telegramID, in)
	switch {
	case errors.Is(err, state.ErrNoSession):
		// Текст вне диалога игнорируем, медиа подсказываем, что делать
		if in.PhotoID != "" || in.VideoID != "" {
			h.sendError(ctx, b, chatID, "ℹ️ Чтобы отправить чек, выберите эпизод в /start → «Курсы» и нажмите «Я оплатил».")
		}
		h.logger.Debug("No active session, ignoring message", zap.Int64("telegram_id", telegramID))

	case errors.Is(err, state.ErrValidation):
		field, _ := s.Field()
		h.sendMessage(ctx, b, chatID, validationHint(field)+"\n\n"+field.Prompt, callbacks.CancelKeyboard())

	case err != nil && s != nil:
		// Ошибка завершающего действия, сессия уже удалена
		h.logger.Error("Session completion failed",
			zap.Int64("telegram_id", telegramID),
			zap.String("kind", string(s.Kind)),
			zap.Error(err))
		h.sendError(ctx, b, chatID, completionErrorMessage(s.Kind, err))

	case err != nil:
		h.logger.Error("Failed to submit session input",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))

	case !s.Done():
		field, _ := s.Field()
		h.sendMessage(ctx, b, chatID, field.Prompt, callbacks.CancelKeyboard())
	}
}

// validationHint подсказка по ожидаемому формату шага
func validationHint(f state.Field) string {
	switch f.Type {
	case state.FieldInteger:
		return "❌ Нужно целое число больше нуля."
	case state.FieldPrice:
		return "❌ Нужна цена числом, например 490 или 490.50."
	case state.FieldPhoto:
		return "❌ Нужно фото."
	case state.FieldVideo:
		return "❌ Нужно видео."
	default:
		return "❌ Значение не может быть пустым."
	}
}

// completionErrorMessage текст ошибки завершения диалога. Диалог
// к этому моменту удалён, поэтому пользователь начинает заново
func completionErrorMessage(kind state.Kind, err error) string {
	if kind == state.KindEpisodeCreation && errors.Is(err, service.ErrConflict) {
		return "❌ Эпизод с таким номером уже есть в курсе. Добавьте эпизод заново с другим номером."
	}
	return common.ErrorMessage(err)
}
