package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Helper functions для всех callback handlers

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// LargestPhoto возвращает file_id фото максимального размера
func LargestPhoto(msg *models.Message) string {
	if msg == nil || len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}

// VideoID возвращает file_id видео, в том числе отправленного файлом
func VideoID(msg *models.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Video != nil {
		return msg.Video.FileID
	}
	if msg.Document != nil && isVideoMime(msg.Document.MimeType) {
		return msg.Document.FileID
	}
	return ""
}

func isVideoMime(mime string) bool {
	return strings.HasPrefix(mime, "video/")
}

// IsMessageNotModifiedError ошибка Telegram при редактировании без изменений
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
