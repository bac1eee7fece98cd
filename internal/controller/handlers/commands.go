package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From

	// Регистрация уже выполнена middleware, здесь получаем актуальные данные
	user, err := h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	// /start сбрасывает незавершённый диалог
	if err := h.sessions.Cancel(ctx, from.ID); err != nil {
		h.logger.Warn("Failed to cancel session", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}

	name := user.FirstName
	if name == "" {
		name = user.DisplayName()
	}

	text, kb := callbacks.MainMenuScreen(h.userService.IsAdmin(from.ID))
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("👋 Привет, %s!\n\n%s", html.EscapeString(name), text), kb)
}

// HandleAdmin обрабатывает команду /admin
func (h *Handlers) HandleAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !h.userService.IsAdmin(update.Message.From.ID) {
		h.logger.Warn("Non-admin tried /admin", zap.Int64("telegram_id", update.Message.From.ID))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только администратору.")
		return
	}

	text, kb := callbacks.AdminPanelScreen()
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 <b>Справка</b>\n\n" +
		"/start - Главное меню\n" +
		"/cancel - Отменить текущую операцию\n" +
		"/help - Показать эту справку\n\n" +
		"Как купить эпизод:\n" +
		"1. Откройте «Курсы» и выберите эпизод 🔒\n" +
		"2. Оплатите и нажмите «Я оплатил»\n" +
		"3. Отправьте фото чека\n" +
		"4. После проверки эпизод появится в «Мои покупки»\n\n" +
		"Ссылка на просмотр действует ограниченное время, новую можно получить в любой момент."

	if update.Message.From != nil && h.userService.IsAdmin(update.Message.From.ID) {
		helpText += "\n\n🔐 /admin - Панель администратора"
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	current, err := h.sessions.Current(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	if current == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	if err := h.sessions.Cancel(ctx, telegramID); err != nil {
		h.logger.Error("Failed to cancel session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	h.logger.Info("Session cancelled",
		zap.Int64("telegram_id", telegramID),
		zap.String("kind", string(current.Kind)))

	text, kb := callbacks.MainMenuScreen(h.userService.IsAdmin(telegramID))
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\n"+text, kb)
}

// HandleDefault логирует обновления без обработчика
func (h *Handlers) HandleDefault(_ context.Context, _ *bot.Bot, update *models.Update) {
	h.logger.Debug("Unhandled update", zap.Int64("update_id", update.ID))
}
