package controller

import (
	"context"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

// NewBotController создаёт бота и обработчики. Middleware регистрации
// пользователей подключается ко всем обработчикам через опции бота
func NewBotController(token string, deps *callbacktypes.Handler) (*BotController, error) {
	cmdHandlers := handlers.NewHandlers(deps)

	botInstance, err := bot.New(token,
		bot.WithDefaultHandler(cmdHandlers.HandleDefault),
		bot.WithMiddlewares(cmdHandlers.RegisterUser),
		bot.WithErrorsHandler(func(err error) {
			deps.Logger.Error("Telegram API error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	cmdHandlers.RegisterCompletions(botInstance)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbacks.NewHandler(deps),
		logger:          deps.Logger,
	}, nil
}

// Bot нужен источнику видео для скачивания файлов Telegram
func (c *BotController) Bot() *bot.Bot {
	return c.bot
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Регистрируем команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypeExact, c.handlers.HandleAdmin)

	// Фото чеков и видео эпизодов (для диалогов)
	c.bot.RegisterHandlerMatchFunc(handlers.IsMediaMessage, c.handlers.HandleMediaMessage)

	// Обработчик текстовых сообщений (для диалогов)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Главное меню"},
		{Command: "help", Description: "❓ Справка"},
		{Command: "cancel", Description: "❌ Отменить текущую операцию"},
		{Command: "admin", Description: "🔐 Панель администратора"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	c.logger.Info("Bot stopped")
	return nil
}
