package callbacks

import (
	"context"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route разбирает данные кнопки и вызывает обработчик действия.
// Данные проверяются один раз здесь, дальше обработчики получают готовые ID
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	p, err := Decode(callback.Data)
	if err != nil {
		h.Logger.Warn("Unknown callback",
			zap.String("data", callback.Data),
			zap.Int64("user_id", callback.From.ID),
			zap.Error(err))
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	user := func(fn func(*common.HandlerContext)) {
		common.WithUser(ctx, b, callback, h, fn)
	}
	admin := func(fn func(*common.HandlerContext)) {
		common.WithAdmin(ctx, b, callback, h, fn)
	}

	switch p.Action {
	// ===== Пользователь =====
	case ActionMainMenu:
		user(handleMainMenu)
	case ActionBrowseCourses:
		user(handleBrowseCourses)
	case ActionCourse:
		user(func(hc *common.HandlerContext) { handleCourse(hc, p.ID) })
	case ActionBuy:
		user(func(hc *common.HandlerContext) { handleBuy(hc, p.ID) })
	case ActionConfirmBuy:
		user(func(hc *common.HandlerContext) { handleConfirmBuy(hc, p.ID) })
	case ActionCancelBuy:
		user(handleBrowseCourses)
	case ActionMyPurchases:
		user(handleMyPurchases)
	case ActionWatch:
		user(func(hc *common.HandlerContext) { handleWatch(hc, p.ID) })
	case ActionNoop:
		common.AnswerCallback(ctx, b, callback.ID, "")
	case ActionCancelSession:
		user(handleCancelSession)

	// ===== Администратор =====
	case ActionAdminPanel:
		admin(handleAdminPanel)
	case ActionAdminCourses:
		admin(handleAdminCourses)
	case ActionAdminAddCourse:
		admin(handleAdminAddCourse)
	case ActionAdminCourse:
		admin(func(hc *common.HandlerContext) { handleAdminCourse(hc, p.ID) })
	case ActionAdminAddEpisode:
		admin(func(hc *common.HandlerContext) { handleAdminAddEpisode(hc, p.ID) })
	case ActionAdminDeleteCourse:
		admin(func(hc *common.HandlerContext) { handleAdminDeleteCourse(hc, p.ID) })
	case ActionAdminConfirmCourse:
		admin(func(hc *common.HandlerContext) { handleAdminConfirmCourse(hc, p.ID) })
	case ActionAdminDeleteEpisode:
		admin(func(hc *common.HandlerContext) { handleAdminDeleteEpisode(hc, p.ID) })
	case ActionAdminConfirmEpisode:
		admin(func(hc *common.HandlerContext) { handleAdminConfirmEpisode(hc, p.ID, p.Arg) })
	case ActionAdminPending:
		admin(handleAdminPending)
	case ActionAdminReview:
		admin(func(hc *common.HandlerContext) { handleAdminReview(hc, p.ID) })
	case ActionApprove:
		admin(func(hc *common.HandlerContext) { handleApprove(hc, p.ID) })
	case ActionReject:
		admin(func(hc *common.HandlerContext) { handleReject(hc, p.ID) })
	case ActionAdminUsers:
		admin(handleAdminUsers)
	case ActionAdminStats:
		admin(handleAdminStats)

	default:
		h.Logger.Warn("Unhandled callback action",
			zap.String("action", p.Action.String()),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
	}
}
