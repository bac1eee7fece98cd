package callbacks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// PendingView дополняет покупку данными покупателя и эпизода для подписи к чеку.
// Удалённые пользователь или эпизод не ошибка: подпись покажет только ID
func PendingView(ctx context.Context, h *callbacktypes.Handler, p *model.Purchase) *model.PendingPurchase {
	view := &model.PendingPurchase{Purchase: *p}

	if u, err := h.UserService.GetUser(ctx, p.UserID); err == nil {
		view.Username = u.Username
		view.FirstName = u.FirstName
	}
	if ep, err := h.CatalogService.GetEpisode(ctx, p.EpisodeID); err == nil {
		view.EpisodeTitle = ep.Title
		view.Price = ep.Price
	}

	return view
}

// NotifyAdmin отправляет администратору фото чека с кнопками решения.
// Ошибка отправки логируется, заявка остаётся в списке на проверку
func NotifyAdmin(ctx context.Context, b *bot.Bot, h *callbacktypes.Handler, p *model.Purchase) {
	params := &bot.SendPhotoParams{
		ChatID:    h.AdminID,
		Photo:     &models.InputFileString{Data: p.ReceiptRef},
		Caption:   "🆕 Новая заявка\n\n" + ReviewCaption(PendingView(ctx, h, p)),
		ParseMode: models.ParseModeHTML,
	}
	if kb := ReviewKeyboard(p); kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendPhoto(ctx, params); err != nil {
		h.Logger.Error("Failed to notify admin about purchase",
			zap.Int64("purchase_id", p.ID),
			zap.Int64("admin_id", h.AdminID),
			zap.Error(err))
	}
}

// notifyBuyer сообщает покупателю о решении. Ошибка только логируется,
// решение уже сохранено
func notifyBuyer(hc *common.HandlerContext, p *model.Purchase) {
	title := fmt.Sprintf("эпизод #%d", p.EpisodeID)
	if ep, err := hc.Handler.CatalogService.GetEpisode(hc.Ctx, p.EpisodeID); err == nil {
		title = ep.Title
	}

	params := &bot.SendMessageParams{
		ChatID:    p.UserID,
		ParseMode: models.ParseModeHTML,
	}
	if p.Status == model.PurchaseStatusApproved {
		params.Text = fmt.Sprintf("✅ Оплата подтверждена!\n\nЭпизод <b>%s</b> доступен для просмотра.", esc(title))
		params.ReplyMarkup = keyboard.NewBuilder().
			Row(button("▶ Смотреть", ActionWatch, p.EpisodeID)).
			Row(button("🎞 Мои покупки", ActionMyPurchases)).
			Build()
	} else {
		params.Text = fmt.Sprintf("🚫 Оплата за <b>%s</b> не подтверждена.\n\n"+
			"Если это ошибка, оформите покупку заново и приложите корректный чек.", esc(title))
	}

	if _, err := hc.Bot.SendMessage(hc.Ctx, params); err != nil {
		hc.Handler.Logger.Error("Failed to notify buyer",
			zap.Int64("purchase_id", p.ID),
			zap.Int64("user_id", p.UserID),
			zap.Error(err))
	}
}

// handleAdminReview показывает фото чека с кнопками решения
func handleAdminReview(hc *common.HandlerContext, purchaseID int64) {
	p, err := hc.Handler.PurchaseService.Get(hc.Ctx, purchaseID)
	if err != nil {
		common.HandleError(hc, err, "review_purchase")
		return
	}

	if err := hc.SendPhoto(p.ReceiptRef, ReviewCaption(PendingView(hc.Ctx, hc.Handler, p)), ReviewKeyboard(p)); err != nil {
		common.HandleError(hc, err, "review_purchase")
		return
	}
	hc.Answer("")
}

func handleApprove(hc *common.HandlerContext, purchaseID int64) {
	p, err := hc.Handler.PurchaseService.Approve(hc.Ctx, purchaseID, hc.TelegramID)
	finishReview(hc, p, err, "approve_purchase")
}

func handleReject(hc *common.HandlerContext, purchaseID int64) {
	p, err := hc.Handler.PurchaseService.Reject(hc.Ctx, purchaseID, hc.TelegramID)
	finishReview(hc, p, err, "reject_purchase")
}

// finishReview обновляет подпись к чеку и уведомляет покупателя.
// Для уже обработанной заявки показывает текущий статус без уведомления
func finishReview(hc *common.HandlerContext, p *model.Purchase, err error, operation string) {
	if errors.Is(err, service.ErrAlreadyProcessed) && p != nil {
		refreshReviewMessage(hc, p)
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}
	if err != nil {
		common.HandleError(hc, err, operation)
		return
	}

	refreshReviewMessage(hc, p)
	notifyBuyer(hc, p)

	if p.Status == model.PurchaseStatusApproved {
		hc.Answer("✅ Одобрено")
	} else {
		hc.Answer("🚫 Отклонено")
	}
}

// refreshReviewMessage убирает кнопки и показывает итоговый статус
func refreshReviewMessage(hc *common.HandlerContext, p *model.Purchase) {
	caption := ReviewCaption(PendingView(hc.Ctx, hc.Handler, p))

	var err error
	if hc.Message != nil && len(hc.Message.Photo) > 0 {
		err = hc.EditCaption(caption, ReviewKeyboard(p))
	} else {
		err = hc.EditMessage(caption, ReviewKeyboard(p))
	}
	if err != nil {
		hc.Handler.Logger.Warn("Failed to update review message",
			zap.Int64("purchase_id", p.ID),
			zap.Error(err))
	}
}
