package callbacks

import (
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"go.uber.org/zap"
)

// handleMainMenu возвращает в главное меню и сбрасывает незавершённый диалог
func handleMainMenu(hc *common.HandlerContext) {
	if err := hc.Handler.Sessions.Cancel(hc.Ctx, hc.TelegramID); err != nil {
		hc.Handler.Logger.Warn("Failed to cancel session", zap.Error(err))
	}

	text, kb := MainMenuScreen(hc.IsAdmin())
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "main_menu")
		return
	}
	hc.Answer("")
}

func handleBrowseCourses(hc *common.HandlerContext) {
	courses, err := hc.Handler.CatalogService.ListCourses(hc.Ctx)
	if err != nil {
		common.HandleError(hc, err, "list_courses")
		return
	}

	text, kb := CoursesScreen(courses)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "list_courses")
		return
	}
	hc.Answer("")
}

// handleCourse показывает эпизоды курса с отметками о покупке
func handleCourse(hc *common.HandlerContext, courseID int64) {
	course, err := hc.Handler.CatalogService.GetCourse(hc.Ctx, courseID)
	if err != nil {
		common.HandleError(hc, err, "get_course")
		return
	}

	episodes, err := hc.Handler.CatalogService.ListEpisodes(hc.Ctx, courseID)
	if err != nil {
		common.HandleError(hc, err, "list_episodes")
		return
	}

	owned, err := hc.Handler.PurchaseService.ListOwned(hc.Ctx, hc.TelegramID)
	if err != nil {
		common.HandleError(hc, err, "list_owned")
		return
	}
	ownedIDs := make(map[int64]bool, len(owned))
	for _, o := range owned {
		ownedIDs[o.EpisodeID] = true
	}

	text, kb := CourseScreen(course, episodes, ownedIDs)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "get_course")
		return
	}
	hc.Answer("")
}

func handleBuy(hc *common.HandlerContext, episodeID int64) {
	ep, err := hc.Handler.CatalogService.GetEpisode(hc.Ctx, episodeID)
	if err != nil {
		common.HandleError(hc, err, "buy")
		return
	}

	owned, err := hc.Handler.PurchaseService.HasAccess(hc.Ctx, hc.TelegramID, episodeID)
	if err != nil {
		common.HandleError(hc, err, "buy")
		return
	}
	if owned {
		hc.AnswerAlert("✅ Этот эпизод уже куплен. Откройте его в «Мои покупки»")
		return
	}

	text, kb := BuyConfirmScreen(ep)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "buy")
		return
	}
	hc.Answer("")
}

// handleConfirmBuy начинает диалог отправки чека
func handleConfirmBuy(hc *common.HandlerContext, episodeID int64) {
	if _, err := hc.Handler.CatalogService.GetEpisode(hc.Ctx, episodeID); err != nil {
		common.HandleError(hc, err, "confirm_buy")
		return
	}

	startWizard(hc, state.KindReceiptSubmission, map[string]int64{state.SeedEpisodeID: episodeID})
}

func handleMyPurchases(hc *common.HandlerContext) {
	owned, err := hc.Handler.PurchaseService.ListOwned(hc.Ctx, hc.TelegramID)
	if err != nil {
		common.HandleError(hc, err, "my_purchases")
		return
	}

	text, kb := MyPurchasesScreen(owned)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "my_purchases")
		return
	}
	hc.Answer("")
}

// handleWatch выдаёт новую ссылку на просмотр. Ссылка отправляется
// отдельным сообщением, чтобы меню покупок осталось на месте
func handleWatch(hc *common.HandlerContext, episodeID int64) {
	tok, err := hc.Handler.TokenService.Issue(hc.Ctx, hc.TelegramID, episodeID)
	if err != nil {
		common.HandleError(hc, err, "watch")
		return
	}

	ep, err := hc.Handler.CatalogService.GetEpisode(hc.Ctx, episodeID)
	if err != nil {
		common.HandleError(hc, err, "watch")
		return
	}

	link := WatchURL(hc.Handler.WebAppURL, tok.Token)
	text, kb := WatchScreen(ep.Title, link, hc.Handler.TokenService.TTL())
	if err := hc.SendMessage(text, kb); err != nil {
		common.HandleError(hc, err, "watch")
		return
	}

	hc.Handler.Logger.Info("Watch link sent",
		zap.Int64("user_id", hc.TelegramID),
		zap.Int64("episode_id", episodeID))
	hc.Answer("")
}

func handleCancelSession(hc *common.HandlerContext) {
	if err := hc.Handler.Sessions.Cancel(hc.Ctx, hc.TelegramID); err != nil {
		common.HandleError(hc, err, "cancel_session")
		return
	}

	text, kb := MainMenuScreen(hc.IsAdmin())
	if err := hc.EditMessage("❌ Отменено\n\n"+text, kb); err != nil {
		common.HandleError(hc, err, "cancel_session")
		return
	}
	common.LogAndAnswer(hc, "Session cancelled", "Отменено")
}
