package callbacks

import (
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"go.uber.org/zap"
)

// usersPageSize сколько пользователей показывать в списке
const usersPageSize = 20

func handleAdminPanel(hc *common.HandlerContext) {
	text, kb := AdminPanelScreen()
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "admin_panel")
		return
	}
	hc.Answer("")
}

func handleAdminCourses(hc *common.HandlerContext) {
	courses, err := hc.Handler.CatalogService.ListCourses(hc.Ctx)
	if err != nil {
		common.HandleError(hc, err, "admin_courses")
		return
	}

	text, kb := AdminCoursesScreen(courses)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "admin_courses")
		return
	}
	hc.Answer("")
}

func handleAdminAddCourse(hc *common.HandlerContext) {
	startWizard(hc, state.KindCourseCreation, nil)
}

// showAdminCourse загружает курс и рисует экран администратора
func showAdminCourse(hc *common.HandlerContext, courseID int64) error {
	course, err := hc.Handler.CatalogService.GetCourse(hc.Ctx, courseID)
	if err != nil {
		return err
	}
	episodes, err := hc.Handler.CatalogService.ListEpisodes(hc.Ctx, courseID)
	if err != nil {
		return err
	}

	text, kb := AdminCourseScreen(course, episodes)
	return hc.EditMessage(text, kb)
}

func handleAdminCourse(hc *common.HandlerContext, courseID int64) {
	if err := showAdminCourse(hc, courseID); err != nil {
		common.HandleError(hc, err, "admin_course")
		return
	}
	hc.Answer("")
}

func handleAdminAddEpisode(hc *common.HandlerContext, courseID int64) {
	if _, err := hc.Handler.CatalogService.GetCourse(hc.Ctx, courseID); err != nil {
		common.HandleError(hc, err, "add_episode")
		return
	}
	startWizard(hc, state.KindEpisodeCreation, map[string]int64{state.SeedCourseID: courseID})
}

func handleAdminDeleteCourse(hc *common.HandlerContext, courseID int64) {
	course, err := hc.Handler.CatalogService.GetCourse(hc.Ctx, courseID)
	if err != nil {
		common.HandleError(hc, err, "delete_course")
		return
	}
	episodes, err := hc.Handler.CatalogService.ListEpisodes(hc.Ctx, courseID)
	if err != nil {
		common.HandleError(hc, err, "delete_course")
		return
	}

	text, kb := ConfirmDeleteCourseScreen(course, len(episodes))
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "delete_course")
		return
	}
	hc.Answer("")
}

func handleAdminConfirmCourse(hc *common.HandlerContext, courseID int64) {
	if err := hc.Handler.CatalogService.DeleteCourse(hc.Ctx, hc.TelegramID, courseID); err != nil {
		common.HandleError(hc, err, "confirm_delete_course")
		return
	}

	courses, err := hc.Handler.CatalogService.ListCourses(hc.Ctx)
	if err != nil {
		common.HandleError(hc, err, "confirm_delete_course")
		return
	}
	text, kb := AdminCoursesScreen(courses)
	if err := hc.EditMessage("✅ Курс удалён\n\n"+text, kb); err != nil {
		common.HandleError(hc, err, "confirm_delete_course")
		return
	}
	common.LogAndAnswer(hc, "Course deleted", "Курс удалён")
}

func handleAdminDeleteEpisode(hc *common.HandlerContext, episodeID int64) {
	ep, err := hc.Handler.CatalogService.GetEpisode(hc.Ctx, episodeID)
	if err != nil {
		common.HandleError(hc, err, "delete_episode")
		return
	}

	text, kb := ConfirmDeleteEpisodeScreen(ep)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "delete_episode")
		return
	}
	hc.Answer("")
}

// handleAdminConfirmEpisode удаляет эпизод и возвращает к курсу.
// ID курса приходит в кнопке: эпизода после удаления уже нет
func handleAdminConfirmEpisode(hc *common.HandlerContext, episodeID, courseID int64) {
	if err := hc.Handler.CatalogService.DeleteEpisode(hc.Ctx, hc.TelegramID, episodeID); err != nil {
		common.HandleError(hc, err, "confirm_delete_episode")
		return
	}

	if err := showAdminCourse(hc, courseID); err != nil {
		common.HandleError(hc, err, "confirm_delete_episode")
		return
	}
	common.LogAndAnswer(hc, "Episode deleted", "Эпизод удалён")
}

func handleAdminPending(hc *common.HandlerContext) {
	pending, err := hc.Handler.PurchaseService.ListPending(hc.Ctx, hc.TelegramID)
	if err != nil {
		common.HandleError(hc, err, "admin_pending")
		return
	}

	text, kb := PendingScreen(pending)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "admin_pending")
		return
	}
	hc.Answer("")
}

func handleAdminUsers(hc *common.HandlerContext) {
	users, err := hc.Handler.UserService.ListUsers(hc.Ctx, hc.TelegramID, usersPageSize)
	if err != nil {
		common.HandleError(hc, err, "admin_users")
		return
	}

	text, kb := UsersScreen(users)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "admin_users")
		return
	}
	hc.Answer("")
}

func handleAdminStats(hc *common.HandlerContext) {
	stats, err := hc.Handler.CatalogService.Stats(hc.Ctx, hc.TelegramID)
	if err != nil {
		common.HandleError(hc, err, "admin_stats")
		return
	}

	text, kb := StatsScreen(stats)
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "admin_stats")
		return
	}
	hc.Answer("")
}

// startWizard начинает диалог и показывает первый вопрос
func startWizard(hc *common.HandlerContext, kind state.Kind, seed map[string]int64) {
	s, err := hc.Handler.Sessions.Start(hc.Ctx, hc.TelegramID, kind, seed)
	if err != nil {
		common.HandleError(hc, err, "start_"+string(kind))
		return
	}

	hc.Handler.Logger.Info("Wizard started",
		zap.Int64("telegram_id", hc.TelegramID),
		zap.String("kind", string(kind)))

	field, _ := s.Field()
	if err := hc.EditMessage(field.Prompt, CancelKeyboard()); err != nil {
		common.HandleError(hc, err, "start_"+string(kind))
		return
	}
	hc.Answer("")
}
