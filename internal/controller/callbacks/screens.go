package callbacks

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// Экраны собираются чистыми функциями: текст в HTML + клавиатура.
// Обработчики только загружают данные и отправляют результат

func button(text string, a Action, ids ...int64) models.InlineKeyboardButton {
	return keyboard.Button(text, Encode(a, ids...))
}

func esc(s string) string {
	return html.EscapeString(s)
}

// CancelKeyboard кнопка отмены активного диалога
func CancelKeyboard() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.CancelButton(Encode(ActionCancelSession))).
		Build()
}

// MainMenuScreen главное меню
func MainMenuScreen(isAdmin bool) (string, *models.InlineKeyboardMarkup) {
	text := "🎬 <b>Главное меню</b>\n\n" +
		"Здесь можно купить отдельные эпизоды курсов и смотреть купленные видео."

	kb := keyboard.NewBuilder().
		Row(button("📚 Курсы", ActionBrowseCourses)).
		Row(button("🎞 Мои покупки", ActionMyPurchases))
	if isAdmin {
		text += "\n\n🔐 Вы администратор: /admin"
		kb.Row(button("🔐 Панель администратора", ActionAdminPanel))
	}

	return text, kb.Build()
}

// CoursesScreen список курсов для покупателя
func CoursesScreen(courses []*model.Course) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	if len(courses) == 0 {
		kb.AddBackButton("", Encode(ActionMainMenu))
		return "📚 Курсов пока нет", kb.Build()
	}

	for _, c := range courses {
		kb.Row(button("📘 "+c.Title, ActionCourse, c.ID))
	}
	kb.AddBackButton("", Encode(ActionMainMenu))

	return "📚 <b>Курсы</b>\n\nВыберите курс:", kb.Build()
}

// CourseScreen эпизоды курса. Купленные отмечены ▶, остальные 🔒 с ценой
func CourseScreen(course *model.Course, episodes []*model.Episode, owned map[int64]bool) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📘 <b>%s</b>\n", esc(course.Title))
	if course.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", esc(course.Description))
	}
	if course.Price.IsPositive() {
		fmt.Fprintf(&sb, "\n💰 Цена курса: %s\n", formatting.FormatPriceShort(course.Price))
	}

	kb := keyboard.NewBuilder()
	if len(episodes) == 0 {
		sb.WriteString("\nЭпизодов пока нет")
	} else {
		fmt.Fprintf(&sb, "\n%d %s:", len(episodes), formatting.PluralizeEpisodes(len(episodes)))
	}

	for _, ep := range episodes {
		if owned[ep.ID] {
			kb.Row(button(fmt.Sprintf("▶ %d. %s", ep.Number, ep.Title), ActionWatch, ep.ID))
			continue
		}
		kb.Row(button(
			fmt.Sprintf("🔒 %d. %s · %s", ep.Number, ep.Title, formatting.FormatPriceShort(ep.Price)),
			ActionBuy, ep.ID,
		))
	}
	kb.AddBackButton("", Encode(ActionBrowseCourses))

	return sb.String(), kb.Build()
}

// BuyConfirmScreen подтверждение покупки эпизода
func BuyConfirmScreen(ep *model.Episode) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 <b>Покупка эпизода</b>\n\n🎬 %d. %s\n", ep.Number, esc(ep.Title))
	if ep.Description != "" {
		fmt.Fprintf(&sb, "📝 %s\n", esc(ep.Description))
	}
	fmt.Fprintf(&sb, "💰 Цена: %s\n\n", formatting.FormatPrice(ep.Price))
	sb.WriteString("Оплатите эпизод и нажмите «Я оплатил», затем отправьте фото чека.")

	kb := keyboard.NewBuilder().
		Row(
			keyboard.ConfirmButton("✅ Я оплатил", Encode(ActionConfirmBuy, ep.ID)),
			keyboard.CancelButton(Encode(ActionCancelBuy)),
		)

	return sb.String(), kb.Build()
}

// MyPurchasesScreen купленные эпизоды, сгруппированные по курсам
func MyPurchasesScreen(owned []*model.OwnedEpisode) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	if len(owned) == 0 {
		kb.Row(button("📚 Перейти к курсам", ActionBrowseCourses))
		kb.AddBackButton("", Encode(ActionMainMenu))
		return "🎞 У вас пока нет купленных эпизодов", kb.Build()
	}

	var lastCourse int64
	for _, o := range owned {
		if o.CourseID != lastCourse {
			kb.Row(button("📘 "+o.CourseTitle, ActionNoop))
			lastCourse = o.CourseID
		}
		kb.Row(button(fmt.Sprintf("▶ %d. %s", o.EpisodeNumber, o.EpisodeTitle), ActionWatch, o.EpisodeID))
	}
	kb.AddBackButton("", Encode(ActionMainMenu))

	text := fmt.Sprintf("🎞 <b>Мои покупки</b>\n\n%d %s. Нажмите, чтобы смотреть:",
		len(owned), formatting.PluralizeEpisodes(len(owned)))
	return text, kb.Build()
}

// WatchURL ссылка на страницу просмотра с токеном
func WatchURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/watch?token=" + url.QueryEscape(token)
}

// WatchScreen ссылка на просмотр. Telegram открывает WebApp только по https,
// для остальных адресов используется обычная ссылка
func WatchScreen(title, link string, ttl time.Duration) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("▶ <b>%s</b>\n\n"+
		"Ссылка действительна %s.\n"+
		"📱 Просмотр доступен только с мобильного устройства или в Telegram.",
		esc(title), formatting.FormatTTL(ttl))

	open := keyboard.URLButton("▶ Смотреть", link)
	if strings.HasPrefix(link, "https://") {
		open = keyboard.WebAppButton("▶ Смотреть", link)
	}

	kb := keyboard.NewBuilder().
		Row(open).
		AddBackButton("", Encode(ActionMyPurchases))

	return text, kb.Build()
}

// ========================
// Администратор
// ========================

// AdminPanelScreen панель администратора
func AdminPanelScreen() (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder().
		Row(button("📚 Курсы", ActionAdminCourses)).
		Row(button("🧾 Заявки на проверку", ActionAdminPending)).
		Row(
			button("👥 Пользователи", ActionAdminUsers),
			button("📊 Статистика", ActionAdminStats),
		).
		AddBackButton("🏠 Главное меню", Encode(ActionMainMenu))

	return "🔐 <b>Панель администратора</b>", kb.Build()
}

// AdminCoursesScreen список курсов для администратора
func AdminCoursesScreen(courses []*model.Course) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	for _, c := range courses {
		kb.Row(button("📘 "+c.Title, ActionAdminCourse, c.ID))
	}
	kb.Row(button("➕ Добавить курс", ActionAdminAddCourse))
	kb.AddBackButton("", Encode(ActionAdminPanel))

	text := "📚 <b>Курсы</b>"
	if len(courses) == 0 {
		text += "\n\nКурсов пока нет"
	}
	return text, kb.Build()
}

// AdminCourseScreen курс с эпизодами и кнопками удаления
func AdminCourseScreen(course *model.Course, episodes []*model.Episode) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📘 <b>%s</b>\n", esc(course.Title))
	if course.Description != "" {
		fmt.Fprintf(&sb, "📝 %s\n", esc(course.Description))
	}
	fmt.Fprintf(&sb, "💰 Цена курса: %s\n", formatting.FormatPrice(course.Price))
	fmt.Fprintf(&sb, "📅 Создан: %s\n\n", formatting.FormatDate(course.CreatedAt))

	kb := keyboard.NewBuilder()
	if len(episodes) == 0 {
		sb.WriteString("Эпизодов пока нет")
	} else {
		fmt.Fprintf(&sb, "%d %s:", len(episodes), formatting.PluralizeEpisodes(len(episodes)))
	}
	for _, ep := range episodes {
		kb.Row(
			button(fmt.Sprintf("%d. %s · %s", ep.Number, ep.Title, formatting.FormatPriceShort(ep.Price)), ActionNoop),
			keyboard.DeleteButton(Encode(ActionAdminDeleteEpisode, ep.ID, course.ID)),
		)
	}

	kb.Row(button("➕ Добавить эпизод", ActionAdminAddEpisode, course.ID))
	kb.Row(button("🗑 Удалить курс", ActionAdminDeleteCourse, course.ID))
	kb.AddBackButton("", Encode(ActionAdminCourses))

	return sb.String(), kb.Build()
}

// ConfirmDeleteCourseScreen подтверждение удаления курса
func ConfirmDeleteCourseScreen(course *model.Course, episodes int) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("⚠️ Удалить курс <b>%s</b>?\n\n"+
		"Будут удалены %d %s. Покупки останутся в истории, ссылки на просмотр перестанут работать.",
		esc(course.Title), episodes, formatting.PluralizeEpisodes(episodes))

	kb := keyboard.NewBuilder().Row(
		keyboard.ConfirmButton("🗑 Удалить", Encode(ActionAdminConfirmCourse, course.ID)),
		keyboard.CancelButton(Encode(ActionAdminCourse, course.ID)),
	)
	return text, kb.Build()
}

// ConfirmDeleteEpisodeScreen подтверждение удаления эпизода
func ConfirmDeleteEpisodeScreen(ep *model.Episode) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("⚠️ Удалить эпизод <b>%d. %s</b>?", ep.Number, esc(ep.Title))

	kb := keyboard.NewBuilder().Row(
		keyboard.ConfirmButton("🗑 Удалить", Encode(ActionAdminConfirmEpisode, ep.ID, ep.CourseID)),
		keyboard.CancelButton(Encode(ActionAdminCourse, ep.CourseID)),
	)
	return text, kb.Build()
}

// PendingScreen заявки на проверку, новые сверху
func PendingScreen(pending []*model.PendingPurchase) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	if len(pending) == 0 {
		kb.AddBackButton("", Encode(ActionAdminPanel))
		return "🧾 Заявок на проверку нет", kb.Build()
	}

	for _, p := range pending {
		title := p.EpisodeTitle
		if title == "" {
			title = fmt.Sprintf("эпизод #%d", p.EpisodeID)
		}
		kb.Row(button(fmt.Sprintf("#%d %s · %s", p.ID, p.DisplayUser(), title), ActionAdminReview, p.ID))
	}
	kb.AddBackButton("", Encode(ActionAdminPanel))

	return fmt.Sprintf("🧾 <b>Заявки на проверку</b>: %d", len(pending)), kb.Build()
}

// ReviewCaption подпись к фото чека
func ReviewCaption(p *model.PendingPurchase) string {
	display := formatting.GetPurchaseStatusDisplay(p.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 <b>Заявка #%d</b>\n\n", p.ID)
	fmt.Fprintf(&sb, "👤 %s (ID %d)\n", esc(p.DisplayUser()), p.UserID)
	if p.EpisodeTitle != "" {
		fmt.Fprintf(&sb, "🎬 %s\n💰 %s\n", esc(p.EpisodeTitle), formatting.FormatPrice(p.Price))
	} else {
		fmt.Fprintf(&sb, "🎬 Эпизод #%d удалён\n", p.EpisodeID)
	}
	fmt.Fprintf(&sb, "📅 %s\n", formatting.FormatDateTime(p.CreatedAt))
	fmt.Fprintf(&sb, "%s %s", display.Emoji, display.Text)

	return sb.String()
}

// ReviewKeyboard кнопки решения по заявке. У обработанной заявки кнопок нет
func ReviewKeyboard(p *model.Purchase) *models.InlineKeyboardMarkup {
	if p.Status.IsTerminal() {
		return nil
	}
	return keyboard.NewBuilder().
		Row(
			button("✅ Одобрить", ActionApprove, p.ID),
			button("🚫 Отклонить", ActionReject, p.ID),
		).
		Build()
}

// UsersScreen последние пользователи
func UsersScreen(users []*model.User) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>Пользователи</b> (%d %s)\n\n", len(users), formatting.PluralizeUsers(len(users)))
	for i, u := range users {
		fmt.Fprintf(&sb, "%d. %s · ID %d · %s\n", i+1, esc(u.DisplayName()), u.ID, formatting.FormatDate(u.CreatedAt))
	}

	kb := keyboard.NewBuilder().AddBackButton("", Encode(ActionAdminPanel))
	return sb.String(), kb.Build()
}

// StatsScreen сводка продаж
func StatsScreen(s *model.Stats) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📊 <b>Статистика</b>\n\n"+
		"👥 Пользователей: %d\n"+
		"📚 Курсов: %d\n"+
		"🎬 Эпизодов: %d\n"+
		"✅ Продаж: %d\n"+
		"⏳ На проверке: %d\n"+
		"💰 Выручка: %s",
		s.Users, s.Courses, s.Episodes, s.Sales, s.Pending, formatting.FormatPrice(s.TotalRevenue))

	kb := keyboard.NewBuilder().AddBackButton("", Encode(ActionAdminPanel))
	return text, kb.Build()
}
