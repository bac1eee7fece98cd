package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// RegisterCompletions регистрирует завершающие действия диалогов.
// Бот нужен для ответа пользователю и уведомления администратора
func (h *Handlers) RegisterCompletions(b *bot.Bot) {
	h.sessions.Handle(state.KindCourseCreation, func(ctx context.Context, s *state.Session) error {
		return h.completeCourse(ctx, b, s)
	})
	h.sessions.Handle(state.KindEpisodeCreation, func(ctx context.Context, s *state.Session) error {
		return h.completeEpisode(ctx, b, s)
	})
	h.sessions.Handle(state.KindReceiptSubmission, func(ctx context.Context, s *state.Session) error {
		return h.completeReceipt(ctx, b, s)
	})
}

func (h *Handlers) completeCourse(ctx context.Context, b *bot.Bot, s *state.Session) error {
	course, err := h.catalogService.CreateCourse(ctx, s.UserID,
		s.Text(state.KeyTitle),
		s.Text(state.KeyDescription),
		s.Price(state.KeyPrice),
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	text, kb := callbacks.AdminCourseScreen(course, nil)
	h.sendMessage(ctx, b, s.UserID, "✅ Курс создан!\n\n"+text, kb)
	return nil
}

func (h *Handlers) completeEpisode(ctx context.Context, b *bot.Bot, s *state.Session) error {
	courseID := s.SeedID(state.SeedCourseID)
	ep := &model.Episode{
		CourseID:    courseID,
		Number:      s.Int(state.KeyNumber),
		Title:       s.Text(state.KeyTitle),
		Description: s.Text(state.KeyDescription),
		Price:       s.Price(state.KeyPrice),
		VideoRef:    s.Text(state.KeyVideo),
	}
	if err := h.catalogService.CreateEpisode(ctx, s.UserID, ep); err != nil {
		return fmt.Errorf("create episode: %w", err)
	}

	course, err := h.catalogService.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	episodes, err := h.catalogService.ListEpisodes(ctx, courseID)
	if err != nil {
		return fmt.Errorf("list episodes: %w", err)
	}

	text, kb := callbacks.AdminCourseScreen(course, episodes)
	h.sendMessage(ctx, b, s.UserID, "✅ Эпизод добавлен!\n\n"+text, kb)
	return nil
}

// completeReceipt создаёт заявку и отправляет чек администратору
func (h *Handlers) completeReceipt(ctx context.Context, b *bot.Bot, s *state.Session) error {
	p, err := h.purchaseService.Create(ctx, s.UserID, s.SeedID(state.SeedEpisodeID), s.Text(state.KeyReceipt))
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}

	h.sendMessage(ctx, b, s.UserID,
		"✅ Чек отправлен на проверку.\n\nКогда администратор подтвердит оплату, эпизод появится в «Мои покупки».",
		nil)

	callbacks.NotifyAdmin(ctx, b, h.deps, p)

	h.logger.Info("Receipt submitted",
		zap.Int64("purchase_id", p.ID),
		zap.Int64("user_id", p.UserID),
		zap.Int64("episode_id", p.EpisodeID))
	return nil
}
