package delivery

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/watch.html
var watchPage []byte

// TokenValidator проверка токена просмотра, её реализует service.TokenService
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*model.TokenGrant, error)
}

// Общие ответы: причина отказа по токену не раскрывается
var (
	errInvalidToken = gin.H{"error": "access link is invalid or expired"}
	errMobileOnly   = gin.H{"error": "watching is available only on a mobile device or in Telegram"}
	errNoVideo      = gin.H{"error": "video not found"}
	errUnavailable  = gin.H{"error": "video is temporarily unavailable"}
)

type handler struct {
	tokens     TokenValidator
	source     Source
	mobileOnly bool
	logger     *zap.Logger
}

// resolve проверяет токен из пути. При отказе ответ уже отправлен
func (h *handler) resolve(c *gin.Context) (*model.TokenGrant, bool) {
	grant, err := h.tokens.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.logger.Error("Failed to validate token",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusNotFound, errInvalidToken)
		return nil, false
	}
	return grant, true
}

// videoInfo GET /api/video/:token
func (h *handler) videoInfo(c *gin.Context) {
	grant, ok := h.resolve(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":      grant.Title,
		"episode_id": grant.EpisodeID,
	})
}

// stream GET /api/stream/:token
func (h *handler) stream(c *gin.Context) {
	grant, ok := h.resolve(c)
	if !ok {
		return
	}

	if h.mobileOnly && !IsMobileClient(c.GetHeader("User-Agent")) {
		c.AbortWithStatusJSON(http.StatusForbidden, errMobileOnly)
		return
	}

	c.Header("Cache-Control", "private, no-store")

	err := h.source.Serve(c.Writer, c.Request, grant.VideoRef)
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrVideoNotFound):
		h.logger.Warn("Video reference not found in any source",
			zap.String("request_id", GetRequestID(c)),
			zap.Int64("episode_id", grant.EpisodeID))
		c.AbortWithStatusJSON(http.StatusNotFound, errNoVideo)
	default:
		h.logger.Error("Failed to stream video",
			zap.String("request_id", GetRequestID(c)),
			zap.Int64("episode_id", grant.EpisodeID),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, errUnavailable)
	}
}

// watch GET /watch - страница плеера, токен берётся из query на клиенте
func (h *handler) watch(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", watchPage)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// mobileMarkers признаки мобильного клиента или встроенного браузера Telegram
var mobileMarkers = []string{"android", "iphone", "ipad", "mobile", "telegram"}

// IsMobileClient грубая проверка по User-Agent. Не защита, а ограничение для обычных браузеров
func IsMobileClient(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, m := range mobileMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}
