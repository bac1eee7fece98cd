package callbacktypes

import (
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService     *service.UserService
	CatalogService  *service.CatalogService
	PurchaseService *service.PurchaseService
	TokenService    *service.TokenService
	Sessions        *state.Manager
	Logger          *zap.Logger

	// AdminID получатель уведомлений о новых заявках
	AdminID int64
	// WebAppURL базовый адрес страницы просмотра
	WebAppURL string
}
