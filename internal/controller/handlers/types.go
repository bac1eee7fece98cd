package handlers

import (
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд и сообщений
type Handlers struct {
	userService     *service.UserService
	catalogService  *service.CatalogService
	purchaseService *service.PurchaseService
	sessions        *state.Manager
	logger          *zap.Logger

	// deps нужны для общих с callbacks экранов и уведомлений
	deps *callbacktypes.Handler
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(deps *callbacktypes.Handler) *Handlers {
	return &Handlers{
		userService:     deps.UserService,
		catalogService:  deps.CatalogService,
		purchaseService: deps.PurchaseService,
		sessions:        deps.Sessions,
		logger:          deps.Logger,
		deps:            deps,
	}
}
