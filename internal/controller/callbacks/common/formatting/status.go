package formatting

import "github.com/Freeeeeet/episode_shop_bot/internal/model"

// PurchaseStatusDisplay представляет отображение статуса покупки
type PurchaseStatusDisplay struct {
	Emoji string
	Text  string
}

// GetPurchaseStatusDisplay возвращает emoji и текст для статуса покупки
func GetPurchaseStatusDisplay(status model.PurchaseStatus) PurchaseStatusDisplay {
	displays := map[model.PurchaseStatus]PurchaseStatusDisplay{
		model.PurchaseStatusPending:  {"⏳", "На проверке"},
		model.PurchaseStatusApproved: {"✅", "Одобрена"},
		model.PurchaseStatusRejected: {"🚫", "Отклонена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return PurchaseStatusDisplay{"❓", "Неизвестно"}
}
