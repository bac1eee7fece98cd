package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"  // ожидает проверки чека
	PurchaseStatusApproved PurchaseStatus = "approved" // оплата подтверждена
	PurchaseStatusRejected PurchaseStatus = "rejected" // оплата отклонена
)

// IsTerminal - approved и rejected конечные, переходов из них нет
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusApproved || s == PurchaseStatusRejected
}

// Purchase - заявка пользователя на доступ к эпизоду
type Purchase struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"user_id"`
	EpisodeID  int64          `json:"episode_id"`
	Status     PurchaseStatus `json:"status"`
	ReceiptRef string         `json:"receipt_ref"` // file_id фото чека
	CreatedAt  time.Time      `json:"created_at"`
	ReviewedAt *time.Time     `json:"reviewed_at"`
	ReviewedBy *int64         `json:"reviewed_by"`
}

// PendingPurchase - строка списка заявок для администратора
type PendingPurchase struct {
	Purchase
	Username     string
	FirstName    string
	EpisodeTitle string
	Price        decimal.Decimal
}

// DisplayUser возвращает имя покупателя для списка заявок
func (p *PendingPurchase) DisplayUser() string {
	u := User{ID: p.UserID, Username: p.Username, FirstName: p.FirstName}
	return u.DisplayName()
}

// OwnedEpisode - одобренная покупка с данными эпизода и курса
type OwnedEpisode struct {
	EpisodeID     int64
	EpisodeTitle  string
	EpisodeNumber int
	CourseID      int64
	CourseTitle   string
}
