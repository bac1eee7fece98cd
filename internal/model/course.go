package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course - курс, владеет эпизодами (каскадное удаление)
type Course struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"` // пустая строка = нет описания
	Price       decimal.Decimal `json:"price"`       // информационная цена за весь курс
	CreatedAt   time.Time       `json:"created_at"`
}

// Episode - отдельно продаваемое видео внутри курса
type Episode struct {
	ID          int64           `json:"id"`
	CourseID    int64           `json:"course_id"`
	Number      int             `json:"number"` // уникален в пределах курса
	Title       string          `json:"title"`
	Description string          `json:"description"`
	VideoRef    string          `json:"-"` // file_id Telegram или имя файла в VIDEOS_DIR
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}
