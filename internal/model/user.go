package model

import (
	"strconv"
	"time"
)

// User - пользователь Telegram. ID совпадает с Telegram ID.
// Признак администратора не хранится: см. service.UserService.IsAdmin
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName возвращает имя для показа администратору
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "":
		return u.FirstName
	default:
		return "User " + strconv.FormatInt(u.ID, 10)
	}
}
