package model

import "time"

// AccessToken - короткоживущая ссылка на просмотр одного эпизода
type AccessToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	EpisodeID int64     `json:"episode_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenGrant - результат успешной проверки токена
type TokenGrant struct {
	UserID    int64
	EpisodeID int64
	VideoRef  string
	Title     string
}
