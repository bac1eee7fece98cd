package state

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind тип пошагового диалога
type Kind string

const (
	KindCourseCreation    Kind = "course_creation"    // админ создаёт курс
	KindEpisodeCreation   Kind = "episode_creation"   // админ добавляет эпизод в курс
	KindReceiptSubmission Kind = "receipt_submission" // пользователь отправляет чек
)

// FieldType ожидаемый тип значения на шаге диалога
type FieldType int

const (
	FieldText         FieldType = iota // непустой текст
	FieldOptionalText                  // текст или "-" для пропуска
	FieldInteger                       // целое > 0
	FieldPrice                         // неотрицательная цена
	FieldPhoto                         // фото
	FieldVideo                         // видео
)

// Ключи полей и начальных данных
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyPrice       = "price"
	KeyNumber      = "number"
	KeyVideo       = "video"
	KeyReceipt     = "receipt"

	SeedCourseID  = "course_id"
	SeedEpisodeID = "episode_id"
)

// Field шаг диалога
type Field struct {
	Key    string
	Type   FieldType
	Prompt string
}

// Input то, что пользователь прислал в ответ на шаг
type Input struct {
	Text    string
	PhotoID string
	VideoID string
}

// Session активный диалог пользователя. Сериализуется в JSON для Redis
type Session struct {
	// Rev меняется при каждой записи. Завершение забирает сессию только той ревизии,
	// которую прочитало
	Rev       string            `json:"rev"`
	UserID    int64             `json:"user_id"`
	Kind      Kind              `json:"kind"`
	Cursor    int               `json:"cursor"`
	Values    map[string]string `json:"values"`
	Seed      map[string]int64  `json:"seed,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Field возвращает текущий шаг. false, если все шаги пройдены
func (s *Session) Field() (Field, bool) {
	fields := Fields(s.Kind)
	if s.Cursor < 0 || s.Cursor >= len(fields) {
		return Field{}, false
	}
	return fields[s.Cursor], true
}

// Done true, когда курсор прошёл последний шаг
func (s *Session) Done() bool {
	return s.Cursor >= len(Fields(s.Kind))
}

// Text возвращает сохранённое значение поля
func (s *Session) Text(key string) string {
	return s.Values[key]
}

// Int возвращает числовое поле. Значение уже проверено при вводе
func (s *Session) Int(key string) int {
	n, _ := strconv.Atoi(s.Values[key])
	return n
}

// Price возвращает цену. Значение уже проверено при вводе
func (s *Session) Price(key string) decimal.Decimal {
	d, err := decimal.NewFromString(s.Values[key])
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SeedID возвращает ID, переданный при старте диалога
func (s *Session) SeedID(key string) int64 {
	return s.Seed[key]
}

func (s *Session) clone() *Session {
	cp := *s
	cp.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		cp.Values[k] = v
	}
	if s.Seed != nil {
		cp.Seed = make(map[string]int64, len(s.Seed))
		for k, v := range s.Seed {
			cp.Seed[k] = v
		}
	}
	return &cp
}
