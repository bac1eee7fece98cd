package formatting

import (
	"fmt"
	"time"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTTL форматирует срок действия ссылки: "24 часа", "30 минут"
func FormatTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		return fmt.Sprintf("%d %s", h, PluralizeHours(h))
	}
	m := int(d / time.Minute)
	return fmt.Sprintf("%d мин", m)
}
