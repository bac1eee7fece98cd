package formatting

// pluralize выбирает форму слова для числа: one (1), few (2-4), many (5-20)
func pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeEpisodes возвращает правильное склонение слова "эпизод"
func PluralizeEpisodes(count int) string {
	return pluralize(count, "эпизод", "эпизода", "эпизодов")
}

// PluralizeUsers возвращает правильное склонение слова "пользователь"
func PluralizeUsers(count int) string {
	return pluralize(count, "пользователь", "пользователя", "пользователей")
}

// PluralizeHours возвращает правильное склонение слова "час"
func PluralizeHours(count int) string {
	return pluralize(count, "час", "часа", "часов")
}
