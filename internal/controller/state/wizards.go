package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// skipMarker пропуск необязательного поля
const skipMarker = "-"

var wizards = map[Kind][]Field{
	KindCourseCreation: {
		{Key: KeyTitle, Type: FieldText, Prompt: "📝 Введите название курса:"},
		{Key: KeyDescription, Type: FieldOptionalText, Prompt: "📝 Введите описание курса (или отправьте «-», чтобы пропустить):"},
		{Key: KeyPrice, Type: FieldPrice, Prompt: "💰 Введите цену всего курса (0, если бесплатно):"},
	},
	KindEpisodeCreation: {
		{Key: KeyNumber, Type: FieldInteger, Prompt: "🔢 Введите номер эпизода:"},
		{Key: KeyTitle, Type: FieldText, Prompt: "📝 Введите название эпизода:"},
		{Key: KeyDescription, Type: FieldOptionalText, Prompt: "📝 Введите описание эпизода (или отправьте «-», чтобы пропустить):"},
		{Key: KeyPrice, Type: FieldPrice, Prompt: "💰 Введите цену эпизода:"},
		{Key: KeyVideo, Type: FieldVideo, Prompt: "🎬 Отправьте видеофайл:"},
	},
	KindReceiptSubmission: {
		{Key: KeyReceipt, Type: FieldPhoto, Prompt: "💳 Отправьте фото чека об оплате.\n\nЗаявку проверит администратор, о результате вы получите уведомление."},
	},
}

// Fields возвращает шаги диалога. nil для неизвестного типа
func Fields(kind Kind) []Field {
	return wizards[kind]
}

// parseInput проверяет ввод по типу поля и возвращает нормализованное значение
func parseInput(f Field, in Input) (string, error) {
	text := strings.TrimSpace(in.Text)

	switch f.Type {
	case FieldText:
		if text == "" {
			return "", fmt.Errorf("%w: text expected", ErrValidation)
		}
		return text, nil

	case FieldOptionalText:
		if text == "" {
			return "", fmt.Errorf("%w: text or %q expected", ErrValidation, skipMarker)
		}
		if text == skipMarker {
			return "", nil
		}
		return text, nil

	case FieldInteger:
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%w: positive integer expected", ErrValidation)
		}
		return strconv.Itoa(n), nil

	case FieldPrice:
		// 9,99 тоже принимаем
		d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
		if err != nil || d.IsNegative() {
			return "", fmt.Errorf("%w: non-negative number expected", ErrValidation)
		}
		return d.StringFixed(2), nil

	case FieldPhoto:
		if in.PhotoID == "" {
			return "", fmt.Errorf("%w: photo expected", ErrValidation)
		}
		return in.PhotoID, nil

	case FieldVideo:
		if in.VideoID == "" {
			return "", fmt.Errorf("%w: video expected", ErrValidation)
		}
		return in.VideoID, nil
	}

	return "", fmt.Errorf("unknown field type %d", f.Type)
}
