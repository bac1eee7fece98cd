package callbacks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action закрытый набор действий inline-кнопок.
// Данные кнопки: имя[:id[:id]], проверяются один раз в Decode
type Action uint8

const (
	ActionUnknown Action = iota

	// Пользователь
	ActionMainMenu      // menu
	ActionBrowseCourses // courses
	ActionCourse        // course:<course_id>
	ActionBuy           // buy:<episode_id>
	ActionConfirmBuy    // buy_ok:<episode_id>
	ActionCancelBuy     // buy_cancel
	ActionMyPurchases   // my
	ActionWatch         // watch:<episode_id>
	ActionNoop          // noop
	ActionCancelSession // cancel

	// Администратор
	ActionAdminPanel          // adm
	ActionAdminCourses        // adm_courses
	ActionAdminAddCourse      // adm_course_new
	ActionAdminCourse         // adm_course:<course_id>
	ActionAdminAddEpisode     // adm_ep_new:<course_id>
	ActionAdminDeleteCourse   // adm_course_del:<course_id>
	ActionAdminConfirmCourse  // adm_course_del_ok:<course_id>
	ActionAdminDeleteEpisode  // adm_ep_del:<episode_id>:<course_id>
	ActionAdminConfirmEpisode // adm_ep_del_ok:<episode_id>:<course_id>
	ActionAdminPending        // adm_pending
	ActionAdminReview         // adm_review:<purchase_id>
	ActionApprove             // approve:<purchase_id>
	ActionReject              // reject:<purchase_id>
	ActionAdminUsers          // adm_users
	ActionAdminStats          // adm_stats
)

// MaxDataLen ограничение Telegram на callback_data
const MaxDataLen = 64

const separator = ":"

type actionDef struct {
	name  string
	arity int
}

var actionDefs = map[Action]actionDef{
	ActionMainMenu:      {"menu", 0},
	ActionBrowseCourses: {"courses", 0},
	ActionCourse:        {"course", 1},
	ActionBuy:           {"buy", 1},
	ActionConfirmBuy:    {"buy_ok", 1},
	ActionCancelBuy:     {"buy_cancel", 0},
	ActionMyPurchases:   {"my", 0},
	ActionWatch:         {"watch", 1},
	ActionNoop:          {"noop", 0},
	ActionCancelSession: {"cancel", 0},

	ActionAdminPanel:          {"adm", 0},
	ActionAdminCourses:        {"adm_courses", 0},
	ActionAdminAddCourse:      {"adm_course_new", 0},
	ActionAdminCourse:         {"adm_course", 1},
	ActionAdminAddEpisode:     {"adm_ep_new", 1},
	ActionAdminDeleteCourse:   {"adm_course_del", 1},
	ActionAdminConfirmCourse:  {"adm_course_del_ok", 1},
	ActionAdminDeleteEpisode:  {"adm_ep_del", 2},
	ActionAdminConfirmEpisode: {"adm_ep_del_ok", 2},
	ActionAdminPending:        {"adm_pending", 0},
	ActionAdminReview:         {"adm_review", 1},
	ActionApprove:             {"approve", 1},
	ActionReject:              {"reject", 1},
	ActionAdminUsers:          {"adm_users", 0},
	ActionAdminStats:          {"adm_stats", 0},
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionDefs))
	for a, def := range actionDefs {
		m[def.name] = a
	}
	return m
}()

// ErrInvalidPayload неизвестные или повреждённые данные кнопки
var ErrInvalidPayload = errors.New("invalid callback payload")

// String возвращает имя действия в формате данных кнопки
func (a Action) String() string {
	if def, ok := actionDefs[a]; ok {
		return def.name
	}
	return "unknown"
}

// Arity количество ID у действия
func (a Action) Arity() int {
	return actionDefs[a].arity
}

// Payload разобранные данные кнопки
type Payload struct {
	Action Action
	ID     int64 // первый ID (курс, эпизод или покупка)
	Arg    int64 // второй ID, если есть
}

// Encode собирает данные кнопки. Количество ids должно совпадать с Arity,
// иначе это ошибка программиста и вызывается panic
func Encode(a Action, ids ...int64) string {
	def, ok := actionDefs[a]
	if !ok {
		panic(fmt.Sprintf("callbacks: encode unknown action %d", a))
	}
	if len(ids) != def.arity {
		panic(fmt.Sprintf("callbacks: action %s expects %d ids, got %d", def.name, def.arity, len(ids)))
	}

	var sb strings.Builder
	sb.WriteString(def.name)
	for _, id := range ids {
		sb.WriteString(separator)
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}

// Decode разбирает данные кнопки
func Decode(data string) (Payload, error) {
	if data == "" || len(data) > MaxDataLen {
		return Payload{}, ErrInvalidPayload
	}

	parts := strings.Split(data, separator)
	action, ok := actionsByName[parts[0]]
	if !ok {
		return Payload{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, parts[0])
	}

	ids := parts[1:]
	if len(ids) != action.Arity() {
		return Payload{}, fmt.Errorf("%w: %s expects %d ids, got %d", ErrInvalidPayload, action, action.Arity(), len(ids))
	}

	p := Payload{Action: action}
	for i, raw := range ids {
		id, err := parseID(raw)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %s id %q", ErrInvalidPayload, action, raw)
		}
		if i == 0 {
			p.ID = id
		} else {
			p.Arg = id
		}
	}

	return p, nil
}

// parseID только десятичные цифры, значение > 0
func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
