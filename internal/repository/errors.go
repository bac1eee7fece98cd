package repository

import "errors"

// ErrDuplicate нарушение уникального ограничения (повторная покупка, номер эпизода)
var ErrDuplicate = errors.New("duplicate record")
