package model

import "github.com/shopspring/decimal"

// Stats - сводка для панели администратора
type Stats struct {
	Users        int
	Courses      int
	Episodes     int
	Sales        int
	Pending      int
	TotalRevenue decimal.Decimal
}
