package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutionReceipt result of a submitted (or simulated) order.
type ExecutionReceipt struct {
	OrderID   string
	Symbol    string
	Action    Action
	Quantity  decimal.Decimal
	Simulated bool
	PlacedAt  time.Time
}
