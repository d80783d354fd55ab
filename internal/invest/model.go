package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks the one-way lifecycle of an investment.
type Status string

const (
	// StatusRunning means the principal is locked and the payout is pending.
	StatusRunning Status = "running"
	// StatusCompleted means the return has been credited. Terminal.
	StatusCompleted Status = "completed"
)

// Investment is a fixed-term deposit. The owner reference is weak: the account
// is looked up at maturity and the investment survives the account's absence.
// Completed investments are kept as history, never deleted.
type Investment struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Principal    decimal.Decimal `json:"principal"`
	ReturnAmount decimal.Decimal `json:"return_amount"`
	DurationDays int             `json:"duration_days"`
	StartTime    time.Time       `json:"start_time"`
	MaturityTime time.Time       `json:"maturity_time"`
	Status       Status          `json:"status"`
}
