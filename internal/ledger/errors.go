package ledger

import "errors"

var (
	// ErrNotFound indicates the referenced account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateAccount indicates an account with the same ID already exists.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInsufficientFunds occurs when an account lacks available balance to
	// cover a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount indicates a non-positive or non-numeric amount.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrBelowMinimum indicates an amount under a configured policy floor
	// (withdrawal minimum, investment minimum).
	ErrBelowMinimum = errors.New("amount below policy minimum")
)
