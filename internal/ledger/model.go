package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger transaction. The sign of a kind determines how its
// amount contributes to the account balance.
type Kind string

const (
	KindCredit           Kind = "credit"
	KindDebit            Kind = "debit"
	KindWireSent         Kind = "wire_sent"
	KindWireReceived     Kind = "wire_received"
	KindInvestment       Kind = "investment"
	KindInvestmentReturn Kind = "investment_return"
)

// Sign returns +1 for balance-increasing kinds, -1 for balance-decreasing
// kinds and 0 for unknown kinds.
func (k Kind) Sign() int {
	switch k {
	case KindCredit, KindWireReceived, KindInvestmentReturn:
		return 1
	case KindDebit, KindWireSent, KindInvestment:
		return -1
	default:
		return 0
	}
}

// Transaction is an immutable entry in an account's log. Amount is always a
// positive magnitude; the kind carries the direction.
type Transaction struct {
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Description  string          `json:"description,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// Account holds a balance and its full append-only transaction history. The
// account ID is the registered email or handle and is never reused.
type Account struct {
	ID           string          `json:"id"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// Clone returns a deep copy so callers can never mutate service-internal state
// through a returned account.
func (a Account) Clone() Account {
	cp := a
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return cp
}

// VerifyBalance cross-checks the stored balance against the signed sum of the
// transaction log. The balance is a derived quantity; any divergence means the
// record is corrupt.
func (a Account) VerifyBalance() error {
	sum := decimal.Zero
	for _, tx := range a.Transactions {
		switch tx.Kind.Sign() {
		case 1:
			sum = sum.Add(tx.Amount)
		case -1:
			sum = sum.Sub(tx.Amount)
		default:
			return fmt.Errorf("account %s: unknown transaction kind %q", a.ID, tx.Kind)
		}
	}
	if !sum.Equal(a.Balance) {
		return fmt.Errorf("account %s: balance %s diverges from transaction sum %s", a.ID, a.Balance, sum)
	}
	return nil
}

// apply appends a transaction and moves the balance by the signed amount,
// keeping the two in lockstep. An unknown kind is a programming error: it has
// no defined direction, so applying it would corrupt the balance invariant.
func (a *Account) apply(tx Transaction) {
	switch tx.Kind.Sign() {
	case 1:
		a.Balance = a.Balance.Add(tx.Amount)
	case -1:
		a.Balance = a.Balance.Sub(tx.Amount)
	default:
		panic(fmt.Sprintf("ledger: unknown transaction kind %q", tx.Kind))
	}
	tx.BalanceAfter = a.Balance
	a.Transactions = append(a.Transactions, tx)
}
