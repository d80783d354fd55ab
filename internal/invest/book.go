package invest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/delux-wallet/delux_ledger/internal/ledger"
	"github.com/delux-wallet/delux_ledger/internal/notification"
)

// Book owns the investments collection. Opening an investment debits the
// principal through the ledger; the maturity sweep credits the return through
// the ledger and flips the status, exactly once per investment.
type Book struct {
	mu          sync.RWMutex
	sweepMu     sync.Mutex
	store       Store
	ledger      *ledger.Service
	notifier    notification.Notifier
	logger      *slog.Logger
	minimum     decimal.Decimal
	multiplier  decimal.Decimal
	investments []Investment

	// dirty is set when completed statuses exist only in memory because a
	// batch persist failed. The next sweep retries the persist even when
	// nothing new is due; until it succeeds the durable snapshot still shows
	// the swept investments as running, and a restart would credit them again.
	dirty bool
}

// NewBook loads the investments collection from the store.
func NewBook(ctx context.Context, store Store, ledgerSvc *ledger.Service, minimum, multiplier decimal.Decimal, notifier notification.Notifier, logger *slog.Logger) (*Book, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load investments: %w", err)
	}
	return &Book{
		store:       store,
		ledger:      ledgerSvc,
		notifier:    notifier,
		logger:      logger,
		minimum:     minimum,
		multiplier:  multiplier,
		investments: records,
	}, nil
}

// Minimum exposes the configured investment floor.
func (b *Book) Minimum() decimal.Decimal {
	return b.minimum
}

// Open debits the principal from the owner and records a running investment
// maturing after durationDays. The return amount is the principal times the
// configured multiplier, fixed at open time.
func (b *Book) Open(ctx context.Context, ownerID string, principal decimal.Decimal, durationDays int) (Investment, error) {
	if !principal.IsPositive() {
		return Investment{}, ledger.ErrInvalidAmount
	}
	if principal.LessThan(b.minimum) {
		return Investment{}, ledger.ErrBelowMinimum
	}
	if durationDays < 1 {
		return Investment{}, ErrInvalidDuration
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The ledger enforces existence and sufficient balance.
	if _, err := b.ledger.Debit(ctx, ownerID, principal, ledger.KindInvestment, ""); err != nil {
		return Investment{}, err
	}

	now := time.Now().UTC()
	inv := Investment{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Principal:    principal,
		ReturnAmount: principal.Mul(b.multiplier),
		DurationDays: durationDays,
		StartTime:    now,
		MaturityTime: now.AddDate(0, 0, durationDays),
		Status:       StatusRunning,
	}

	next := append(b.snapshot(), inv)
	if err := b.store.SaveAll(ctx, next); err != nil {
		// The principal is already debited. Reverse it so money is conserved
		// even though the investment was never recorded.
		if _, crErr := b.ledger.Credit(ctx, ownerID, principal, ledger.KindCredit, ""); crErr != nil {
			b.logger.Error("reverse investment debit", "owner", ownerID, "amount", principal, "error", crErr)
		}
		return Investment{}, fmt.Errorf("save investments: %w", err)
	}

	b.investments = next
	// The snapshot carried any not-yet-persisted completions along with it.
	b.dirty = false
	return inv, nil
}

// ListFor returns the owner's investments in creation order. The owner must
// exist.
func (b *Book) ListFor(ctx context.Context, ownerID string) ([]Investment, error) {
	if _, err := b.ledger.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Investment
	for _, inv := range b.investments {
		if inv.OwnerID == ownerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// SweepMatured credits the return for every running investment whose maturity
// time is at or before now, then marks it completed. The credit lands before
// the status flips, and completed investments are skipped on every later
// invocation, so re-running the sweep never credits twice. An investment whose
// owner no longer exists is logged and left running; it does not abort the
// rest of the batch. A failed batch persist is retried on the next invocation
// until the durable snapshot catches up with the credits already made. Sweeps
// are mutually exclusive. Returns the number of investments matured.
func (b *Book) SweepMatured(ctx context.Context, now time.Time) (int, error) {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()

	b.mu.RLock()
	var due []Investment
	for _, inv := range b.investments {
		if inv.Status == StatusRunning && !inv.MaturityTime.After(now) {
			due = append(due, inv)
		}
	}
	dirty := b.dirty
	b.mu.RUnlock()

	if len(due) == 0 && !dirty {
		return 0, nil
	}

	matured := make(map[string]bool, len(due))
	for _, inv := range due {
		if _, err := b.ledger.Credit(ctx, inv.OwnerID, inv.ReturnAmount, ledger.KindInvestmentReturn, ""); err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				b.logger.Warn("orphaned investment: owner missing, left running",
					"investment", inv.ID, "owner", inv.OwnerID)
			} else {
				b.logger.Error("credit investment return", "investment", inv.ID, "owner", inv.OwnerID, "error", err)
			}
			continue
		}
		matured[inv.ID] = true

		if b.notifier != nil {
			_ = b.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindInvestmentMatured,
				Destination: inv.OwnerID,
				Body:        fmt.Sprintf("Your investment of %s matured: %s credited", inv.Principal, inv.ReturnAmount),
			})
		}
	}

	if len(matured) == 0 && !dirty {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.investments {
		if matured[b.investments[i].ID] {
			b.investments[i].Status = StatusCompleted
		}
	}
	if err := b.store.SaveAll(ctx, b.snapshot()); err != nil {
		// Statuses are flipped in memory, so re-crediting is impossible in
		// this process, but the durable snapshot is now behind. Mark the
		// collection dirty so the next sweep retries the persist.
		b.dirty = true
		return len(matured), fmt.Errorf("save investments: %w", err)
	}
	b.dirty = false
	return len(matured), nil
}

// snapshot copies the collection for persistence. Caller holds at least a read
// lock.
func (b *Book) snapshot() []Investment {
	out := make([]Investment, len(b.investments))
	copy(out, b.investments)
	return out
}
