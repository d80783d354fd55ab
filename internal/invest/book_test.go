package invest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/delux-wallet/delux_ledger/internal/ledger"
	"github.com/delux-wallet/delux_ledger/internal/logging"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

type fixture struct {
	ledger *ledger.Service
	book   *Book
	store  Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	ledgerSvc, err := ledger.NewService(ctx, ledger.NewMemoryStore(), dec(100), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	store := NewMemoryStore()
	book, err := NewBook(ctx, store, ledgerSvc, dec(100), dec(3), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new book: %v", err)
	}
	return &fixture{ledger: ledgerSvc, book: book, store: store}
}

func (f *fixture) openAccount(t *testing.T, id string, balance int64) {
	t.Helper()
	if _, err := f.ledger.OpenAccount(context.Background(), id, dec(balance)); err != nil {
		t.Fatalf("open account %s: %v", id, err)
	}
}

func TestOpenInvestment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openAccount(t, "alice@example.com", 1800)

	inv, err := f.book.Open(ctx, "alice@example.com", dec(100), 5)
	if err != nil {
		t.Fatalf("open investment: %v", err)
	}

	if !inv.ReturnAmount.Equal(dec(300)) {
		t.Fatalf("expected return 300, got %s", inv.ReturnAmount)
	}
	if inv.Status != StatusRunning {
		t.Fatalf("expected running, got %s", inv.Status)
	}
	if want := inv.StartTime.AddDate(0, 0, 5); !inv.MaturityTime.Equal(want) {
		t.Fatalf("expected maturity %s, got %s", want, inv.MaturityTime)
	}

	acc, _ := f.ledger.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(1700)) {
		t.Fatalf("expected principal debited, balance %s", acc.Balance)
	}
	last := acc.Transactions[len(acc.Transactions)-1]
	if last.Kind != ledger.KindInvestment || !last.Amount.Equal(dec(100)) {
		t.Fatalf("expected investment debit transaction, got %+v", last)
	}
}

func TestOpenInvestmentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openAccount(t, "alice@example.com", 150)

	if _, err := f.book.Open(ctx, "alice@example.com", dec(99), 5); err != ledger.ErrBelowMinimum {
		t.Fatalf("expected below minimum, got %v", err)
	}
	if _, err := f.book.Open(ctx, "alice@example.com", dec(-10), 5); err != ledger.ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := f.book.Open(ctx, "alice@example.com", dec(100), 0); err != ErrInvalidDuration {
		t.Fatalf("expected invalid duration, got %v", err)
	}
	if _, err := f.book.Open(ctx, "alice@example.com", dec(200), 5); err != ledger.ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := f.book.Open(ctx, "missing@example.com", dec(100), 5); err != ledger.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// No rejection recorded an investment or moved money.
	acc, _ := f.ledger.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(150)) {
		t.Fatalf("balance altered by rejected opens: %s", acc.Balance)
	}
	if investments, _ := f.book.ListFor(ctx, "alice@example.com"); len(investments) != 0 {
		t.Fatalf("expected no investments, got %d", len(investments))
	}
}

func TestListForUnknownOwner(t *testing.T) {
	f := newFixture(t)
	if _, err := f.book.ListFor(context.Background(), "missing@example.com"); err != ledger.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSweepMaturedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openAccount(t, "alice@example.com", 1800)

	inv, err := f.book.Open(ctx, "alice@example.com", dec(100), 1)
	if err != nil {
		t.Fatalf("open investment: %v", err)
	}

	// Before maturity: nothing happens.
	matured, err := f.book.SweepMatured(ctx, inv.MaturityTime.Add(-time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if matured != 0 {
		t.Fatalf("premature sweep matured %d", matured)
	}

	// At maturity: exactly one credit.
	matured, err = f.book.SweepMatured(ctx, inv.MaturityTime.Add(time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if matured != 1 {
		t.Fatalf("expected 1 matured, got %d", matured)
	}

	acc, _ := f.ledger.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(2000)) {
		t.Fatalf("expected balance 2000 after payout, got %s", acc.Balance)
	}
	last := acc.Transactions[len(acc.Transactions)-1]
	if last.Kind != ledger.KindInvestmentReturn || !last.Amount.Equal(dec(300)) {
		t.Fatalf("expected investment return of 300, got %+v", last)
	}

	// Re-invocation: no additional credits.
	matured, err = f.book.SweepMatured(ctx, inv.MaturityTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("repeat sweep: %v", err)
	}
	if matured != 0 {
		t.Fatalf("repeat sweep matured %d", matured)
	}
	acc, _ = f.ledger.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(2000)) {
		t.Fatalf("repeat sweep changed balance to %s", acc.Balance)
	}

	investments, _ := f.book.ListFor(ctx, "alice@example.com")
	if len(investments) != 1 || investments[0].Status != StatusCompleted {
		t.Fatalf("expected one completed investment, got %+v", investments)
	}
}

func TestSweepLeavesOrphanRunning(t *testing.T) {
	ctx := context.Background()
	ledgerSvc, err := ledger.NewService(ctx, ledger.NewMemoryStore(), dec(100), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if _, err := ledgerSvc.OpenAccount(ctx, "alice@example.com", dec(100)); err != nil {
		t.Fatalf("open account: %v", err)
	}

	past := time.Now().UTC().Add(-48 * time.Hour)
	store := NewMemoryStore()
	seed := []Investment{
		{
			ID: uuid.NewString(), OwnerID: "ghost@example.com",
			Principal: dec(100), ReturnAmount: dec(300), DurationDays: 1,
			StartTime: past, MaturityTime: past.Add(24 * time.Hour), Status: StatusRunning,
		},
		{
			ID: uuid.NewString(), OwnerID: "alice@example.com",
			Principal: dec(100), ReturnAmount: dec(300), DurationDays: 1,
			StartTime: past, MaturityTime: past.Add(24 * time.Hour), Status: StatusRunning,
		},
	}
	if err := store.SaveAll(ctx, seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	book, err := NewBook(ctx, store, ledgerSvc, dec(100), dec(3), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new book: %v", err)
	}

	// The orphan does not abort the batch; the healthy owner is credited.
	matured, err := book.SweepMatured(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if matured != 1 {
		t.Fatalf("expected 1 matured, got %d", matured)
	}

	records, _ := store.LoadAll(ctx)
	for _, inv := range records {
		switch inv.OwnerID {
		case "ghost@example.com":
			if inv.Status != StatusRunning {
				t.Fatalf("orphaned investment completed: %+v", inv)
			}
		case "alice@example.com":
			if inv.Status != StatusCompleted {
				t.Fatalf("healthy investment not completed: %+v", inv)
			}
		}
	}

	acc, _ := ledgerSvc.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(400)) {
		t.Fatalf("expected balance 400, got %s", acc.Balance)
	}
}

// flakyStore fails the next n SaveAll calls, then delegates.
type flakyStore struct {
	Store
	failures int
}

func (s *flakyStore) SaveAll(ctx context.Context, investments []Investment) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk full")
	}
	return s.Store.SaveAll(ctx, investments)
}

func TestSweepRetriesFailedPersist(t *testing.T) {
	ctx := context.Background()
	ledgerSvc, err := ledger.NewService(ctx, ledger.NewMemoryStore(), dec(100), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if _, err := ledgerSvc.OpenAccount(ctx, "alice@example.com", dec(100)); err != nil {
		t.Fatalf("open account: %v", err)
	}

	past := time.Now().UTC().Add(-48 * time.Hour)
	inner := NewMemoryStore()
	seed := []Investment{{
		ID: uuid.NewString(), OwnerID: "alice@example.com",
		Principal: dec(100), ReturnAmount: dec(300), DurationDays: 1,
		StartTime: past, MaturityTime: past.Add(24 * time.Hour), Status: StatusRunning,
	}}
	if err := inner.SaveAll(ctx, seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	store := &flakyStore{Store: inner, failures: 1}

	book, err := NewBook(ctx, store, ledgerSvc, dec(100), dec(3), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new book: %v", err)
	}

	// First sweep credits the return but fails to persist the flip.
	matured, err := book.SweepMatured(ctx, time.Now().UTC())
	if err == nil {
		t.Fatal("expected persist failure")
	}
	if matured != 1 {
		t.Fatalf("expected 1 matured, got %d", matured)
	}
	records, _ := inner.LoadAll(ctx)
	if records[0].Status != StatusRunning {
		t.Fatalf("durable status should still be running, got %s", records[0].Status)
	}

	// The next sweep has nothing new due but must retry the persist.
	matured, err = book.SweepMatured(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("retry sweep: %v", err)
	}
	if matured != 0 {
		t.Fatalf("retry sweep credited again, matured=%d", matured)
	}
	records, _ = inner.LoadAll(ctx)
	if records[0].Status != StatusCompleted {
		t.Fatalf("retry did not persist completion, got %s", records[0].Status)
	}

	// A fresh process loading the durable snapshot must not credit again.
	reloaded, err := NewBook(ctx, inner, ledgerSvc, dec(100), dec(3), nil, logging.Discard())
	if err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if matured, err := reloaded.SweepMatured(ctx, time.Now().UTC()); err != nil || matured != 0 {
		t.Fatalf("reloaded sweep should be a no-op, matured=%d err=%v", matured, err)
	}
	acc, _ := ledgerSvc.Get(ctx, "alice@example.com")
	if !acc.Balance.Equal(dec(400)) {
		t.Fatalf("expected balance 400 after exactly one payout, got %s", acc.Balance)
	}
}

// Full walk-through of the transfer-invest-mature scenario.
func TestTransferInvestMatureScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openAccount(t, "a@example.com", 1800)
	f.openAccount(t, "b@example.com", 1800)

	res, err := f.ledger.Transfer(ctx, "a@example.com", "b@example.com", dec(500))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !res.SenderBalance.Equal(dec(1300)) || !res.RecipientBalance.Equal(dec(2300)) {
		t.Fatalf("unexpected balances after transfer: %s / %s", res.SenderBalance, res.RecipientBalance)
	}

	inv, err := f.book.Open(ctx, "a@example.com", dec(100), 1)
	if err != nil {
		t.Fatalf("open investment: %v", err)
	}
	if !inv.ReturnAmount.Equal(dec(300)) || inv.Status != StatusRunning {
		t.Fatalf("unexpected investment: %+v", inv)
	}

	a, _ := f.ledger.Get(ctx, "a@example.com")
	if !a.Balance.Equal(dec(1200)) {
		t.Fatalf("expected 1200 after invest, got %s", a.Balance)
	}

	if matured, _ := f.book.SweepMatured(ctx, inv.MaturityTime.Add(-time.Second)); matured != 0 {
		t.Fatalf("matured before maturity time")
	}

	matured, err := f.book.SweepMatured(ctx, inv.MaturityTime.Add(time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if matured != 1 {
		t.Fatalf("expected 1 matured, got %d", matured)
	}

	a, _ = f.ledger.Get(ctx, "a@example.com")
	if !a.Balance.Equal(dec(1500)) {
		t.Fatalf("expected 1500 after payout, got %s", a.Balance)
	}
	if err := a.VerifyBalance(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}
