package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/delux-wallet/delux_ledger/internal/notification"
)

const welcomeBonusDescription = "welcome bonus"

// Service owns the accounts collection. All balance-affecting operations run
// under a single writer lock, which gives per-account serializability and
// makes the two legs of a transfer one atomic unit; reads run concurrently.
//
// Mutations are applied to copies and installed in memory only after the
// record store has accepted the new snapshot, so a failed persist leaves no
// partial state behind.
type Service struct {
	mu            sync.RWMutex
	store         Store
	logger        *slog.Logger
	notifier      notification.Notifier
	withdrawalMin decimal.Decimal
	accounts      map[string]*Account
	order         []string
}

// NewService loads the accounts collection from the store and cross-checks
// every balance against its transaction log. Drift means the snapshot is
// corrupt and is a startup failure, not something to repair silently.
func NewService(ctx context.Context, store Store, withdrawalMin decimal.Decimal, notifier notification.Notifier, logger *slog.Logger) (*Service, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	s := &Service{
		store:         store,
		logger:        logger,
		notifier:      notifier,
		withdrawalMin: withdrawalMin,
		accounts:      make(map[string]*Account, len(records)),
	}
	for _, rec := range records {
		if err := rec.VerifyBalance(); err != nil {
			return nil, err
		}
		acc := rec.Clone()
		s.accounts[acc.ID] = &acc
		s.order = append(s.order, acc.ID)
	}
	logger.Info("ledger loaded", "accounts", len(s.order))
	return s, nil
}

// WithdrawalMin exposes the configured withdrawal floor.
func (s *Service) WithdrawalMin() decimal.Decimal {
	return s.withdrawalMin
}

// OpenAccount creates an account credited with the opening bonus. The ID is
// matched case-sensitively and must be unused.
func (s *Service) OpenAccount(ctx context.Context, id string, openingBonus decimal.Decimal) (Account, error) {
	if id == "" {
		return Account{}, fmt.Errorf("account id is required")
	}
	if openingBonus.IsNegative() {
		return Account{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; exists {
		return Account{}, ErrDuplicateAccount
	}

	acc := &Account{ID: id, Balance: decimal.Zero}
	if openingBonus.IsPositive() {
		acc.apply(Transaction{
			Kind:        KindCredit,
			Amount:      openingBonus,
			Description: welcomeBonusDescription,
			Timestamp:   time.Now().UTC(),
		})
	}

	if err := s.commit(ctx, map[string]*Account{id: acc}, id); err != nil {
		return Account{}, err
	}
	return acc.Clone(), nil
}

// Get returns a snapshot of the account.
func (s *Service) Get(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc.Clone(), nil
}

// Transactions returns a copy of the account's transaction log in
// chronological order.
func (s *Service) Transactions(_ context.Context, id string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Transaction, len(acc.Transactions))
	copy(out, acc.Transactions)
	return out, nil
}

// Credit increases the balance and appends a transaction of the given kind.
// The kind must be balance-increasing.
func (s *Service) Credit(ctx context.Context, id string, amount decimal.Decimal, kind Kind, counterparty string) (decimal.Decimal, error) {
	if kind.Sign() != 1 {
		return decimal.Decimal{}, fmt.Errorf("kind %q is not a credit kind", kind)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return decimal.Decimal{}, ErrNotFound
	}

	next := acc.Clone()
	next.apply(Transaction{Kind: kind, Amount: amount, Counterparty: counterparty, Timestamp: time.Now().UTC()})

	if err := s.commit(ctx, map[string]*Account{id: &next}); err != nil {
		return decimal.Decimal{}, err
	}
	return next.Balance, nil
}

// Debit decreases the balance and appends a transaction of the given kind.
// The kind must be balance-decreasing and the balance must cover the amount.
func (s *Service) Debit(ctx context.Context, id string, amount decimal.Decimal, kind Kind, counterparty string) (decimal.Decimal, error) {
	if kind.Sign() != -1 {
		return decimal.Decimal{}, fmt.Errorf("kind %q is not a debit kind", kind)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return decimal.Decimal{}, ErrNotFound
	}
	if acc.Balance.LessThan(amount) {
		return decimal.Decimal{}, ErrInsufficientFunds
	}

	next := acc.Clone()
	next.apply(Transaction{Kind: kind, Amount: amount, Counterparty: counterparty, Timestamp: time.Now().UTC()})

	if err := s.commit(ctx, map[string]*Account{id: &next}); err != nil {
		return decimal.Decimal{}, err
	}
	return next.Balance, nil
}

// Withdraw applies the withdrawal floor policy before debiting. The floor is
// configuration, not a constant.
func (s *Service) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if amount.LessThan(s.withdrawalMin) {
		return decimal.Decimal{}, ErrBelowMinimum
	}
	return s.Debit(ctx, id, amount, KindDebit, "")
}

// TransferResult describes the outcome of a wire transfer.
type TransferResult struct {
	SenderBalance    decimal.Decimal
	RecipientBalance decimal.Decimal
	Timestamp        time.Time
}

// Transfer moves amount from sender to recipient as a single atomic unit: one
// debit, one credit, and a wire_sent/wire_received pair sharing one timestamp.
// Either both legs persist or neither does. A self-transfer is legal and nets
// to zero while still recording both legs.
func (s *Service) Transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[senderID]
	if !ok {
		return TransferResult{}, ErrNotFound
	}
	recipient, ok := s.accounts[recipientID]
	if !ok {
		return TransferResult{}, ErrNotFound
	}
	if sender.Balance.LessThan(amount) {
		return TransferResult{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	updated := make(map[string]*Account, 2)

	nextSender := sender.Clone()
	updated[senderID] = &nextSender
	nextRecipient := &nextSender
	if senderID != recipientID {
		cp := recipient.Clone()
		nextRecipient = &cp
		updated[recipientID] = nextRecipient
	}

	updated[senderID].apply(Transaction{Kind: KindWireSent, Amount: amount, Counterparty: recipientID, Timestamp: now})
	nextRecipient.apply(Transaction{Kind: KindWireReceived, Amount: amount, Counterparty: senderID, Timestamp: now})

	if err := s.commit(ctx, updated); err != nil {
		return TransferResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWireReceived,
			Destination: recipientID,
			Body:        fmt.Sprintf("You received %s from %s", amount, senderID),
		})
	}

	return TransferResult{
		SenderBalance:    updated[senderID].Balance,
		RecipientBalance: nextRecipient.Balance,
		Timestamp:        now,
	}, nil
}

// commit persists the full collection with the updated accounts substituted
// in, then installs them in memory. newIDs are appended to storage order.
// Caller holds the write lock.
func (s *Service) commit(ctx context.Context, updated map[string]*Account, newIDs ...string) error {
	snapshot := make([]Account, 0, len(s.order)+len(newIDs))
	for _, id := range s.order {
		if acc, ok := updated[id]; ok {
			snapshot = append(snapshot, *acc)
		} else {
			snapshot = append(snapshot, *s.accounts[id])
		}
	}
	for _, id := range newIDs {
		snapshot = append(snapshot, *updated[id])
	}

	if err := s.store.SaveAll(ctx, snapshot); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}

	for id, acc := range updated {
		s.accounts[id] = acc
	}
	s.order = append(s.order, newIDs...)
	return nil
}
