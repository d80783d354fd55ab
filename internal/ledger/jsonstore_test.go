package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestJSONStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	// First boot: no file yet.
	accounts, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected empty collection, got %d", len(accounts))
	}

	in := []Account{
		{
			ID:      "alice@example.com",
			Balance: decimal.NewFromInt(1500),
			Transactions: []Transaction{
				{Kind: KindCredit, Amount: decimal.NewFromInt(1800), Timestamp: time.Now().UTC()},
				{Kind: KindDebit, Amount: decimal.NewFromInt(300), Timestamp: time.Now().UTC()},
			},
		},
		{ID: "bob@example.com", Balance: decimal.Zero},
	}
	if err := store.SaveAll(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(out))
	}
	if out[0].ID != "alice@example.com" || out[1].ID != "bob@example.com" {
		t.Fatalf("storage order not preserved: %s, %s", out[0].ID, out[1].ID)
	}
	if !out[0].Balance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("balance mismatch: %s", out[0].Balance)
	}
	if len(out[0].Transactions) != 2 || out[0].Transactions[1].Kind != KindDebit {
		t.Fatalf("transactions not restored: %+v", out[0].Transactions)
	}
	if err := out[0].VerifyBalance(); err != nil {
		t.Fatalf("restored account fails invariant: %v", err)
	}
}

func TestJSONStoreLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.SaveAll(context.Background(), []Account{{ID: "a@example.com", Balance: decimal.Zero}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "accounts.json")); err != nil {
		t.Fatalf("expected accounts.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "accounts.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
