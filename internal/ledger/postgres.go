package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps the accounts collection in PostgreSQL, one row per
// account with the transaction log embedded as JSONB. It implements the same
// whole-collection overwrite contract as the JSON file store.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed accounts store and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	const schema = `CREATE TABLE IF NOT EXISTS accounts (
        pos BIGINT NOT NULL,
        id TEXT PRIMARY KEY,
        balance NUMERIC(20,2) NOT NULL,
        transactions JSONB NOT NULL
    )`
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure accounts table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// LoadAll reads every account in storage order.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT id, balance::text, transactions FROM accounts ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var (
			a       Account
			balance string
			txJSON  []byte
		)
		if err := rows.Scan(&a.ID, &balance, &txJSON); err != nil {
			return nil, err
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s: parse balance: %w", a.ID, err)
		}
		if err := json.Unmarshal(txJSON, &a.Transactions); err != nil {
			return nil, fmt.Errorf("account %s: decode transactions: %w", a.ID, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveAll overwrites the collection inside a single database transaction.
func (s *PostgresStore) SaveAll(ctx context.Context, accounts []Account) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE accounts`); err != nil {
		return err
	}
	for i, a := range accounts {
		txJSON, err := json.Marshal(a.Transactions)
		if err != nil {
			return fmt.Errorf("account %s: encode transactions: %w", a.ID, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO accounts (pos, id, balance, transactions) VALUES ($1, $2, $3, $4)`,
			i, a.ID, a.Balance.StringFixed(2), txJSON); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
