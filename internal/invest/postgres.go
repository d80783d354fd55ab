package invest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps the investments collection in PostgreSQL, one row per
// investment. It implements the same whole-collection overwrite contract as
// the JSON file store.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed investments store and ensures
// the schema exists.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	const schema = `CREATE TABLE IF NOT EXISTS investments (
        pos BIGINT NOT NULL,
        id TEXT PRIMARY KEY,
        owner_id TEXT NOT NULL,
        principal NUMERIC(20,2) NOT NULL,
        return_amount NUMERIC(20,2) NOT NULL,
        duration_days INT NOT NULL,
        start_time TIMESTAMPTZ NOT NULL,
        maturity_time TIMESTAMPTZ NOT NULL,
        status TEXT NOT NULL
    )`
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure investments table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// LoadAll reads every investment in creation order.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]Investment, error) {
	rows, err := s.db.Query(ctx, `SELECT id, owner_id, principal::text, return_amount::text,
        duration_days, start_time, maturity_time, status FROM investments ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var investments []Investment
	for rows.Next() {
		var (
			inv                  Investment
			principal, returnAmt string
			status               string
		)
		if err := rows.Scan(&inv.ID, &inv.OwnerID, &principal, &returnAmt,
			&inv.DurationDays, &inv.StartTime, &inv.MaturityTime, &status); err != nil {
			return nil, err
		}
		if inv.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("investment %s: parse principal: %w", inv.ID, err)
		}
		if inv.ReturnAmount, err = decimal.NewFromString(returnAmt); err != nil {
			return nil, fmt.Errorf("investment %s: parse return amount: %w", inv.ID, err)
		}
		inv.Status = Status(status)
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

// SaveAll overwrites the collection inside a single database transaction.
func (s *PostgresStore) SaveAll(ctx context.Context, investments []Investment) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE investments`); err != nil {
		return err
	}
	for i, inv := range investments {
		if _, err := tx.Exec(ctx, `INSERT INTO investments
            (pos, id, owner_id, principal, return_amount, duration_days, start_time, maturity_time, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			i, inv.ID, inv.OwnerID, inv.Principal.StringFixed(2), inv.ReturnAmount.StringFixed(2),
			inv.DurationDays, inv.StartTime, inv.MaturityTime, string(inv.Status)); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
