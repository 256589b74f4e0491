package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps drawings in the drawings table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, name string, data []byte) (Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Name: name, Data: data}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO drawings (name, data, saved_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at
		RETURNING saved_at`,
		name, data,
	).Scan(&e.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("save drawing: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) (Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Name: name}
	err = s.pool.QueryRow(ctx,
		`SELECT data, saved_at FROM drawings WHERE name = $1`, name,
	).Scan(&e.Data, &e.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("load drawing: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, saved_at FROM drawings ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var sm Summary
		err := row.Scan(&sm.Name, &sm.Timestamp)
		return sm, err
	})
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
