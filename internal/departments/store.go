package departments

import (
	"context"
	"database/sql"
	"errors"

	"timeflow-backend/internal/platform/db"
)

type Store interface {
	List(ctx context.Context, includeDisabled bool) ([]Department, error)
	Get(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, name string) (*Department, error)
	Update(ctx context.Context, id int64, name string, disabled bool) error
}

type SQLStore struct{ db *sql.DB }

func NewStore(conn *sql.DB) *SQLStore { return &SQLStore{db: conn} }

// GET /departments?all=1
func (s *SQLStore) List(ctx context.Context, includeDisabled bool) ([]Department, error) {
	q := `SELECT id, name, is_disabled FROM departments`
	if !includeDisabled {
		q += ` WHERE is_disabled = 0`
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Department, 0, 16)
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.IsDisabled); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// Get returns sql.ErrNoRows when absent.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Department, error) {
	var d Department
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_disabled FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.IsDisabled)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLStore) Create(ctx context.Context, name string) (*Department, error) {
	r, err := s.db.ExecContext(ctx, `INSERT INTO departments (name, is_disabled) VALUES (?, 0)`, name)
	if err != nil {
		return nil, err
	}
	id, err := r.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Department{ID: id, Name: name}, nil
}

// Update rewrites the row. Existence is checked under lock because MySQL
// reports zero affected rows for an unchanged row.
func (s *SQLStore) Update(ctx context.Context, id int64, name string, disabled bool) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM departments WHERE id = ? FOR UPDATE`, id).Scan(&one)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE departments SET name = ?, is_disabled = ? WHERE id = ?`, name, disabled, id)
		return err
	})
}

func notFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
