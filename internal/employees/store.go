package employees

import (
	"context"
	"database/sql"
	"errors"

	"timeflow-backend/internal/enrollment"
	"timeflow-backend/internal/platform/db"
)

type EmployeeStore interface {
	GetByECNumber(ctx context.Context, ecNumber string) (*Employee, error)
	Create(ctx context.Context, e *Employee) error
	DepartmentExists(ctx context.Context, id int64) (bool, error)
}

// SQLStore backs both the employee directory and the descriptor store
// (face_descriptor column).
type SQLStore struct{ db *sql.DB }

var (
	_ EmployeeStore              = (*SQLStore)(nil)
	_ enrollment.DescriptorStore = (*SQLStore)(nil)
)

func NewStore(conn *sql.DB) *SQLStore { return &SQLStore{db: conn} }

// GetByECNumber returns nil, nil when absent. ec_number is compared
// byte-wise (utf8mb4_bin column), so lookups are case-sensitive.
func (s *SQLStore) GetByECNumber(ctx context.Context, ecNumber string) (*Employee, error) {
	const q = `
SELECT e.ec_number, e.name, e.password_hash, e.department_id, COALESCE(d.name, ''),
       e.role, e.face_descriptor IS NOT NULL, e.created_at
FROM employees e
LEFT JOIN departments d ON d.id = e.department_id
WHERE e.ec_number = ?
LIMIT 1
`
	var e Employee
	err := s.db.QueryRowContext(ctx, q, ecNumber).Scan(
		&e.ECNumber, &e.Name, &e.PasswordHash, &e.DepartmentID, &e.DepartmentName,
		&e.Role, &e.Enrolled, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLStore) Create(ctx context.Context, e *Employee) error {
	const q = `
INSERT INTO employees (ec_number, name, password_hash, department_id, role)
VALUES (?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, q, e.ECNumber, e.Name, e.PasswordHash, e.DepartmentID, e.Role)
	if db.IsDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

// DepartmentExists is false for disabled departments.
func (s *SQLStore) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM departments WHERE id = ? AND is_disabled = 0 LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLStore) GetDescriptor(ctx context.Context, ecNumber string) ([]byte, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT face_descriptor FROM employees WHERE ec_number = ? LIMIT 1`, ecNumber,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, raw != nil, nil
}

// PutDescriptor overwrites the stored descriptor. MySQL reports zero
// affected rows when the value is unchanged, so existence is checked in
// the same transaction.
func (s *SQLStore) PutDescriptor(ctx context.Context, ecNumber string, encoded []byte) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM employees WHERE ec_number = ? FOR UPDATE`, ecNumber,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return enrollment.ErrEmployeeNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE employees SET face_descriptor = ?, face_enrolled_at = UTC_TIMESTAMP() WHERE ec_number = ?`,
			encoded, ecNumber,
		)
		return err
	})
}
