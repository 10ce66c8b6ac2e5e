package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ulsoft/platform-auth/internal/model"
)

// AdminRepo persists administrative accounts in the 'admins' table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

const adminColumns = "id,username,hashed_password,role,phone_number,email,is_active,created_at,updated_at"

// Create inserts an admin row.  Timestamps and the id are assigned by the
// caller.  A duplicate username, phone number or email maps to ErrConflict.
func (r *AdminRepo) Create(ctx context.Context, a model.Admin) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (id,username,hashed_password,role,phone_number,email,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		a.ID, a.Username, a.HashedPassword, a.Role,
		nullable(a.PhoneNumber), nullable(a.Email),
		a.IsActive, a.CreatedAt, a.UpdatedAt)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches an admin by id regardless of active state, so deactivated
// accounts stay auditable.
func (r *AdminRepo) GetByID(ctx context.Context, id string) (model.Admin, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches an admin by its unique username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	username = strings.TrimSpace(username)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE username=? LIMIT 1", username))
}

// GetByPhone fetches an admin by phone number.
func (r *AdminRepo) GetByPhone(ctx context.Context, phone string) (model.Admin, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE phone_number=? LIMIT 1", phone))
}

// GetByEmail fetches an admin by email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE email=? LIMIT 1", email))
}

// List returns all admins, newest first.
func (r *AdminRepo) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+adminColumns+" FROM admins ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of an admin row.  The caller merges
// partial input into the current record and supplies the new updated_at;
// the store never defaults it.
func (r *AdminRepo) Update(ctx context.Context, a model.Admin) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET username=?,hashed_password=?,role=?,phone_number=?,email=?,is_active=?,updated_at=? WHERE id=?",
		a.Username, a.HashedPassword, a.Role,
		nullable(a.PhoneNumber), nullable(a.Email),
		a.IsActive, a.UpdatedAt, a.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	return affected(res)
}

// Deactivate flips is_active off without removing the row.
func (r *AdminRepo) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET is_active=0, updated_at=? WHERE id=?", updatedAt, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes the row entirely.  Reserved for superadmin-initiated
// deletion; soft removal goes through Deactivate.
func (r *AdminRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM admins WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *AdminRepo) scanOne(row *sql.Row) (model.Admin, error) {
	a, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, ErrNotFound
	}
	return a, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanAdmin(s rowScanner) (model.Admin, error) {
	var (
		a            model.Admin
		phone, email sql.NullString
	)
	err := s.Scan(&a.ID, &a.Username, &a.HashedPassword, &a.Role,
		&phone, &email, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Admin{}, err
	}
	a.PhoneNumber = phone.String
	a.Email = email.String
	return a, nil
}

// nullable maps an empty string to SQL NULL so unique indexes on optional
// columns ignore absent values.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// affected converts a zero-row update/delete into ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
