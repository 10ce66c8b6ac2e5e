package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ulsoft/platform-auth/internal/model"
)

// UserRepo persists end-user accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,full_name,phone_number,passcode,email,image,is_active,created_at,updated_at"

// Create inserts a user row.  A duplicate phone number or email maps to
// ErrConflict; the unique indexes make concurrent duplicate signups
// serialize at the database.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,full_name,phone_number,passcode,email,image,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.FullName, u.PhoneNumber, u.Passcode,
		nullable(u.Email), nullable(u.Image),
		u.IsActive, u.CreatedAt, u.UpdatedAt)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a user by id regardless of active state.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByPhone fetches a user by its unique phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	phone = strings.TrimSpace(phone)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone_number=? LIMIT 1", phone))
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a user row.  The caller merges
// partial input into the current record and supplies updated_at.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?,phone_number=?,passcode=?,email=?,image=?,is_active=?,updated_at=? WHERE id=?",
		u.FullName, u.PhoneNumber, u.Passcode,
		nullable(u.Email), nullable(u.Image),
		u.IsActive, u.UpdatedAt, u.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	return affected(res)
}

// Deactivate flips is_active off without removing the row.
func (r *UserRepo) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=0, updated_at=? WHERE id=?", updatedAt, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes the row entirely.  Avatar cleanup is sequenced by the
// service layer after this succeeds.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u            model.User
		email, image sql.NullString
	)
	err := s.Scan(&u.ID, &u.FullName, &u.PhoneNumber, &u.Passcode,
		&email, &image, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Email = email.String
	u.Image = image.String
	return u, nil
}
