package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ulsoft/platform-auth/internal/model"
)

// PlatformRepo persists platform records in the 'platforms' table.
type PlatformRepo struct{ DB *sql.DB }

func NewPlatformRepo(db *sql.DB) *PlatformRepo { return &PlatformRepo{DB: db} }

const platformColumns = "id,name,route,icon,is_active,created_at,updated_at"

// Create inserts a platform row.  A duplicate route maps to ErrConflict.
func (r *PlatformRepo) Create(ctx context.Context, p model.Platform) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO platforms (id,name,route,icon,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?)",
		p.ID, p.Name, p.Route, p.Icon, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a platform by id.
func (r *PlatformRepo) GetByID(ctx context.Context, id string) (model.Platform, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+platformColumns+" FROM platforms WHERE id=? LIMIT 1", id))
}

// GetByRoute fetches a platform by its unique route.
func (r *PlatformRepo) GetByRoute(ctx context.Context, route string) (model.Platform, error) {
	route = strings.TrimSpace(route)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+platformColumns+" FROM platforms WHERE route=? LIMIT 1", route))
}

// List returns all platforms, newest first.
func (r *PlatformRepo) List(ctx context.Context) ([]model.Platform, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+platformColumns+" FROM platforms ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Platform
	for rows.Next() {
		var p model.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Route, &p.Icon, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a platform row.
func (r *PlatformRepo) Update(ctx context.Context, p model.Platform) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE platforms SET name=?,route=?,icon=?,is_active=?,updated_at=? WHERE id=?",
		p.Name, p.Route, p.Icon, p.IsActive, p.UpdatedAt, p.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	return affected(res)
}

// Deactivate flips is_active off without removing the row.
func (r *PlatformRepo) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE platforms SET is_active=0, updated_at=? WHERE id=?", updatedAt, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes the row entirely.  Icon cleanup is sequenced by the
// service layer after this succeeds.
func (r *PlatformRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM platforms WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *PlatformRepo) scanOne(row *sql.Row) (model.Platform, error) {
	var p model.Platform
	err := row.Scan(&p.ID, &p.Name, &p.Route, &p.Icon, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Platform{}, ErrNotFound
	}
	return p, err
}
