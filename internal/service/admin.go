package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/repository"
	"github.com/ulsoft/platform-auth/internal/token"
	"github.com/ulsoft/platform-auth/internal/utils"
)

// AdminService implements the classic username/password flow for the admin
// principal kind.
type AdminService struct {
	admins  AdminStore
	issuer  *token.Issuer
	cost    int
	session sessionFlow
}

func NewAdminService(admins AdminStore, issuer *token.Issuer, bcryptCost int) *AdminService {
	s := &AdminService{admins: admins, issuer: issuer, cost: bcryptCost}
	s.session = sessionFlow{issuer: issuer, resolve: s.resolve}
	return s
}

// CreateAdminInput carries the fields for creating either admin role.
type CreateAdminInput struct {
	Username    string
	Password    string
	PhoneNumber string
	Email       string
}

// UpdateAdminInput carries optional profile fields; empty values keep the
// current ones.
type UpdateAdminInput struct {
	Username    string
	Password    string
	PhoneNumber string
	Email       string
}

// CreateSuperAdmin creates the bootstrap superadmin account.
func (s *AdminService) CreateSuperAdmin(ctx context.Context, in CreateAdminInput) error {
	return s.create(ctx, in, model.RoleSuperAdmin)
}

// CreateAdmin creates a regular admin.  The route is superadmin-guarded at
// the transport layer; here only the uniqueness rules apply.
func (s *AdminService) CreateAdmin(ctx context.Context, in CreateAdminInput) error {
	return s.create(ctx, in, model.RoleAdmin)
}

func (s *AdminService) create(ctx context.Context, in CreateAdminInput, role string) error {
	// Pre-checks give a precise Conflict in the common case; the store's
	// unique indexes remain the guard under concurrent duplicates.
	if _, err := s.admins.GetByUsername(ctx, in.Username); err == nil {
		return fmt.Errorf("username: %w", repository.ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if in.PhoneNumber != "" {
		if _, err := s.admins.GetByPhone(ctx, in.PhoneNumber); err == nil {
			return fmt.Errorf("phone number: %w", repository.ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	if in.Email != "" {
		if _, err := s.admins.GetByEmail(ctx, in.Email); err == nil {
			return fmt.Errorf("email: %w", repository.ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	hash, err := utils.HashSecret(in.Password, s.cost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.admins.Create(ctx, model.Admin{
		ID:             uuid.NewString(),
		Username:       strings.TrimSpace(in.Username),
		HashedPassword: hash,
		Role:           role,
		PhoneNumber:    in.PhoneNumber,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// Signin checks the username/password pair and issues a token pair.
// Unknown username, wrong password and deactivated account all collapse to
// ErrInvalidCredentials.
func (s *AdminService) Signin(ctx context.Context, username, password string) (model.Admin, token.Pair, error) {
	a, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Admin{}, token.Pair{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Admin{}, token.Pair{}, err
	}
	if !a.IsActive || !utils.VerifySecret(a.HashedPassword, password) {
		return model.Admin{}, token.Pair{}, ErrInvalidCredentials
	}
	pair, err := s.issuer.IssuePair(a.ID, a.Role)
	if err != nil {
		return model.Admin{}, token.Pair{}, err
	}
	return a, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AdminService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	return s.session.Refresh(ctx, refreshToken)
}

// Logout validates the refresh token so the transport layer may clear the
// session cookie.
func (s *AdminService) Logout(ctx context.Context, refreshToken string) error {
	return s.session.Logout(ctx, refreshToken)
}

// GetByID returns an admin by id, active or not.
func (s *AdminService) GetByID(ctx context.Context, id string) (model.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// List returns all admins.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	return s.admins.List(ctx)
}

// EditProfile merges the provided fields into the admin record.  A new
// password is rehashed; empty fields keep their current values.
func (s *AdminService) EditProfile(ctx context.Context, id string, in UpdateAdminInput) error {
	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if in.Username != "" {
		a.Username = strings.TrimSpace(in.Username)
	}
	if in.Password != "" {
		hash, err := utils.HashSecret(in.Password, s.cost)
		if err != nil {
			return err
		}
		a.HashedPassword = hash
	}
	if in.PhoneNumber != "" {
		a.PhoneNumber = in.PhoneNumber
	}
	if in.Email != "" {
		a.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	a.UpdatedAt = time.Now().UTC()
	return s.admins.Update(ctx, a)
}

// Deactivate soft-deletes an admin; the record stays readable by id.
func (s *AdminService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.admins.GetByID(ctx, id); err != nil {
		return err
	}
	return s.admins.Deactivate(ctx, id, time.Now().UTC())
}

// Delete hard-removes an admin.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	if _, err := s.admins.GetByID(ctx, id); err != nil {
		return err
	}
	return s.admins.Delete(ctx, id)
}

func (s *AdminService) resolve(ctx context.Context, id string) (string, bool, error) {
	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return "", false, err
	}
	return a.Role, a.IsActive, nil
}
