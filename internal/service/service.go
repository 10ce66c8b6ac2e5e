// Package service orchestrates the signup, signin, refresh, logout and
// profile-edit flows for the two principal kinds (admins and users) plus
// the platform records they manage.  It owns the business rules; storage,
// caching, token signing, file handling and OTP delivery are consumed
// through the narrow capability interfaces below so each flow can be
// tested against fakes.
//
// All capabilities must tolerate concurrent calls from independent request
// handlers.  The services hold no cross-request state: correctness under
// racing duplicate signups is delegated to the store's uniqueness
// constraints, and last-write-wins is acceptable for OTP entries because
// they are single-use and narrow-window.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/queue"
	"github.com/ulsoft/platform-auth/internal/token"
)

// Undifferentiated failure reasons.  ErrInvalidCredentials covers both
// unknown username and wrong password; ErrInvalidOrExpiredOTP covers a
// missing, expired and mismatched code.  Keeping the cases merged avoids
// leaking which half of a credential an attacker got right.
var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidOrExpiredOTP = errors.New("otp invalid or expired")
)

// AdminStore is the credential store for administrative accounts.
// Lookups return repository.ErrNotFound for absence; Create and Update
// return repository.ErrConflict on uniqueness violations.
type AdminStore interface {
	Create(ctx context.Context, a model.Admin) error
	GetByID(ctx context.Context, id string) (model.Admin, error)
	GetByUsername(ctx context.Context, username string) (model.Admin, error)
	GetByPhone(ctx context.Context, phone string) (model.Admin, error)
	GetByEmail(ctx context.Context, email string) (model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Update(ctx context.Context, a model.Admin) error
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// UserStore is the credential store for end-user accounts.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// PlatformStore persists platform records.
type PlatformStore interface {
	Create(ctx context.Context, p model.Platform) error
	GetByID(ctx context.Context, id string) (model.Platform, error)
	GetByRoute(ctx context.Context, route string) (model.Platform, error)
	List(ctx context.Context) ([]model.Platform, error)
	Update(ctx context.Context, p model.Platform) error
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// CodeCache holds in-flight verification codes with per-entry expiry.
type CodeCache interface {
	Set(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// FileStore is the file collaborator for avatars and icons.
type FileStore interface {
	Store(data []byte, originalName string) (string, error)
	Delete(name string) error
	Exists(name string) bool
}

// OTPSender hands an issued code to the delivery pipeline.  Failures are
// logged by the sender and never block the flow that issued the code.
type OTPSender func(ctx context.Context, ev queue.OTPRequestedEvent) error

// resolveFunc checks that a principal id from a verified refresh token
// still resolves to a record, returning its role (empty for users) and
// active flag.
type resolveFunc func(ctx context.Context, id string) (role string, active bool, err error)

// sessionFlow is the kind-independent half of the token lifecycle: both
// account services differ only in claim shape and in how an id resolves
// back to a principal, so the refresh and logout transitions live here
// once, parametrized by a resolveFunc.
type sessionFlow struct {
	issuer  *token.Issuer
	resolve resolveFunc
}

// Refresh verifies a refresh token, re-confirms the encoded principal is
// still active, and mints a new access token.  The refresh token itself is
// not rotated.
func (s sessionFlow) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.issuer.Verify(refreshToken, token.Refresh)
	if err != nil {
		return "", time.Time{}, err
	}
	role, active, err := s.resolve(ctx, claims.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !active {
		return "", time.Time{}, token.ErrInvalidToken
	}
	return s.issuer.Issue(claims.ID, role, token.Access)
}

// Logout verifies the refresh token and confirms the principal resolves.
// A bad token is an error rather than a silent no-op; the cookie clearing
// itself happens at the transport layer.
func (s sessionFlow) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.Verify(refreshToken, token.Refresh)
	if err != nil {
		return err
	}
	_, _, err = s.resolve(ctx, claims.ID)
	return err
}
