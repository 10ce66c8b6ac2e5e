package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ulsoft/platform-auth/internal/cache"
	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/queue"
	"github.com/ulsoft/platform-auth/internal/repository"
	"github.com/ulsoft/platform-auth/internal/token"
	"github.com/ulsoft/platform-auth/internal/utils"
)

// UserService implements the passwordless OTP flow for the user principal
// kind.  Signup walks Unverified -> OtpPending -> OtpConfirmed -> Active:
// a phone number gets a cached code, the code is confirmed, and the
// passcode step creates the account and issues the first token pair in one
// transition.  Signin reuses the first two steps and issues tokens at
// confirmation because the account already exists.
type UserService struct {
	users   UserStore
	codes   CodeCache
	files   FileStore
	issuer  *token.Issuer
	sendOTP OTPSender
	cost    int

	otpTTL    time.Duration // phone-keyed codes
	emailTTL  time.Duration // email-keyed codes (longer window)
	fixedCode string        // when non-empty, every code is this value
}

func NewUserService(users UserStore, codes CodeCache, files FileStore, issuer *token.Issuer,
	sendOTP OTPSender, bcryptCost int, otpTTL, emailTTL time.Duration, fixedCode string) *UserService {
	return &UserService{
		users:     users,
		codes:     codes,
		files:     files,
		issuer:    issuer,
		sendOTP:   sendOTP,
		cost:      bcryptCost,
		otpTTL:    otpTTL,
		emailTTL:  emailTTL,
		fixedCode: fixedCode,
	}
}

// SetPasscodeInput carries the profile fields of the final signup step.
type SetPasscodeInput struct {
	FullName    string
	PhoneNumber string
	Email       string
	Passcode    string
}

// Signup starts onboarding for an unused phone number by issuing an OTP.
// A taken phone number is a Conflict; a repeated signup request overwrites
// the pending code and restarts its window.
func (s *UserService) Signup(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return fmt.Errorf("phone number: %w", repository.ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.issueCode(ctx, queue.ChannelPhone, phone, s.otpTTL)
}

// ConfirmSignupOTP checks the submitted code against the pending entry.
// No tokens are issued here: the principal does not exist yet.
func (s *UserService) ConfirmSignupOTP(ctx context.Context, phone, otp string) error {
	return s.confirmCode(ctx, strings.TrimSpace(phone), otp)
}

// SetPasscode completes signup: it creates the principal (the store's
// unique indexes arbitrate concurrent duplicates) and immediately issues
// the first token pair.
func (s *UserService) SetPasscode(ctx context.Context, in SetPasscodeInput) (model.User, token.Pair, error) {
	hash, err := utils.HashSecret(in.Passcode, s.cost)
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	now := time.Now().UTC()
	u := model.User{
		ID:          uuid.NewString(),
		FullName:    in.FullName,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Passcode:    hash,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, token.Pair{}, err
	}
	pair, err := s.issuer.IssuePair(u.ID, "")
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	return u, pair, nil
}

// Signin starts a login for a known phone number by issuing an OTP.  An
// unknown or deactivated account is NotFound; the flow never reveals which.
func (s *UserService) Signin(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return repository.ErrNotFound
	}
	return s.issueCode(ctx, queue.ChannelPhone, phone, s.otpTTL)
}

// ConfirmSigninOTP checks the code and, on match, issues a token pair.
func (s *UserService) ConfirmSigninOTP(ctx context.Context, phone, otp string) (model.User, token.Pair, error) {
	phone = strings.TrimSpace(phone)
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	if !u.IsActive {
		return model.User{}, token.Pair{}, repository.ErrNotFound
	}
	if err := s.confirmCode(ctx, phone, otp); err != nil {
		return model.User{}, token.Pair{}, err
	}
	pair, err := s.issuer.IssuePair(u.ID, "")
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	return s.sessionFlow().Refresh(ctx, refreshToken)
}

// Logout validates the refresh token so the transport layer may clear the
// session cookie.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessionFlow().Logout(ctx, refreshToken)
}

// GetByID returns a user by id, active or not.
func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// EditFullName replaces the display name; an empty input keeps the current
// one.
func (s *UserService) EditFullName(ctx context.Context, id, fullName string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fullName != "" {
		u.FullName = fullName
	}
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}

// EditPasscode rehashes and replaces the passcode; an empty input keeps the
// current one.
func (s *UserService) EditPasscode(ctx context.Context, id, passcode string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if passcode != "" {
		hash, err := utils.HashSecret(passcode, s.cost)
		if err != nil {
			return err
		}
		u.Passcode = hash
	}
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}

// EditAvatar stores the new image, swaps the reference, and deletes the old
// file after the record mutation.  File-store failures after the store has
// the new file surface to the caller but never roll back the credential
// record.
func (s *UserService) EditAvatar(ctx context.Context, id string, data []byte, originalName string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	old := u.Image
	name, err := s.files.Store(data, originalName)
	if err != nil {
		return err
	}
	u.Image = name
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	if old != "" && s.files.Exists(old) {
		if err := s.files.Delete(old); err != nil {
			log.Printf("user avatar: delete old file %s: %v", old, err)
		}
	}
	return nil
}

// RequestPhoneEdit issues an OTP to a phone number the user wants to switch
// to.  Uniqueness is arbitrated at confirmation time by the store.
func (s *UserService) RequestPhoneEdit(ctx context.Context, phone string) error {
	return s.issueCode(ctx, queue.ChannelPhone, strings.TrimSpace(phone), s.otpTTL)
}

// ConfirmPhoneEdit verifies the code for the new number and updates the
// record.  A number already taken surfaces as Conflict from the store.
func (s *UserService) ConfirmPhoneEdit(ctx context.Context, id, phone, otp string) error {
	phone = strings.TrimSpace(phone)
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.confirmCode(ctx, phone, otp); err != nil {
		return err
	}
	u.PhoneNumber = phone
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}

// RequestEmailEdit issues an OTP to the new email address.  Email delivery
// is slower than SMS so the code gets the longer window.
func (s *UserService) RequestEmailEdit(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.issueCode(ctx, queue.ChannelEmail, email, s.emailTTL)
}

// ConfirmEmailEdit verifies the code for the new email and updates the
// record.
func (s *UserService) ConfirmEmailEdit(ctx context.Context, id, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.confirmCode(ctx, email, otp); err != nil {
		return err
	}
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}

// Deactivate soft-deletes a user; the record stays readable by id.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Deactivate(ctx, id, time.Now().UTC())
}

// Delete hard-removes a user and then cleans up the stored avatar.  The
// file cleanup is sequenced after the row removal and its failure does not
// resurrect the account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if u.Image != "" && s.files.Exists(u.Image) {
		if err := s.files.Delete(u.Image); err != nil {
			log.Printf("user delete: remove avatar %s: %v", u.Image, err)
		}
	}
	return nil
}

// issueCode generates (or pins) a code, caches it under the contact field,
// and hands it to the delivery pipeline.  Delivery failure is logged by
// the sender and does not fail the request.
func (s *UserService) issueCode(ctx context.Context, channel, recipient string, ttl time.Duration) error {
	code := s.fixedCode
	if code == "" {
		var err error
		code, err = utils.RandomCode(6)
		if err != nil {
			return err
		}
	}
	if err := s.codes.Set(ctx, recipient, code, ttl); err != nil {
		return err
	}
	if s.sendOTP != nil {
		_ = s.sendOTP(ctx, queue.OTPRequestedEvent{
			Channel:     channel,
			Recipient:   recipient,
			Code:        code,
			TTLSeconds:  int64(ttl / time.Second),
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return nil
}

// confirmCode compares the submitted code with the pending entry using
// exact string equality and consumes the entry on success.  Absence,
// expiry and mismatch are indistinguishable to the caller.
func (s *UserService) confirmCode(ctx context.Context, key, otp string) error {
	pending, err := s.codes.Get(ctx, key)
	if errors.Is(err, cache.ErrCodeNotFound) {
		return ErrInvalidOrExpiredOTP
	}
	if err != nil {
		return err
	}
	if pending != otp {
		return ErrInvalidOrExpiredOTP
	}
	// Single-use: a matched code cannot be replayed inside its window.
	return s.codes.Del(ctx, key)
}

func (s *UserService) sessionFlow() sessionFlow {
	return sessionFlow{issuer: s.issuer, resolve: func(ctx context.Context, id string) (string, bool, error) {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return "", false, err
		}
		return "", u.IsActive, nil
	}}
}
