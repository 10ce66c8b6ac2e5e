package model

import "time"

// User represents an end-user account as stored in the `users` table.
// Users authenticate with their phone number plus a one-time code and a
// short numeric passcode; they carry no explicit role.
//
// Fields:
//
//	ID          – char(36) UUID primary key, assigned by the service layer.
//	FullName    – display name.
//	PhoneNumber – unique identity field, verified via OTP.
//	Passcode    – bcrypt hashed passcode; never the plaintext.
//	Email       – optional email address, unique when present, verified via OTP.
//	Image       – stored avatar file name (empty when no avatar uploaded).
//	IsActive    – soft-delete flag; inactive users cannot sign in but remain
//	              addressable by id for audit.
//	CreatedAt   – timestamp of creation, set by the service layer.
//	UpdatedAt   – timestamp of last mutation, set by the service layer.
type User struct {
	ID          string    // users.id
	FullName    string    // users.full_name
	PhoneNumber string    // users.phone_number
	Passcode    string    // users.passcode
	Email       string    // users.email (nullable)
	Image       string    // users.image (nullable)
	IsActive    bool      // users.is_active
	CreatedAt   time.Time // users.created_at
	UpdatedAt   time.Time // users.updated_at
}
