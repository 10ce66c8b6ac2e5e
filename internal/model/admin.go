package model

import "time"

// Administrative roles stored in the admins.role column.  A superadmin may
// manage other admin accounts; a plain admin may not.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
)

// Admin represents an administrative account as stored in the `admins`
// table.  Each field corresponds to a column.  The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//
//	ID             – char(36) UUID primary key, assigned by the service layer.
//	Username       – unique login name.
//	HashedPassword – bcrypt hashed password; never the plaintext.
//	Role           – superadmin or admin.
//	PhoneNumber    – optional contact number, unique when present.
//	Email          – optional email address, unique when present.
//	IsActive       – soft-delete flag; inactive admins cannot sign in but
//	                 remain addressable by id for audit.
//	CreatedAt      – timestamp of creation, set by the service layer.
//	UpdatedAt      – timestamp of last mutation, set by the service layer.
type Admin struct {
	ID             string    // admins.id
	Username       string    // admins.username
	HashedPassword string    // admins.hashed_password
	Role           string    // admins.role
	PhoneNumber    string    // admins.phone_number (nullable)
	Email          string    // admins.email (nullable)
	IsActive       bool      // admins.is_active
	CreatedAt      time.Time // admins.created_at
	UpdatedAt      time.Time // admins.updated_at
}
