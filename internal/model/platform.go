package model

import "time"

// Platform represents a row in the `platforms` table: an external product
// surface reachable through the gateway.  Platforms are plain CRUD records
// managed by admins; they exist here because their mutations exercise the
// same uniqueness and file-storage contracts as accounts.
type Platform struct {
	ID        string    // platforms.id
	Name      string    // platforms.name
	Route     string    // platforms.route (unique)
	Icon      string    // platforms.icon (stored file name)
	IsActive  bool      // platforms.is_active
	CreatedAt time.Time // platforms.created_at
	UpdatedAt time.Time // platforms.updated_at
}
