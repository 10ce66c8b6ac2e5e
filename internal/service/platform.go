package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/repository"
)

// PlatformService manages the platform records admins expose through the
// gateway.  It is plain CRUD but exercises the same uniqueness and file
// contracts as the account flows.
type PlatformService struct {
	platforms PlatformStore
	files     FileStore
}

func NewPlatformService(platforms PlatformStore, files FileStore) *PlatformService {
	return &PlatformService{platforms: platforms, files: files}
}

// UpdatePlatformInput carries optional fields; nil/empty values keep the
// current ones.
type UpdatePlatformInput struct {
	Name     string
	Route    string
	IsActive *bool
}

// Create stores the icon and inserts the record.  A taken route is a
// Conflict before the icon is written, so no orphan file is left behind.
func (s *PlatformService) Create(ctx context.Context, name, route string, icon []byte, iconName string) error {
	route = strings.TrimSpace(route)
	if _, err := s.platforms.GetByRoute(ctx, route); err == nil {
		return fmt.Errorf("route: %w", repository.ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	ref, err := s.files.Store(icon, iconName)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.platforms.Create(ctx, model.Platform{
		ID:        uuid.NewString(),
		Name:      name,
		Route:     route,
		Icon:      ref,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// GetByID returns a platform by id.
func (s *PlatformService) GetByID(ctx context.Context, id string) (model.Platform, error) {
	return s.platforms.GetByID(ctx, id)
}

// List returns all platforms.
func (s *PlatformService) List(ctx context.Context) ([]model.Platform, error) {
	return s.platforms.List(ctx)
}

// Update merges the provided fields and optionally swaps the icon file;
// the old icon is removed after the record mutation.
func (s *PlatformService) Update(ctx context.Context, id string, in UpdatePlatformInput, icon []byte, iconName string) error {
	p, err := s.platforms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	old := ""
	if len(icon) > 0 {
		ref, err := s.files.Store(icon, iconName)
		if err != nil {
			return err
		}
		old = p.Icon
		p.Icon = ref
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Route != "" {
		p.Route = strings.TrimSpace(in.Route)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.platforms.Update(ctx, p); err != nil {
		return err
	}
	if old != "" && s.files.Exists(old) {
		if err := s.files.Delete(old); err != nil {
			log.Printf("platform update: delete old icon %s: %v", old, err)
		}
	}
	return nil
}

// Delete removes the record and then its icon file.
func (s *PlatformService) Delete(ctx context.Context, id string) error {
	p, err := s.platforms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.platforms.Delete(ctx, id); err != nil {
		return err
	}
	if p.Icon != "" && s.files.Exists(p.Icon) {
		if err := s.files.Delete(p.Icon); err != nil {
			log.Printf("platform delete: remove icon %s: %v", p.Icon, err)
		}
	}
	return nil
}
