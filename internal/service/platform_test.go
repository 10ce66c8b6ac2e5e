package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/repository"
)

// fakePlatformStore enforces route uniqueness like the MySQL schema.
type fakePlatformStore struct {
	mu        sync.Mutex
	platforms map[string]model.Platform
}

func newFakePlatformStore() *fakePlatformStore {
	return &fakePlatformStore{platforms: map[string]model.Platform{}}
}

func (f *fakePlatformStore) Create(_ context.Context, p model.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.platforms {
		if ex.Route == p.Route {
			return repository.ErrConflict
		}
	}
	f.platforms[p.ID] = p
	return nil
}

func (f *fakePlatformStore) GetByID(_ context.Context, id string) (model.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.platforms[id]
	if !ok {
		return model.Platform{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlatformStore) GetByRoute(_ context.Context, route string) (model.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.platforms {
		if p.Route == route {
			return p, nil
		}
	}
	return model.Platform{}, repository.ErrNotFound
}

func (f *fakePlatformStore) List(_ context.Context) ([]model.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Platform, 0, len(f.platforms))
	for _, p := range f.platforms {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlatformStore) Update(_ context.Context, p model.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.platforms[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.platforms[p.ID] = p
	return nil
}

func (f *fakePlatformStore) Deactivate(_ context.Context, id string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.platforms[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = updatedAt
	f.platforms[id] = p
	return nil
}

func (f *fakePlatformStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.platforms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.platforms, id)
	return nil
}

func newPlatformFixture() (*PlatformService, *fakePlatformStore, *fakeFileStore) {
	store := newFakePlatformStore()
	files := newFakeFileStore()
	return NewPlatformService(store, files), store, files
}

func TestPlatformCreateAndRouteConflict(t *testing.T) {
	svc, store, files := newPlatformFixture()
	ctx := context.Background()

	if err := svc.Create(ctx, "Market", "/market", []byte("svg"), "market.svg"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(store.platforms) != 1 {
		t.Fatalf("store holds %d platforms, want 1", len(store.platforms))
	}

	filesBefore := len(files.files)
	if err := svc.Create(ctx, "Other", "/market", []byte("svg"), "other.svg"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// A rejected create must not leave an orphan icon behind.
	if len(files.files) != filesBefore {
		t.Fatal("conflicting create wrote an icon file")
	}
}

func TestPlatformUpdateSwapsIcon(t *testing.T) {
	svc, store, files := newPlatformFixture()
	ctx := context.Background()

	if err := svc.Create(ctx, "Market", "/market", []byte("v1"), "icon.svg"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	var id, oldIcon string
	for _, p := range store.platforms {
		id, oldIcon = p.ID, p.Icon
	}

	inactive := false
	if err := svc.Update(ctx, id, UpdatePlatformInput{Name: "Marketplace", IsActive: &inactive}, []byte("v2"), "icon.svg"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	p := store.platforms[id]
	if p.Name != "Marketplace" || p.Route != "/market" || p.IsActive {
		t.Fatalf("unexpected platform after update: %+v", p)
	}
	if p.Icon == oldIcon {
		t.Fatal("icon reference unchanged")
	}
	if files.Exists(oldIcon) {
		t.Fatal("old icon not deleted")
	}
}

func TestPlatformDeleteCleansUpIcon(t *testing.T) {
	svc, store, files := newPlatformFixture()
	ctx := context.Background()

	if err := svc.Create(ctx, "Market", "/market", []byte("svg"), "icon.svg"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	var id, icon string
	for _, p := range store.platforms {
		id, icon = p.ID, p.Icon
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if files.Exists(icon) {
		t.Fatal("icon file not cleaned up")
	}
}

func TestPlatformUpdateUnknownID(t *testing.T) {
	svc, _, _ := newPlatformFixture()
	if err := svc.Update(context.Background(), "missing", UpdatePlatformInput{Name: "x"}, nil, ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
