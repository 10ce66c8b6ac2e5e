package service

import (
	"context"
	"sync"
	"time"

	"github.com/ulsoft/platform-auth/internal/cache"
	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/queue"
	"github.com/ulsoft/platform-auth/internal/repository"
)

// fakeAdminStore is an in-memory AdminStore enforcing the same unique
// indexes as the MySQL schema, so concurrent-create tests exercise the
// Conflict path without a database.
type fakeAdminStore struct {
	mu     sync.Mutex
	admins map[string]model.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: map[string]model.Admin{}}
}

func (f *fakeAdminStore) Create(_ context.Context, a model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.admins {
		if ex.Username == a.Username ||
			(a.PhoneNumber != "" && ex.PhoneNumber == a.PhoneNumber) ||
			(a.Email != "" && ex.Email == a.Email) {
			return repository.ErrConflict
		}
	}
	f.admins[a.ID] = a
	return nil
}

func (f *fakeAdminStore) GetByID(_ context.Context, id string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAdminStore) GetByUsername(_ context.Context, username string) (model.Admin, error) {
	return f.find(func(a model.Admin) bool { return a.Username == username })
}

func (f *fakeAdminStore) GetByPhone(_ context.Context, phone string) (model.Admin, error) {
	return f.find(func(a model.Admin) bool { return a.PhoneNumber == phone })
}

func (f *fakeAdminStore) GetByEmail(_ context.Context, email string) (model.Admin, error) {
	return f.find(func(a model.Admin) bool { return a.Email == email })
}

func (f *fakeAdminStore) find(match func(model.Admin) bool) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if match(a) {
			return a, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (f *fakeAdminStore) List(_ context.Context) ([]model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Admin, 0, len(f.admins))
	for _, a := range f.admins {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAdminStore) Update(_ context.Context, a model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.admins[a.ID]; !ok {
		return repository.ErrNotFound
	}
	f.admins[a.ID] = a
	return nil
}

func (f *fakeAdminStore) Deactivate(_ context.Context, id string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsActive = false
	a.UpdatedAt = updatedAt
	f.admins[id] = a
	return nil
}

func (f *fakeAdminStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.admins[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.admins, id)
	return nil
}

// fakeUserStore mirrors fakeAdminStore for the user kind.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.users {
		if ex.PhoneNumber == u.PhoneNumber ||
			(u.Email != "" && ex.Email == u.Email) {
			return repository.ErrConflict
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByPhone(_ context.Context, phone string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.PhoneNumber == phone })
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.Email == email })
}

func (f *fakeUserStore) find(match func(model.User) bool) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, ex := range f.users {
		if id == u.ID {
			continue
		}
		if ex.PhoneNumber == u.PhoneNumber || (u.Email != "" && ex.Email == u.Email) {
			return repository.ErrConflict
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Deactivate(_ context.Context, id string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = updatedAt
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeCodeCache implements CodeCache with real deadlines so a negative TTL
// reads back as already expired.
type fakeCodeCache struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
}

type fakeEntry struct {
	code     string
	deadline time.Time
}

func newFakeCodeCache() *fakeCodeCache {
	return &fakeCodeCache{entries: map[string]fakeEntry{}}
}

func (f *fakeCodeCache) Set(_ context.Context, key, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = fakeEntry{code: code, deadline: time.Now().Add(ttl)}
	return nil
}

func (f *fakeCodeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || time.Now().After(e.deadline) {
		return "", cache.ErrCodeNotFound
	}
	return e.code, nil
}

func (f *fakeCodeCache) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

// expire force-expires a pending entry without waiting out its TTL.
func (f *fakeCodeCache) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[key]; ok {
		e.deadline = time.Now().Add(-time.Second)
		f.entries[key] = e
	}
}

// fakeFileStore keeps stored bytes in a map.
type fakeFileStore struct {
	mu    sync.Mutex
	n     int
	files map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) Store(data []byte, originalName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	name := originalName + "#" + time.Now().Format("150405.000000000") + string(rune('a'+f.n%26))
	f.files[name] = data
	return name, nil
}

func (f *fakeFileStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	return nil
}

func (f *fakeFileStore) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[name]
	return ok
}

// captureSender records published OTP events.
type captureSender struct {
	mu     sync.Mutex
	events []queue.OTPRequestedEvent
}

func (c *captureSender) send(_ context.Context, ev queue.OTPRequestedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSender) last() (queue.OTPRequestedEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return queue.OTPRequestedEvent{}, false
	}
	return c.events[len(c.events)-1], true
}
