package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

// MemoryUserRepository keeps users in process memory. It backs the gateway
// when no database is configured and is used throughout the tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository builds an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: map[string]*domain.User{}, byEmail: map[string]string{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	email := normalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[email]; exists {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = domain.UserRoleUser
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.RLock()
	users := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, *user)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return page(users, limit, offset), nil
}

// Delete removes a user; it exists so callers can simulate records that
// disappear while a token is still valid.
func (r *MemoryUserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}

// SetRole changes the stored role of a user.
func (r *MemoryUserRepository) SetRole(id string, role domain.UserRole) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		user.Role = role
		user.UpdatedAt = time.Now().UTC()
	}
}

// MemoryVendorRepository keeps vendors in process memory.
type MemoryVendorRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Vendor
	byEmail map[string]string
}

// NewMemoryVendorRepository builds an empty store.
func NewMemoryVendorRepository() *MemoryVendorRepository {
	return &MemoryVendorRepository{byID: map[string]*domain.Vendor{}, byEmail: map[string]string{}}
}

func (r *MemoryVendorRepository) Create(_ context.Context, vendor *domain.Vendor) error {
	email := normalizeEmail(vendor.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[email]; exists {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	vendor.ID = uuid.NewString()
	vendor.Email = email
	vendor.CreatedAt, vendor.UpdatedAt = now, now
	if vendor.Role == "" {
		vendor.Role = domain.VendorRoleVendor
	}

	stored := *vendor
	r.byID[vendor.ID] = &stored
	r.byEmail[email] = vendor.ID
	return nil
}

func (r *MemoryVendorRepository) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vendor, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *vendor
	return &copied, nil
}

func (r *MemoryVendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryVendorRepository) List(_ context.Context, limit, offset int) ([]domain.Vendor, error) {
	r.mu.RLock()
	vendors := make([]domain.Vendor, 0, len(r.byID))
	for _, vendor := range r.byID {
		vendors = append(vendors, *vendor)
	}
	r.mu.RUnlock()

	sort.Slice(vendors, func(i, j int) bool { return vendors[i].CreatedAt.After(vendors[j].CreatedAt) })
	return page(vendors, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
