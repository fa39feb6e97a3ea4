package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

func TestMemoryUserRepositoryUniqueEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	first := &domain.User{Email: "Ada@Example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.Role != domain.UserRoleUser || first.Email != "ada@example.com" {
		t.Fatalf("unexpected stored user %+v", first)
	}

	dup := &domain.User{Email: " ada@example.com ", PasswordHash: "h"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	found, err := repo.GetByEmail(ctx, "ADA@example.com")
	if err != nil || found.ID != first.ID {
		t.Fatalf("lookup by email: %v %+v", err, found)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUserRepositoryConcurrentCreateSameEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Create(context.Background(), &domain.User{Email: "race@example.com"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("expected exactly one create to win, got %d", created)
	}
}

func TestMemoryRepositoriesListAndDelete(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		if err := users.Create(ctx, &domain.User{Email: email}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, _ := users.List(ctx, 2, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got, _ := users.List(ctx, 10, 5); len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}

	u, _ := users.GetByEmail(ctx, "a@x.io")
	users.Delete(u.ID)
	if _, err := users.GetByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}

	vendors := NewMemoryVendorRepository()
	v := &domain.Vendor{Email: "shop@x.io"}
	if err := vendors.Create(ctx, v); err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	if v.Role != domain.VendorRoleVendor {
		t.Fatalf("expected default vendor role, got %s", v.Role)
	}
	if err := vendors.Create(ctx, &domain.Vendor{Email: "SHOP@x.io"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate vendor, got %v", err)
	}
	list, _ := vendors.List(ctx, 0, 0)
	if len(list) != 1 {
		t.Fatalf("expected 1 vendor, got %d", len(list))
	}
}
