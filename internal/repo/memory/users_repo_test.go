package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/siteis/internal/domain/user"
)

func TestUsersRepo_CreateFindDuplicate(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	a, err := repo.Create(ctx, "Ana", "Ana@X.com", "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Email != "ana@x.com" {
		t.Fatalf("email not normalized: %q", a.Email)
	}

	got, err := repo.GetByEmail(ctx, "ANA@x.com")
	if err != nil || got.ID != a.ID {
		t.Fatalf("lookup: got %+v err=%v", got, err)
	}

	if _, err := repo.Create(ctx, "Ana 2", "ana@X.COM", "h"); !errors.Is(err, user.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	if _, err := repo.GetByEmail(ctx, "missing@x.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersRepo_ListInCreationOrder(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	for _, e := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		if _, err := repo.Create(ctx, "n", e, "h"); err != nil {
			t.Fatalf("create %s: %v", e, err)
		}
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"c@x.com", "a@x.com", "b@x.com"}
	for i, u := range users {
		if u.Email != want[i] {
			t.Fatalf("position %d: got %s want %s", i, u.Email, want[i])
		}
	}
}
