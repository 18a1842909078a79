package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/siteis/internal/domain/user"
)

// UsersRepo keeps users in a map keyed by normalized email. It backs tests
// and dry runs of the admin CLI where touching the users file is unwanted.
type UsersRepo struct {
	mu     sync.RWMutex
	items  map[string]user.User
	lastID int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[user.NormalizeEmail(email)]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, name, email, passwordHash string) (user.User, error) {
	key := user.NormalizeEmail(email)
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		return user.User{}, user.ErrEmailAlreadyUsed
	}

	u := user.User{
		ID:           user.NextID(now, r.lastID),
		Name:         name,
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	r.items[key] = u
	r.lastID = u.ID

	return u, nil
}

// List returns users in creation order.
func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
