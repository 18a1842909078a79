package jsonfile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/siteis/internal/domain/user"
)

// Observer times a logical store operation. *observability.Prom satisfies it.
type Observer interface {
	ObserveStore(op string, fn func() error) error
}

type nopObserver struct{}

func (nopObserver) ObserveStore(_ string, fn func() error) error { return fn() }

type Option func(*options)

type options struct {
	log *slog.Logger
	obs Observer
	now func() time.Time
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.obs = obs }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		log: slog.Default(),
		obs: nopObserver{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type UsersRepo struct {
	coll *Collection[user.User]
	options
}

func NewUsersRepo(path string, opts ...Option) *UsersRepo {
	return &UsersRepo{
		coll:    NewCollection[user.User](path),
		options: buildOptions(opts),
	}
}

// GetByEmail looks the address up case-insensitively. An unreadable users
// file is logged and treated as empty so logins degrade to "not found"
// instead of taking the site down.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	key := user.NormalizeEmail(email)

	var (
		found user.User
		ok    bool
	)

	err := r.obs.ObserveStore("users.get_by_email", func() error {
		users, err := r.coll.Load()
		if err != nil {
			if errors.Is(err, ErrCorrupt) {
				r.log.WarnContext(ctx, "users file unreadable, treating as empty", "err", err)
				return nil
			}
			return err
		}

		for _, u := range users {
			if user.NormalizeEmail(u.Email) == key {
				found, ok = u, true
				return nil
			}
		}
		return nil
	})

	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return found, nil
}

// Create appends a user unless the email is already taken. The duplicate
// check and the write happen under one lock.
func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	var created user.User

	err := r.obs.ObserveStore("users.create", func() error {
		return r.coll.Update(func(users []user.User) ([]user.User, error) {
			key := user.NormalizeEmail(email)

			var lastID int64
			for _, u := range users {
				if user.NormalizeEmail(u.Email) == key {
					return nil, user.ErrEmailAlreadyUsed
				}
				if u.ID > lastID {
					lastID = u.ID
				}
			}

			now := r.now().UTC()
			created = user.User{
				ID:           user.NextID(now, lastID),
				Name:         name,
				Email:        key,
				PasswordHash: passwordHash,
				CreatedAt:    now,
			}

			return append(users, created), nil
		})
	})

	if err != nil {
		if !errors.Is(err, user.ErrEmailAlreadyUsed) {
			r.log.ErrorContext(ctx, "users store write failed", "op", "create", "err", err)
		}
		return user.User{}, err
	}

	return created, nil
}

// List returns every stored user, hashes included. Callers decide what to expose.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var users []user.User

	err := r.obs.ObserveStore("users.list", func() error {
		var err error
		users, err = r.coll.Load()
		return err
	})

	return users, err
}

// Ping checks that the users file's directory exists or can be created.
func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.coll.Ensure()
}
