package user

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/user/entity"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/storage"
)

const collection = "users"

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("username already registered")
	ErrNotFound           = errors.New("user not found")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrProtectedAccount   = errors.New("account is protected")
	ErrSelfDeletion       = errors.New("cannot delete yourself")
)

// PasswordHasher defines minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Service is the credential store. Every mutation rewrites the whole
// users collection through the persistence gateway; a failed save means
// the mutation did not happen.
type Service struct {
	store  storage.Store
	hasher PasswordHasher
	// adminUsername is the bootstrap admin identity, exempt from deletion.
	adminUsername string
}

func NewService(store storage.Store, hasher PasswordHasher, adminUsername string) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	return &Service{store: store, hasher: hasher, adminUsername: adminUsername}
}

func (s *Service) loadAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := s.store.Load(ctx, collection, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (s *Service) saveAll(ctx context.Context, users []entity.User) error {
	if err := s.store.Save(ctx, collection, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Verify authenticates a username/password pair. Unknown users, wrong
// passwords and disabled accounts all map to ErrInvalidCredentials to
// avoid user enumeration.
func (s *Service) Verify(ctx context.Context, username, password string) (entity.User, error) {
	users, err := s.loadAll(ctx)
	if err != nil {
		return entity.User{}, err
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if u.Disabled || !s.hasher.Verify(u.HashedPassword, password) {
			return entity.User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return entity.User{}, ErrInvalidCredentials
}

// GetActive returns the named account if it exists and is not disabled.
// Used by the auth middleware to resolve token subjects.
func (s *Service) GetActive(ctx context.Context, username string) (entity.User, error) {
	users, err := s.loadAll(ctx)
	if err != nil {
		return entity.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			if u.Disabled {
				return entity.User{}, ErrNotFound
			}
			return u, nil
		}
	}
	return entity.User{}, ErrNotFound
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, username, password string, isAdmin bool) (entity.User, error) {
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return entity.User{}, ErrInvalidUsername
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return entity.User{}, ErrWeakPassword
	}
	users, err := s.loadAll(ctx)
	if err != nil {
		return entity.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return entity.User{}, ErrDuplicateUser
		}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return entity.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := entity.User{Username: username, HashedPassword: hash, IsAdmin: isAdmin}
	if err := s.saveAll(ctx, append(users, u)); err != nil {
		return entity.User{}, err
	}
	return u, nil
}

// Delete removes an account. The bootstrap admin is exempt, and a user
// may not delete their own account.
func (s *Service) Delete(ctx context.Context, requester, username string) error {
	if username == s.adminUsername {
		return ErrProtectedAccount
	}
	if username == requester {
		return ErrSelfDeletion
	}
	users, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	kept := users[:0]
	found := false
	for _, u := range users {
		if u.Username == username {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return ErrNotFound
	}
	return s.saveAll(ctx, kept)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	return s.loadAll(ctx)
}

// ChangePassword replaces a user's password after proving the current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if utf8.RuneCountInString(next) < minPasswordLen {
		return ErrWeakPassword
	}
	users, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	for i, u := range users {
		if u.Username != username {
			continue
		}
		if !s.hasher.Verify(u.HashedPassword, current) {
			return ErrInvalidCredentials
		}
		hash, err := s.hasher.Hash(next)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		users[i].HashedPassword = hash
		return s.saveAll(ctx, users)
	}
	return ErrNotFound
}

// EnsureBootstrapAdmin creates the configured admin account on startup
// if it does not exist yet. Idempotent.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, password string) error {
	users, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == s.adminUsername {
			return nil
		}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := entity.User{Username: s.adminUsername, HashedPassword: hash, IsAdmin: true}
	return s.saveAll(ctx, append(users, admin))
}
