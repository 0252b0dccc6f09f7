// Package category maintains the set of explicitly registered category
// names. Registry entries are independent of the category strings held
// by tasks: deleting a name never touches tasks, and a name can be in
// use by tasks without ever being registered.
package category

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/storage"
)

const collection = "categories"

const maxNameLen = 50

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrNotFound          = errors.New("category not found")
	ErrInvalidName       = errors.New("invalid category name")
)

// InUseLister reports category names referenced by current tasks.
type InUseLister interface {
	CategoriesInUse(ctx context.Context) ([]string, error)
}

// Service is the category registry.
type Service struct {
	store storage.Store
	tasks InUseLister
}

func NewService(store storage.Store, tasks InUseLister) *Service {
	return &Service{store: store, tasks: tasks}
}

func (s *Service) loadAll(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.store.Load(ctx, collection, &names); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return names, nil
}

func (s *Service) saveAll(ctx context.Context, names []string) error {
	if err := s.store.Save(ctx, collection, names); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// List returns all registered names, sorted.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Create registers a new name. The name is trimmed first; an empty or
// overlong result is rejected.
func (s *Service) Create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLen)
	}
	names, err := s.loadAll(ctx)
	if err != nil {
		return "", err
	}
	for _, n := range names {
		if n == name {
			return "", ErrDuplicateCategory
		}
	}
	if err := s.saveAll(ctx, append(names, name)); err != nil {
		return "", err
	}
	return name, nil
}

// Delete removes a registered name. Tasks referencing the name keep
// their category value unchanged.
func (s *Service) Delete(ctx context.Context, name string) error {
	names, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	kept := names[:0]
	found := false
	for _, n := range names {
		if n == name {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	if !found {
		return ErrNotFound
	}
	return s.saveAll(ctx, kept)
}

// Known returns the sorted union of registered names and names in use
// by current tasks.
func (s *Service) Known(ctx context.Context) ([]string, error) {
	registered, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	inUse, err := s.tasks.CategoriesInUse(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(registered)+len(inUse))
	for _, n := range registered {
		seen[n] = struct{}{}
	}
	for _, n := range inUse {
		seen[n] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
