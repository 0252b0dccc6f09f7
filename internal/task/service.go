package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/task/entity"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/storage"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/utilities"
)

const collection = "tasks"

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxCategoryLen    = 50
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrValidation = errors.New("validation failed")
)

// Fields carries the caller-owned attributes of a task; id, created_at
// and updated_at are system-assigned.
type Fields struct {
	Title       string
	Description string
	Priority    string
	Category    string
	Column      string
	DueDate     *time.Time
}

// Filter narrows List results. Empty values match everything.
type Filter struct {
	Column   string
	Priority string
	Category string
}

// Service owns the tasks collection. Every mutation rewrites the whole
// collection through the persistence gateway.
type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

func (s *Service) loadAll(ctx context.Context) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := s.store.Load(ctx, collection, &tasks); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) saveAll(ctx context.Context, tasks []entity.Task) error {
	if err := s.store.Save(ctx, collection, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// validate checks a full field set after defaulting.
func validate(f Fields) error {
	if f.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(f.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	if utf8.RuneCountInString(f.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionLen)
	}
	if utf8.RuneCountInString(f.Category) > maxCategoryLen {
		return fmt.Errorf("%w: category exceeds %d characters", ErrValidation, maxCategoryLen)
	}
	if !entity.ValidPriority(f.Priority) {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, f.Priority)
	}
	if !entity.ValidColumn(f.Column) {
		return fmt.Errorf("%w: invalid column %q", ErrValidation, f.Column)
	}
	return nil
}

// applyDefaults fills omitted enumerated fields: Medium priority and the
// Backlog column.
func applyDefaults(f Fields) Fields {
	if f.Priority == "" {
		f.Priority = entity.PriorityMedium
	}
	if f.Column == "" {
		f.Column = entity.ColumnBacklog
	}
	return f
}

// Create assigns a fresh id, stamps timestamps and persists the task.
func (s *Service) Create(ctx context.Context, f Fields) (entity.Task, error) {
	f = applyDefaults(f)
	if err := validate(f); err != nil {
		return entity.Task{}, err
	}
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return entity.Task{}, err
	}
	now := time.Now().UTC()
	t := entity.Task{
		ID:          utilities.NewKSUID(),
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Category:    f.Category,
		Column:      f.Column,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     f.DueDate,
	}
	if err := s.saveAll(ctx, append(tasks, t)); err != nil {
		return entity.Task{}, err
	}
	return t, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id string) (entity.Task, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return entity.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return entity.Task{}, ErrNotFound
}

// List returns tasks matching the filter, ordered by creation time
// ascending with ties broken by id.
func (s *Service) List(ctx context.Context, f Filter) ([]entity.Task, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Column != "" && t.Column != f.Column {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out)
	return out, nil
}

func sortTasks(tasks []entity.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// Update replaces all caller-owned fields; id and created_at are kept,
// updated_at is stamped. Omitted priority and column take the same
// defaults as Create.
func (s *Service) Update(ctx context.Context, id string, f Fields) (entity.Task, error) {
	f = applyDefaults(f)
	if err := validate(f); err != nil {
		return entity.Task{}, err
	}
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return entity.Task{}, err
	}
	for i, t := range tasks {
		if t.ID != id {
			continue
		}
		t.Title = f.Title
		t.Description = f.Description
		t.Priority = f.Priority
		t.Category = f.Category
		t.Column = f.Column
		t.DueDate = f.DueDate
		t.UpdatedAt = time.Now().UTC()
		tasks[i] = t
		if err := s.saveAll(ctx, tasks); err != nil {
			return entity.Task{}, err
		}
		return t, nil
	}
	return entity.Task{}, ErrNotFound
}

// Move sets only the column. Moving a task to its current column is a
// no-op success.
func (s *Service) Move(ctx context.Context, id, column string) (entity.Task, error) {
	if !entity.ValidColumn(column) {
		return entity.Task{}, fmt.Errorf("%w: invalid column %q", ErrValidation, column)
	}
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return entity.Task{}, err
	}
	for i, t := range tasks {
		if t.ID != id {
			continue
		}
		t.Column = column
		t.UpdatedAt = time.Now().UTC()
		tasks[i] = t
		if err := s.saveAll(ctx, tasks); err != nil {
			return entity.Task{}, err
		}
		return t, nil
	}
	return entity.Task{}, ErrNotFound
}

// Delete removes a task by id. Irreversible.
func (s *Service) Delete(ctx context.Context, id string) error {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return ErrNotFound
	}
	return s.saveAll(ctx, kept)
}

// Board partitions all tasks by column. All five columns are always
// present as keys, each holding its tasks in List order.
func (s *Service) Board(ctx context.Context) (map[string][]entity.Task, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	board := make(map[string][]entity.Task, len(entity.Columns()))
	for _, col := range entity.Columns() {
		board[col] = []entity.Task{}
	}
	for _, t := range tasks {
		if _, ok := board[t.Column]; ok {
			board[t.Column] = append(board[t.Column], t)
		}
	}
	return board, nil
}

// CategoriesInUse returns the distinct non-empty category values across
// all current tasks, sorted. Derived on each call, never stored.
func (s *Service) CategoriesInUse(ctx context.Context) ([]string, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if t.Category != "" {
			seen[t.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
