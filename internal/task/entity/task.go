package entity

import (
	"slices"
	"time"
)

// Workflow columns, in board order.
const (
	ColumnRecurring  = "Recurring"
	ColumnBacklog    = "Backlog"
	ColumnInProgress = "In Progress"
	ColumnReview     = "Review"
	ColumnDone       = "Done"
)

// Priority levels.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var columns = []string{ColumnRecurring, ColumnBacklog, ColumnInProgress, ColumnReview, ColumnDone}

var priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Columns returns the five fixed workflow columns in board order.
func Columns() []string { return slices.Clone(columns) }

// Priorities returns the three fixed priority levels.
func Priorities() []string { return slices.Clone(priorities) }

func ValidColumn(c string) bool   { return slices.Contains(columns, c) }
func ValidPriority(p string) bool { return slices.Contains(priorities, p) }

// Task is a card on the board. Column transitions are unrestricted;
// a task may move from any column to any column.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category,omitempty"`
	Column      string     `json:"column"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}
