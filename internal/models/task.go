package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority orders tasks on the board; urgente is highest.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "baixa"
	PriorityMedium TaskPriority = "média"
	PriorityHigh   TaskPriority = "alta"
	PriorityUrgent TaskPriority = "urgente"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskStatus is a kanban column.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task is a unit of work on an organization's board.
// CompletedAt is set exactly when Status is TaskDone.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	DueDate        time.Time    `json:"dueDate"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	OrganizationID uuid.UUID    `json:"organizationId"`
	AssigneeID     *uuid.UUID   `json:"assigneeId"`
	Assignee       *UserSummary `json:"assignee"`
	CreatedByID    *uuid.UUID   `json:"createdById"`
	CreatedBy      *UserSummary `json:"createdBy"`
	CompletedAt    *time.Time   `json:"completedAt"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// SetStatus moves the task to status and keeps CompletedAt consistent:
// entering done stamps now (unless already stamped), leaving done clears it.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	t.Status = status
	switch {
	case status == TaskDone && t.CompletedAt == nil:
		ts := now
		t.CompletedAt = &ts
	case status != TaskDone && t.CompletedAt != nil:
		t.CompletedAt = nil
	}
}
