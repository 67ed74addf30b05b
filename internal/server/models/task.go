package models

import "time"

// Task is a single to-do item. OwnerID is set once at creation and never
// changes; every read or mutation is scoped to it.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     string    `json:"owner_id"`
}

// TaskPatch is a partial update. A nil field means "leave unchanged"; a
// non-nil field carries the new value, which may equal the stored one.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// ApplyPatch merges the supplied fields of p into t, leaving omitted fields
// at their stored values.
func (t *Task) ApplyPatch(p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
