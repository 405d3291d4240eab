package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// NormalizeStatus maps anything outside the three known statuses to "To Do".
func NormalizeStatus(status TaskStatus) TaskStatus {
	switch status {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return status
	default:
		return StatusToDo
	}
}

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Assignee    string             `bson:"assignee,omitempty" json:"assignee"`
	Status      TaskStatus         `bson:"status" json:"status"`
	DueDate     time.Time          `bson:"dueDate,omitempty" json:"dueDate"`
	Project     primitive.ObjectID `bson:"project" json:"project"`
	Favorites   []string           `bson:"favorites" json:"favorites"`
	Comments    []string           `bson:"comments" json:"comments"`
}

// EnsureDefaults replaces nil slices so JSON output is [] instead of null.
// Older documents may lack favorites or comments entirely.
func (t *Task) EnsureDefaults() {
	if t.Favorites == nil {
		t.Favorites = []string{}
	}
	if t.Comments == nil {
		t.Comments = []string{}
	}
}
