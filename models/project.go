package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project groups tasks under an owner. Tasks carries the ids of all child
// tasks; every child task holds the project id back. Both sides are kept in
// sync by the task service.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Priority    string               `bson:"priority" json:"priority"`
	Deadline    time.Time            `bson:"deadline,omitempty" json:"deadline"`
	CreatedBy   string               `bson:"createdBy" json:"createdBy"`
	Assignee    string               `bson:"assignee,omitempty" json:"assignee"`
	// User is a legacy owner field kept for the old list endpoint. Project
	// creation never writes it.
	User  string               `bson:"user,omitempty" json:"user,omitempty"`
	Files []string             `bson:"files" json:"files"`
	Tasks []primitive.ObjectID `bson:"tasks" json:"tasks"`
}

// EnsureDefaults replaces nil slices so JSON output is [] instead of null.
func (p *Project) EnsureDefaults() {
	if p.Files == nil {
		p.Files = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []primitive.ObjectID{}
	}
}
