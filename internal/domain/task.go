package domain

import "encoding/json"

// Task represents a Taiga task in the domain layer.
type Task struct {
	ID         int64
	ProjectID  int64
	Closed     bool
	Subject    string
	AssignedTo *int64
}

// CustomAttribute is a project-scoped custom task attribute definition.
type CustomAttribute struct {
	ID        int64
	ProjectID int64
	Name      string
}

// AttributeValues holds the custom attribute values recorded on one task,
// keyed by attribute id in decimal text.
type AttributeValues struct {
	TaskID int64
	Values map[string]json.RawMessage
}

// User is a Taiga account.
type User struct {
	ID       int64
	Username string
	FullName string
	Email    string
}
