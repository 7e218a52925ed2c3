package ports

import (
	"context"
	"errors"

	"taiga-hours/internal/domain"
)

var (
	// ErrNotFound is returned by adapters when the remote resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the remote service rejects credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// TaigaClient defines the Taiga API calls the use cases need.
type TaigaClient interface {
	Login(ctx context.Context, username, password string) (domain.User, error)
	Me(ctx context.Context) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListTasks(ctx context.Context, assignedTo int64) ([]domain.Task, error)
	ListTaskAttributes(ctx context.Context, projectID int64) ([]domain.CustomAttribute, error)
	TaskAttributeValues(ctx context.Context, taskID int64) (domain.AttributeValues, error)
}

// GroupDirectory looks up the study group of a user by email.
// ok is false when the group is unknown for any reason.
type GroupDirectory interface {
	Group(ctx context.Context, email string) (group string, ok bool)
}

// ReportStore persists batch results as flat files.
type ReportStore interface {
	Exists() (bool, error)
	LoadUsers() ([]domain.UserInfo, error)
	SaveUsers(users []domain.UserInfo) error
	SaveColumns(users []domain.UserInfo) error
}

// Sink receives batch results and mirrors them to a target system.
type Sink interface {
	SyncUserHours(ctx context.Context, users []domain.UserInfo) error
}
