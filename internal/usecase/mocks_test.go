package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTaiga is an in-memory ports.TaigaClient. Values are keyed by task id;
// attrs by project id. Errors injected per task or project are returned as is.
type fakeTaiga struct {
	mu    sync.Mutex
	calls int

	password  string
	me        domain.User
	users     []domain.User
	tasks     map[int64][]domain.Task
	tasksErr  error
	attrs     map[int64][]domain.CustomAttribute
	attrsErr  map[int64]error
	values    map[int64]map[string]json.RawMessage
	valuesErr map[int64]error

	loggedInAs string
}

func (f *fakeTaiga) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeTaiga) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTaiga) Login(ctx context.Context, username, password string) (domain.User, error) {
	f.count()
	if password != f.password {
		return domain.User{}, ports.ErrUnauthorized
	}
	f.mu.Lock()
	f.loggedInAs = username
	f.mu.Unlock()
	return domain.User{Username: username}, nil
}

func (f *fakeTaiga) Me(ctx context.Context) (domain.User, error) {
	f.count()
	if f.me.ID == 0 {
		return domain.User{}, ports.ErrNotFound
	}
	return f.me, nil
}

func (f *fakeTaiga) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.count()
	return f.users, nil
}

func (f *fakeTaiga) ListTasks(ctx context.Context, assignedTo int64) ([]domain.Task, error) {
	f.count()
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return f.tasks[assignedTo], nil
}

func (f *fakeTaiga) ListTaskAttributes(ctx context.Context, projectID int64) ([]domain.CustomAttribute, error) {
	f.count()
	if err := f.attrsErr[projectID]; err != nil {
		return nil, err
	}
	return f.attrs[projectID], nil
}

func (f *fakeTaiga) TaskAttributeValues(ctx context.Context, taskID int64) (domain.AttributeValues, error) {
	f.count()
	if err := ctx.Err(); err != nil {
		return domain.AttributeValues{}, err
	}
	if err := f.valuesErr[taskID]; err != nil {
		return domain.AttributeValues{}, err
	}
	v, ok := f.values[taskID]
	if !ok {
		return domain.AttributeValues{}, ports.ErrNotFound
	}
	return domain.AttributeValues{TaskID: taskID, Values: v}, nil
}

const laborName = "Трудозатраты"

// labor builds a value map holding hours under attribute id 31.
func labor(v string) map[string]json.RawMessage {
	return map[string]json.RawMessage{"31": json.RawMessage(v)}
}

func laborAttrs() []domain.CustomAttribute {
	return []domain.CustomAttribute{
		{ID: 30, ProjectID: 10, Name: "Приоритет"},
		{ID: 31, ProjectID: 10, Name: laborName},
	}
}

func newResolver(f *fakeTaiga) *LaborResolver {
	return &LaborResolver{Log: discardLogger(), Taiga: f, AttributeName: laborName}
}

func newHours(f *fakeTaiga, concurrency int) *HoursUseCase {
	return &HoursUseCase{Log: discardLogger(), Taiga: f, Labor: newResolver(f), Concurrency: concurrency}
}
