// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

// LaborAttributeID is the id of the labor attribute in every project of FakeTaiga.
const LaborAttributeID = 31

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeTaiga is an in-memory ports.TaigaClient. Every project exposes one
// labor attribute named LaborName; Labor maps task ids to recorded hours.
type FakeTaiga struct {
	Username  string
	Password  string
	LaborName string
	Users     []domain.User
	Tasks     map[int64][]domain.Task
	Labor     map[int64]float64

	mu       sync.Mutex
	loggedIn string
	requests int
}

func (f *FakeTaiga) hit() {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
}

// Requests returns how many API calls were made.
func (f *FakeTaiga) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeTaiga) Login(ctx context.Context, username, password string) (domain.User, error) {
	f.hit()
	if username != f.Username || password != f.Password {
		return domain.User{}, ports.ErrUnauthorized
	}
	f.mu.Lock()
	f.loggedIn = username
	f.mu.Unlock()
	return domain.User{Username: username}, nil
}

func (f *FakeTaiga) Me(ctx context.Context) (domain.User, error) {
	f.hit()
	f.mu.Lock()
	name := f.loggedIn
	f.mu.Unlock()
	for _, u := range f.Users {
		if u.Username == name {
			return u, nil
		}
	}
	return domain.User{}, ports.ErrNotFound
}

func (f *FakeTaiga) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.hit()
	return f.Users, nil
}

func (f *FakeTaiga) ListTasks(ctx context.Context, assignedTo int64) ([]domain.Task, error) {
	f.hit()
	return f.Tasks[assignedTo], nil
}

func (f *FakeTaiga) ListTaskAttributes(ctx context.Context, projectID int64) ([]domain.CustomAttribute, error) {
	f.hit()
	return []domain.CustomAttribute{{ID: LaborAttributeID, ProjectID: projectID, Name: f.LaborName}}, nil
}

func (f *FakeTaiga) TaskAttributeValues(ctx context.Context, taskID int64) (domain.AttributeValues, error) {
	f.hit()
	h, ok := f.Labor[taskID]
	if !ok {
		return domain.AttributeValues{}, ports.ErrNotFound
	}
	v := json.RawMessage(strconv.Quote(strconv.FormatFloat(h, 'f', -1, 64)))
	return domain.AttributeValues{
		TaskID: taskID,
		Values: map[string]json.RawMessage{strconv.Itoa(LaborAttributeID): v},
	}, nil
}
