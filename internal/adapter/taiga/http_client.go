package taiga

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

// Client implements ports.TaigaClient using the Taiga REST API v1.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://track.miem.hse.ru"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Login authenticates with username/password and keeps the auth token for
// subsequent calls. Rejected credentials yield ports.ErrUnauthorized.
// Taiga: POST /api/v1/auth {"type":"normal", ...}
func (c *Client) Login(ctx context.Context, username, password string) (domain.User, error) {
	body, err := json.Marshal(map[string]string{
		"type":     "normal",
		"username": username,
		"password": password,
	})
	if err != nil {
		return domain.User{}, err
	}
	var raw rawAuth
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth", nil, bytes.NewReader(body), &raw); err != nil {
		// Taiga answers bad credentials with 400 rather than 401.
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusBadRequest || se.code == http.StatusUnauthorized) {
			return domain.User{}, fmt.Errorf("taiga login %q: %w", username, ports.ErrUnauthorized)
		}
		return domain.User{}, err
	}
	if raw.AuthToken == "" {
		return domain.User{}, fmt.Errorf("taiga login %q: %w", username, ports.ErrUnauthorized)
	}
	c.mu.Lock()
	c.token = raw.AuthToken
	c.mu.Unlock()
	c.log.Debug("taiga login ok", slog.String("username", raw.Username), slog.Int64("id", raw.ID))
	return raw.user(), nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var raw rawUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, nil, &raw); err != nil {
		return domain.User{}, err
	}
	return raw.user(), nil
}

// ListUsers returns every user visible to the session in one call.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var raw []rawUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(raw))
	for _, u := range raw {
		out = append(out, u.user())
	}
	return out, nil
}

// ListTasks returns the tasks assigned to a user.
// Taiga: GET /api/v1/tasks?assigned_to=ID
func (c *Client) ListTasks(ctx context.Context, assignedTo int64) ([]domain.Task, error) {
	q := url.Values{}
	q.Set("assigned_to", strconv.FormatInt(assignedTo, 10))
	var raw []rawTask
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", q, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(raw))
	for _, r := range raw {
		var assigned *int64
		if r.AssignedTo != nil {
			a := *r.AssignedTo
			assigned = &a
		}
		out = append(out, domain.Task{
			ID:         r.ID,
			ProjectID:  r.Project,
			Closed:     r.IsClosed,
			Subject:    r.Subject,
			AssignedTo: assigned,
		})
	}
	return out, nil
}

// ListTaskAttributes returns the custom task attribute definitions of a project.
// Taiga: GET /api/v1/task-custom-attributes?project=ID
func (c *Client) ListTaskAttributes(ctx context.Context, projectID int64) ([]domain.CustomAttribute, error) {
	q := url.Values{}
	q.Set("project", strconv.FormatInt(projectID, 10))
	var raw []rawAttribute
	if err := c.do(ctx, http.MethodGet, "/api/v1/task-custom-attributes", q, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.CustomAttribute, 0, len(raw))
	for _, a := range raw {
		out = append(out, domain.CustomAttribute{ID: a.ID, ProjectID: a.Project, Name: a.Name})
	}
	return out, nil
}

// TaskAttributeValues returns the custom attribute values recorded on a task.
// A task without a value record yields ports.ErrNotFound.
// Taiga: GET /api/v1/tasks/custom-attributes-values/ID
func (c *Client) TaskAttributeValues(ctx context.Context, taskID int64) (domain.AttributeValues, error) {
	var raw rawAttributeValues
	path := "/api/v1/tasks/custom-attributes-values/" + strconv.FormatInt(taskID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return domain.AttributeValues{}, err
	}
	values := raw.AttributesValues
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	return domain.AttributeValues{TaskID: taskID, Values: values}, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	// Return whole lists instead of the first page.
	req.Header.Set("x-disable-pagination", "True")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	c.log.Debug("taiga request", slog.String("method", method), slog.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("taiga %s: %w", path, ports.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: string(b)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("taiga: unexpected status %d: %s", e.code, e.body)
}

// raw* types mirror the JSON from Taiga v1.
type rawUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (r rawUser) user() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, FullName: r.FullName, Email: r.Email}
}

type rawAuth struct {
	rawUser
	AuthToken string `json:"auth_token"`
}

type rawTask struct {
	ID         int64  `json:"id"`
	Project    int64  `json:"project"`
	IsClosed   bool   `json:"is_closed"`
	Subject    string `json:"subject"`
	AssignedTo *int64 `json:"assigned_to"`
}

type rawAttribute struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Project int64  `json:"project"`
}

type rawAttributeValues struct {
	AttributesValues map[string]json.RawMessage `json:"attributes_values"`
	Task             int64                      `json:"task"`
	Version          int                        `json:"version"`
}
