package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// groupFieldID is the custom profile field holding the study group.
const groupFieldID = "1"

// Client implements ports.GroupDirectory against the chat service REST API.
type Client struct {
	baseURL   string
	basicAuth string
	http      *http.Client
	log       *slog.Logger
}

func NewClient(baseURL, basicAuth string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		basicAuth: basicAuth,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Group returns the study group recorded in the user's chat profile.
// Every failure, including unexpected response shapes, reports ok=false.
// GET /api/v1/users/{email}?include_custom_profile_fields=true
func (c *Client) Group(ctx context.Context, email string) (string, bool) {
	u := c.baseURL + "/api/v1/users/" + url.PathEscape(email) + "?include_custom_profile_fields=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.log.Debug("chat group lookup failed", slog.String("email", email), slog.String("error", err.Error()))
		return "", false
	}
	if c.basicAuth != "" {
		req.Header.Set("Authorization", "Basic "+c.basicAuth)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("chat group lookup failed", slog.String("email", email), slog.String("error", err.Error()))
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("chat group lookup failed", slog.String("email", email), slog.Int("status", resp.StatusCode))
		return "", false
	}

	var raw rawUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.log.Debug("chat group lookup failed", slog.String("email", email), slog.String("error", err.Error()))
		return "", false
	}
	if raw.User == nil {
		return "", false
	}
	field, ok := raw.User.ProfileData[groupFieldID]
	if !ok || field.Value == nil {
		return "", false
	}
	var group string
	if err := json.Unmarshal(*field.Value, &group); err != nil || group == "" {
		return "", false
	}
	return group, true
}

type rawUserResponse struct {
	User *struct {
		ProfileData map[string]struct {
			Value *json.RawMessage `json:"value"`
		} `json:"profile_data"`
	} `json:"user"`
}
