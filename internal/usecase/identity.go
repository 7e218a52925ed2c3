package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taiga-hours/internal/ports"
)

// ErrLoginFailed means the service rejected the credentials or none were given.
var ErrLoginFailed = errors.New("login failed")

// Session is an authenticated Taiga client together with the login it used.
type Session struct {
	Taiga    ports.TaigaClient
	Username string
}

// Authenticator logs into Taiga, falling back to configured credentials
// when the given ones are blank.
type Authenticator struct {
	Log              *slog.Logger
	Taiga            ports.TaigaClient
	FallbackLogin    string
	FallbackPassword string

	// Out receives the "User ... logged in." confirmation. Nil disables it.
	Out io.Writer
}

// LogIn authenticates and returns a Session. Rejected or missing credentials
// yield ErrLoginFailed; transport failures are returned as is.
func (a *Authenticator) LogIn(ctx context.Context, username, password string) (*Session, error) {
	login := strings.TrimSpace(username)
	if login == "" {
		login = a.FallbackLogin
	}
	if strings.TrimSpace(password) == "" {
		password = a.FallbackPassword
	}

	if login == "" || password == "" {
		a.printf("User %s is not logged in.\n", login)
		return nil, ErrLoginFailed
	}

	_, err := a.Taiga.Login(ctx, login, password)
	if errors.Is(err, ports.ErrUnauthorized) {
		a.printf("User %s is not logged in.\n", login)
		a.Log.Warn("taiga rejected credentials", slog.String("login", login))
		return nil, ErrLoginFailed
	}
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", login, err)
	}
	a.printf("User %s logged in.\n", login)
	return &Session{Taiga: a.Taiga, Username: login}, nil
}

func (a *Authenticator) printf(format string, args ...any) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, format, args...)
	}
}

// MyID returns the id of the logged-in user. ok is false when the service
// has no such user.
func (s *Session) MyID(ctx context.Context) (int64, bool, error) {
	me, err := s.Taiga.Me(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return me.ID, me.ID != 0, nil
}

// ResolveUserID scans the user list for the first user whose username equals
// username exactly.
func ResolveUserID(ctx context.Context, taiga ports.TaigaClient, username string) (int64, bool, error) {
	users, err := taiga.ListUsers(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.Username == username {
			return u.ID, true, nil
		}
	}
	return 0, false, nil
}
