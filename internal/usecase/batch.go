package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

// ErrNoEmails is returned by a fresh batch run that has nothing to collect.
// Writing an empty users.txt would turn every later run into a regeneration.
var ErrNoEmails = errors.New("no emails to collect")

// BatchUseCase collects closed hours for a list of emails and writes them
// to a ReportStore, optionally mirroring the records to a Sink.
type BatchUseCase struct {
	Log    *slog.Logger
	Auth   *Authenticator
	Hours  *HoursUseCase
	Groups ports.GroupDirectory
	Store  ports.ReportStore
	Sink   ports.Sink // optional
}

// Run regenerates the column files from an existing users.txt without any
// network calls, or performs a fresh collection when there is none.
// Outputs are written only after every lookup has finished.
func (uc *BatchUseCase) Run(ctx context.Context, emails []string) ([]domain.UserInfo, error) {
	if uc.Store == nil {
		return nil, errors.New("usecase not initialized: missing store")
	}
	exists, err := uc.Store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		uc.Log.Info("users file present, regenerating columns only")
		users, err := uc.Store.LoadUsers()
		if err != nil {
			return nil, err
		}
		return users, uc.Store.SaveColumns(users)
	}

	if len(emails) == 0 {
		return nil, ErrNoEmails
	}
	if uc.Auth == nil || uc.Hours == nil {
		return nil, errors.New("usecase not initialized: missing dependencies")
	}
	sess, err := uc.Auth.LogIn(ctx, "", "")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	users := make([]domain.UserInfo, 0, len(emails))
	for _, raw := range emails {
		info, err := uc.userHours(ctx, sess, raw)
		if err != nil {
			return nil, err
		}
		users = append(users, info)
	}

	if err := uc.Store.SaveUsers(users); err != nil {
		return nil, err
	}
	if err := uc.Store.SaveColumns(users); err != nil {
		return nil, err
	}
	if uc.Sink != nil {
		if err := uc.Sink.SyncUserHours(ctx, users); err != nil {
			return nil, err
		}
	}
	uc.Log.Info("batch completed", slog.Int("users", len(users)), slog.Duration("elapsed", time.Since(start)))
	return users, nil
}

// userHours never fails for a missing user, group or hours; those count as
// empty. Only cancellation aborts the batch.
func (uc *BatchUseCase) userHours(ctx context.Context, sess *Session, raw string) (domain.UserInfo, error) {
	email := NormalizeEmail(raw)
	uc.Log.Info("collecting", slog.String("email", email))
	info := domain.UserInfo{Email: email}

	if uc.Groups != nil {
		if g, ok := uc.Groups.Group(ctx, email); ok {
			info.Group = g
		}
	}

	id, ok, err := ResolveUserID(ctx, sess.Taiga, UsernameFromEmail(email))
	if err != nil {
		if ctx.Err() != nil {
			return info, ctx.Err()
		}
		uc.Log.Warn("user lookup failed", slog.String("email", email), slog.String("error", err.Error()))
		return info, nil
	}
	if !ok {
		uc.Log.Info("no taiga user", slog.String("email", email))
		return info, nil
	}

	hours, err := uc.Hours.Aggregate(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return info, ctx.Err()
		}
		uc.Log.Warn("hours lookup failed", slog.String("email", email), slog.String("error", err.Error()))
		return info, nil
	}
	info.Hours = hours.ClosedHours
	return info, nil
}

// NormalizeEmail maps student addresses on edu.hse.ru to miem.hse.ru.
func NormalizeEmail(email string) string {
	return strings.Replace(strings.TrimSpace(email), "edu.hse.ru", "miem.hse.ru", 1)
}

// UsernameFromEmail returns the Taiga username for a MIEM email: its local part.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
