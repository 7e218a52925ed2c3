package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

// HoursUseCase sums the labor recorded on the tasks assigned to a user.
type HoursUseCase struct {
	Log   *slog.Logger
	Taiga ports.TaigaClient
	Labor *LaborResolver

	// Concurrency bounds the number of tasks resolved at once. Values below 1 mean 1.
	Concurrency int
}

type taskLabor struct {
	hours float64
	ok    bool
}

// Aggregate lists the tasks assigned to userID and splits their labor into
// closed and not closed sums. An error means the task list itself could not
// be fetched or ctx was cancelled; tasks whose labor cannot be read count as zero.
func (uc *HoursUseCase) Aggregate(ctx context.Context, userID int64) (domain.UserHours, error) {
	if uc.Taiga == nil || uc.Labor == nil {
		return domain.UserHours{}, errors.New("usecase not initialized: missing dependencies")
	}

	tasks, err := uc.Taiga.ListTasks(ctx, userID)
	if err != nil {
		return domain.UserHours{}, fmt.Errorf("tasks of user %d: %w", userID, err)
	}
	uc.Log.Info("fetched tasks", slog.Int64("user", userID), slog.Int("count", len(tasks)))

	labor := make([]taskLabor, len(tasks))
	limit := uc.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			h, ok, err := uc.Labor.Resolve(gctx, task)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				uc.Log.Warn("labor lookup failed, counting zero",
					slog.Int64("task", task.ID), slog.String("error", err.Error()))
				return nil
			}
			labor[i] = taskLabor{hours: h, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.UserHours{}, err
	}

	// Summed in task order so the result does not depend on scheduling.
	var out domain.UserHours
	for i, task := range tasks {
		l := labor[i]
		if !l.ok {
			continue
		}
		if task.Closed {
			out.ClosedHours += l.hours
			continue
		}
		out.NotClosedHours += l.hours
		out.NotClosedTasks = append(out.NotClosedTasks, domain.TaskHours{Subject: task.Subject, Hours: l.hours})
	}
	uc.Log.Info("aggregated hours",
		slog.Int64("user", userID),
		slog.Float64("closed", out.ClosedHours),
		slog.Float64("not_closed", out.NotClosedHours))
	return out, nil
}
