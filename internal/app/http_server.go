package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/report"
	"taiga-hours/internal/usecase"
)

// HoursResponse is the JSON body of GET /hours/:username.
type HoursResponse struct {
	Username       string             `json:"username"`
	Closed         report.Summary     `json:"closed"`
	NotClosed      report.Summary     `json:"not_closed"`
	NotClosedTasks []domain.TaskHours `json:"not_closed_tasks"`
}

// HTTPServer returns a configured http.Server that reports hours for the
// users visible to sess. Call ListenAndServe on the returned server in a
// goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string, sess *usecase.Session) *http.Server {
	srv := &http.Server{Addr: addr, Handler: a.router(sess)}
	a.log.Info("http report server configured", slog.String("addr", addr))
	return srv
}

func (a *App) router(sess *usecase.Session) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), loggingMiddleware(a.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// /hours/:username?timeout=30s
	r.GET("/hours/:username", func(c *gin.Context) {
		username := c.Param("username")
		ctx := c.Request.Context()
		if tStr := c.Query("timeout"); tStr != "" {
			if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}

		id, ok, err := usecase.ResolveUserID(ctx, sess.Taiga, username)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"status": "error", "error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "user does not exist"})
			return
		}
		hours, err := a.hours.Aggregate(ctx, id)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"status": "error", "error": err.Error()})
			return
		}
		tasks := hours.NotClosedTasks
		if tasks == nil {
			tasks = []domain.TaskHours{}
		}
		c.JSON(http.StatusOK, HoursResponse{
			Username:       username,
			Closed:         report.Summarize(hours.ClosedHours),
			NotClosed:      report.Summarize(hours.NotClosedHours),
			NotClosedTasks: tasks,
		})
	})
	return r
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("remote", c.ClientIP()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}
