package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"taiga-hours/internal/adapter/chat"
	"taiga-hours/internal/adapter/filestore"
	msql "taiga-hours/internal/adapter/mysql"
	tg "taiga-hours/internal/adapter/taiga"
	"taiga-hours/internal/config"
	"taiga-hours/internal/domain"
	"taiga-hours/internal/migrate"
	"taiga-hours/internal/ports"
	"taiga-hours/internal/shell"
	"taiga-hours/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log    *slog.Logger
	cfg    config.Config
	taiga  ports.TaigaClient
	groups ports.GroupDirectory
	hours  *usecase.HoursUseCase
}

func New(log *slog.Logger, cfg config.Config) *App {
	taigaClient := tg.NewClient(cfg.Taiga.BaseURL, cfg.Taiga.HTTPTimeout, log)
	chatClient := chat.NewClient(cfg.Chat.BaseURL, cfg.Chat.BasicAuth, cfg.Taiga.HTTPTimeout, log)
	return newApp(log, cfg, taigaClient, chatClient)
}

func newApp(log *slog.Logger, cfg config.Config, taiga ports.TaigaClient, groups ports.GroupDirectory) *App {
	labor := &usecase.LaborResolver{Log: log, Taiga: taiga, AttributeName: cfg.Taiga.LaborAttribute}
	return &App{
		log:    log,
		cfg:    cfg,
		taiga:  taiga,
		groups: groups,
		hours:  &usecase.HoursUseCase{Log: log, Taiga: taiga, Labor: labor, Concurrency: cfg.Taiga.Concurrency},
	}
}

func (a *App) authenticator(out io.Writer) *usecase.Authenticator {
	return &usecase.Authenticator{
		Log:              a.log,
		Taiga:            a.taiga,
		FallbackLogin:    a.cfg.Taiga.Login,
		FallbackPassword: a.cfg.Taiga.Password,
		Out:              out,
	}
}

// RunShell runs the interactive shell on in/out. readPassword may be nil.
func (a *App) RunShell(ctx context.Context, in io.Reader, out io.Writer, readPassword func() (string, error)) error {
	sh := &shell.Shell{
		Log:          a.log,
		In:           bufio.NewReader(in),
		Out:          out,
		Auth:         a.authenticator(out),
		Hours:        a.hours,
		ReadPassword: readPassword,
	}
	return sh.Run(ctx)
}

// RunBatch collects hours for emails into dir. The MySQL mirror is opened
// only for a fresh collection and only when MYSQL_DSN is set.
func (a *App) RunBatch(ctx context.Context, emails []string, dir string, out io.Writer) ([]domain.UserInfo, error) {
	store := filestore.New(dir, a.log)
	uc := &usecase.BatchUseCase{
		Log:    a.log,
		Auth:   a.authenticator(out),
		Hours:  a.hours,
		Groups: a.groups,
		Store:  store,
	}

	exists, err := store.Exists()
	if err != nil {
		return nil, err
	}
	if !exists && len(emails) > 0 && a.cfg.MySQL.DSN != "" {
		if err := migrate.Run(ctx, a.cfg.MySQL.DSN, a.log); err != nil {
			return nil, err
		}
		sink, err := msql.NewClient(ctx, a.cfg.MySQL.DSN, a.log)
		if err != nil {
			return nil, err
		}
		defer sink.Close()
		uc.Sink = sink
	}
	return uc.Run(ctx, emails)
}

// LogIn authenticates with the configured credentials, for non-interactive use.
func (a *App) LogIn(ctx context.Context, out io.Writer) (*usecase.Session, error) {
	return a.authenticator(out).LogIn(ctx, "", "")
}
