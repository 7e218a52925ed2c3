package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"taiga-hours/internal/domain"
)

// Client implements ports.Sink by writing batch results to a MySQL table.
type Client struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewClient opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db, log: log, now: time.Now}, nil
}

// SyncUserHours upserts batch records keyed by email.
func (c *Client) SyncUserHours(ctx context.Context, users []domain.UserInfo) error {
	if len(users) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO taiga_user_hours
  (email, grp, hours, updated_at)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  grp=VALUES(grp),
  hours=VALUES(hours),
  updated_at=VALUES(updated_at);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	at := c.now().UTC()
	written := 0
	for _, u := range users {
		// Records without an email have no key to upsert on.
		if u.Email == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, u.Email, u.Group, u.Hours, at); err != nil {
			tx.Rollback()
			return err
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info("mysql sink upserted user hours", slog.Int("count", written))
	return nil
}

// Close releases the connection pool once the batch has been mirrored.
func (c *Client) Close() error { return c.db.Close() }
