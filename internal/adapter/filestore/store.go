package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taiga-hours/internal/domain"
)

const (
	UsersFile  = "users.txt"
	GroupsFile = "groups.txt"
	HoursFile  = "hours.txt"
)

// Store implements ports.ReportStore with flat files in one directory.
type Store struct {
	dir string
	log *slog.Logger
}

func New(dir string, log *slog.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, log: log}
}

// Exists reports whether users.txt has already been written.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path(UsersFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// LoadUsers reads the JSON array stored in users.txt.
// Null entries are kept as zero records so that line numbers in the
// derived column files stay aligned with the array.
func (s *Store) LoadUsers() ([]domain.UserInfo, error) {
	b, err := os.ReadFile(s.path(UsersFile))
	if err != nil {
		return nil, err
	}
	var raw []*domain.UserInfo
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", UsersFile, err)
	}
	out := make([]domain.UserInfo, 0, len(raw))
	for _, u := range raw {
		if u == nil {
			out = append(out, domain.UserInfo{})
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

// SaveUsers writes users.txt as a JSON array.
func (s *Store) SaveUsers(users []domain.UserInfo) error {
	if users == nil {
		users = []domain.UserInfo{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := s.write(UsersFile, b); err != nil {
		return err
	}
	s.log.Info("users written", slog.String("file", s.path(UsersFile)), slog.Int("count", len(users)))
	return nil
}

// SaveColumns writes groups.txt and hours.txt, one value per line.
func (s *Store) SaveColumns(users []domain.UserInfo) error {
	groups := make([]string, 0, len(users))
	hours := make([]string, 0, len(users))
	for _, u := range users {
		groups = append(groups, u.Group)
		hours = append(hours, strconv.FormatFloat(u.Hours, 'f', -1, 64))
	}
	if err := s.write(GroupsFile, []byte(strings.Join(groups, "\n"))); err != nil {
		return err
	}
	if err := s.write(HoursFile, []byte(strings.Join(hours, "\n"))); err != nil {
		return err
	}
	s.log.Info("columns written", slog.String("dir", s.dir), slog.Int("rows", len(users)))
	return nil
}

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) write(name string, b []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(name), b, 0o644)
}
