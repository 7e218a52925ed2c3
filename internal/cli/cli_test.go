package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taiga-hours/internal/usecase"
)

func TestReadEmails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	data := "a@miem.hse.ru\n\n  b@edu.hse.ru  \n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := readEmails(path)
	if err != nil {
		t.Fatalf("readEmails: %v", err)
	}
	if len(got) != 2 || got[0] != "a@miem.hse.ru" || got[1] != "b@edu.hse.ru" {
		t.Fatalf("emails = %q", got)
	}
}

func TestReadEmails_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	if err := os.WriteFile(path, []byte("\n \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readEmails(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestBatchCommand_RegeneratesFromUsersFile(t *testing.T) {
	dir := t.TempDir()
	users := `[{"email":"a@miem.hse.ru","group":"БИВ-201","hours":7},{"email":"b@miem.hse.ru","group":"","hours":0}]`
	if err := os.WriteFile(filepath.Join(dir, "users.txt"), []byte(users), 0o644); err != nil {
		t.Fatal(err)
	}
	// Unreachable Taiga: any request would fail the run.
	t.Setenv("TAIGA_URL", "http://127.0.0.1:1")
	t.Setenv("MYSQL_DSN", "")

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"batch", "--dir", dir, "a@miem.hse.ru"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("batch: %v (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "2 users written") {
		t.Errorf("stdout = %q", out.String())
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "groups.txt")); string(b) != "БИВ-201\n" {
		t.Errorf("groups.txt = %q", b)
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "hours.txt")); string(b) != "7\n0" {
		t.Errorf("hours.txt = %q", b)
	}
}

func TestBatchCommand_FreshRunRequiresEmails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TAIGA_URL", "http://127.0.0.1:1")
	t.Setenv("MYSQL_DSN", "")

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"batch", "--dir", dir})
	if err := root.ExecuteContext(context.Background()); !errors.Is(err, usecase.ErrNoEmails) {
		t.Fatalf("expected ErrNoEmails, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("users.txt should not exist: %v", err)
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"unexpected"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for positional args")
	}
}
