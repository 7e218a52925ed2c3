// Package shell implements the interactive prompt loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"taiga-hours/internal/report"
	"taiga-hours/internal/usecase"
)

const (
	greeting   = "The program prints the time spent on all tasks in the MIEM taiga.\nFirst, log in to the Taiga."
	modePrompt = "What do you want?\n1 - Find out how many hours I have\n2 - Find out how many hours someone else has\nENTER - exit\n"

	msgLoginFailed = "Error: failed to log in."
	msgNoUser      = "Error: The user does not exist."
	msgWaiting     = "Waiting please..."
)

type state int

const (
	awaitingMode state = iota
	exit
)

type mode int

const (
	modeSelf  mode = 1
	modeOther mode = 2
)

// Shell prompts for credentials and then for lookups until the user exits.
type Shell struct {
	Log   *slog.Logger
	In    *bufio.Reader
	Out   io.Writer
	Auth  *usecase.Authenticator
	Hours *usecase.HoursUseCase

	// ReadPassword reads the password without echo. Nil reads a plain line from In.
	ReadPassword func() (string, error)
}

// Run logs in and serves lookups until the user enters anything but 1 or 2.
// A rejected login is reported to the user and is not an error.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.Out, greeting)

	login, err := s.prompt("Input your login: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password, err := s.password("Input your password: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	sess, err := s.Auth.LogIn(ctx, login, password)
	if err != nil {
		s.fail(msgLoginFailed)
		if errors.Is(err, usecase.ErrLoginFailed) {
			return nil
		}
		return err
	}

	for st := awaitingMode; st != exit; {
		st, err = s.step(ctx, sess)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) step(ctx context.Context, sess *usecase.Session) (state, error) {
	fmt.Fprint(s.Out, "\n\n\n")
	line, err := s.prompt(modePrompt)
	if err != nil && !errors.Is(err, io.EOF) {
		return exit, err
	}
	m, perr := strconv.Atoi(line)
	if perr != nil {
		return exit, nil
	}

	switch mode(m) {
	case modeSelf:
		id, ok, err := sess.MyID(ctx)
		if err != nil {
			s.Log.Error("own user lookup failed", slog.String("error", err.Error()))
		}
		if !ok {
			s.fail(msgNoUser)
			return awaitingMode, ctx.Err()
		}
		s.printHours(ctx, id, sess.Username)
	case modeOther:
		username, err := s.prompt("Input username: ")
		if err != nil && !errors.Is(err, io.EOF) {
			return exit, err
		}
		id, ok, err := usecase.ResolveUserID(ctx, sess.Taiga, username)
		if err != nil {
			s.Log.Error("user lookup failed", slog.String("username", username), slog.String("error", err.Error()))
		}
		if !ok {
			s.fail(msgNoUser)
			return awaitingMode, ctx.Err()
		}
		s.printHours(ctx, id, username)
	default:
		return exit, nil
	}
	return awaitingMode, ctx.Err()
}

func (s *Shell) printHours(ctx context.Context, id int64, username string) {
	fmt.Fprintln(s.Out, msgWaiting)
	hours, err := s.Hours.Aggregate(ctx, id)
	if err != nil {
		s.Log.Warn("hours lookup failed", slog.Int64("user", id), slog.String("error", err.Error()))
		fmt.Fprintln(s.Out, report.NoHours)
		return
	}
	fmt.Fprint(s.Out, report.Format(username, hours))
}

// prompt prints msg and reads one trimmed line. io.EOF is returned together
// with whatever was read before it.
func (s *Shell) prompt(msg string) (string, error) {
	color.New(color.Bold).Fprint(s.Out, msg)
	line, err := s.In.ReadString('\n')
	return strings.TrimSpace(line), err
}

func (s *Shell) password(msg string) (string, error) {
	if s.ReadPassword == nil {
		return s.prompt(msg)
	}
	color.New(color.Bold).Fprint(s.Out, msg)
	pw, err := s.ReadPassword()
	fmt.Fprintln(s.Out)
	return pw, err
}

func (s *Shell) fail(msg string) {
	color.New(color.FgRed).Fprintln(s.Out, msg)
}

// TerminalPassword returns a password reader for f when it is a terminal,
// or nil otherwise.
func TerminalPassword(f *os.File) func() (string, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
}
