package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitchain/internal/app"
	"github.com/julianstephens/habitchain/internal/backup"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/storage"
)

type Context struct {
	Store   storage.Provider
	Options app.Options
	Out     io.Writer

	core *app.App
}

func NewContext(store storage.Provider, opts app.Options) *Context {
	return &Context{
		Store:   store,
		Options: opts,
		Out:     os.Stdout,
	}
}

// Core returns the app over the loaded store, restoring the persisted
// session on first use
func (c *Context) Core() (*app.App, error) {
	if c.core != nil {
		return c.core, nil
	}
	a, err := app.New(c.Store, c.Options)
	if err != nil {
		return nil, err
	}
	if _, err := a.Restore(); err != nil {
		return nil, err
	}
	c.core = a
	return a, nil
}

// Reset drops the cached app after the store was reinitialized or replaced
func (c *Context) Reset() {
	c.core = nil
}

// RequireUser returns the app and the logged-in profile
func (c *Context) RequireUser() (*app.App, models.Profile, error) {
	a, err := c.Core()
	if err != nil {
		return nil, models.Profile{}, err
	}
	user, err := a.RequireUser()
	if err != nil {
		return nil, models.Profile{}, err
	}
	return a, user, nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// BackupsSupported reports whether the store is a local file that can be snapshotted
func (c *Context) BackupsSupported() bool {
	return storage.KindOf(c.Store.GetConfigPath()) != storage.KindPostgres
}

// PerformAutomaticBackup creates a backup and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if !c.BackupsSupported() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ErrNoTerminal is returned when a prompt is needed but stdin is not a terminal
var ErrNoTerminal = errors.New("input required but stdin is not a terminal")

// Interactive reports whether prompts can be shown on stdin
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptPassword asks for a password with masked input
func PromptPassword(title string) (string, error) {
	if !Interactive() {
		return "", fmt.Errorf("%w: pass --password or set HABITCHAIN_PASSWORD", ErrNoTerminal)
	}
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", err
	}
	return password, nil
}

type userError struct{ err error }

func (e *userError) Error() string { return apperrors.Message(e.err) }
func (e *userError) Unwrap() error { return e.err }

// UserError keeps err matchable with errors.Is but prints its user-facing message
func UserError(err error) error {
	if err == nil {
		return nil
	}
	return &userError{err: err}
}
