package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitchain/internal/cli"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/storage"
	"github.com/julianstephens/habitchain/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing database (after backing it up) before initialization."`
	Source string `help:"Database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Reset()
	ctx.Printf("Initialized habitchain storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if !ctx.BackupsSupported() {
		return errors.New("--force is only supported for file-based storage")
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		absSource, err := filepath.Abs(storage.ExpandPath(c.Source))
		if err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	ctx.PerformAutomaticBackup()
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// copyFrom loads every collection except the session from source into the
// current store. Records that already exist are skipped.
func (c *InitCmd) copyFrom(ctx *cli.Context, source string) error {
	if storage.KindOf(source) == storage.KindPostgres {
		if valid, err := postgres.ValidateConnString(source); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
	}

	src := storage.New(source)
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()
	dst := ctx.Store

	ctx.Println("  Copying settings...")
	settings, err := src.GetAllSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	for k, v := range settings {
		if err := dst.SetSetting(k, v); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", k, err)
		}
	}

	ctx.Println("  Copying accounts...")
	accounts, err := src.GetAllAccounts()
	if err != nil {
		return fmt.Errorf("failed to get accounts from source: %w", err)
	}
	copied := 0
	for _, a := range accounts {
		if err := dst.AddAccount(a); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateEmail) {
				continue
			}
			return fmt.Errorf("failed to add account %s: %w", a.ID, err)
		}
		copied++
	}
	ctx.Printf("    Copied %d of %d accounts\n", copied, len(accounts))

	ctx.Println("  Copying habits...")
	habits, err := src.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	byID := make(map[string]int, len(habits))
	for i, h := range habits {
		if err := dst.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
		byID[h.ID] = i
	}
	ctx.Printf("    Copied %d habits\n", len(habits))

	ctx.Println("  Copying habit completions...")
	completions, err := src.GetAllCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions from source: %w", err)
	}
	copied = 0
	for _, comp := range completions {
		i, ok := byID[comp.HabitID]
		if !ok {
			continue
		}
		if err := dst.CompleteHabit(habits[i], comp); err != nil {
			if apperrors.IsSoft(err) {
				continue
			}
			return fmt.Errorf("failed to add completion %s: %w", comp.ID, err)
		}
		copied++
	}
	ctx.Printf("    Copied %d habit completions\n", copied)

	return nil
}
