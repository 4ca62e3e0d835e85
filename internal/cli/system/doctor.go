package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitchain/internal/backup"
	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/storage"
	"github.com/julianstephens/habitchain/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	needsDB bool
	warning bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Account integrity", run: checkAccounts, needsDB: true},
	{name: "Habit integrity", run: checkHabits, needsDB: true},
	{name: "Completion integrity", run: checkCompletions, needsDB: true},
	{name: "Session", run: checkSession, needsDB: true},
	{name: "Clock/timezone", run: checkClock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		// JSON stores carry no schema version
		return nil
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habitchain migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.BackupsSupported() {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'habitchain backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	tz, err := ctx.Store.GetSetting(constants.SettingTimezone)
	if err != nil {
		return fmt.Errorf("timezone setting missing: %w", err)
	}
	if !utils.ValidateTimezone(tz) {
		return fmt.Errorf("timezone setting %q is not a valid IANA timezone", tz)
	}
	return nil
}

func checkAccounts(ctx *cli.Context) error {
	accounts, err := ctx.Store.GetAllAccounts()
	if err != nil {
		return fmt.Errorf("failed to get accounts: %w", err)
	}
	ids := make(map[string]bool, len(accounts))
	emails := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if ids[a.ID] {
			return fmt.Errorf("duplicate account ID found: %s", a.ID)
		}
		if emails[a.Email] {
			return fmt.Errorf("duplicate account email found: %s", a.Email)
		}
		if a.PasswordHash == "" {
			return fmt.Errorf("account %s has no password hash", a.ID)
		}
		ids[a.ID] = true
		emails[a.Email] = true
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	accounts, err := ctx.Store.GetAllAccounts()
	if err != nil {
		return fmt.Errorf("failed to get accounts: %w", err)
	}
	owners := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		owners[a.ID] = true
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	for _, h := range habits {
		if !owners[h.OwnerID] {
			return fmt.Errorf("habit %s references missing owner %s", h.ID, h.OwnerID)
		}
		if h.Streak < 0 || h.Points < 0 {
			return fmt.Errorf("habit %s has negative streak or points", h.ID)
		}
		if h.WeekProgress < 0 || h.WeekProgress > 100 {
			return fmt.Errorf("habit %s has week progress %d outside 0-100", h.ID, h.WeekProgress)
		}
		if h.CreatedAt.IsZero() {
			return fmt.Errorf("habit %s has no creation timestamp", h.ID)
		}
	}
	return nil
}

func checkCompletions(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}

	completions, err := ctx.Store.GetAllCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	seen := make(map[string]bool, len(completions))
	orphaned := 0
	for _, c := range completions {
		if !known[c.HabitID] {
			orphaned++
		}
		if _, err := time.Parse(constants.DateFormat, c.Day); err != nil {
			return fmt.Errorf("completion %s has invalid day %q", c.ID, c.Day)
		}
		key := c.HabitID + "/" + c.Day
		if seen[key] {
			return fmt.Errorf("habit %s has more than one completion on %s", c.HabitID, c.Day)
		}
		seen[key] = true
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d orphaned completions (referencing non-existent habits)", orphaned)
	}
	return nil
}

func checkSession(ctx *cli.Context) error {
	sess, err := ctx.Store.GetSession()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}
	if _, err := ctx.Store.GetAccount(sess.ID); err != nil {
		return fmt.Errorf("session refers to missing account %s (it will be cleared on next start)", sess.ID)
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
