package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump habit data and its completions as JSON."`
	DumpAccount  *DebugDumpAccountCmd  `cmd:"" help:"Dump an account profile as JSON."`
	DumpSession  *DebugDumpSessionCmd  `cmd:"" help:"Dump the persisted session as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabit(cmd.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no habit found with ID: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}

	all, err := ctx.Store.GetAllCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	completions := all[:0]
	for _, c := range all {
		if c.HabitID == habit.ID {
			completions = append(completions, c)
		}
	}

	return printJSON(ctx, map[string]any{
		"habit":       habit,
		"completions": completions,
	})
}

type DebugDumpAccountCmd struct {
	Email string `arg:"" help:"Email of the account to dump."`
}

func (cmd *DebugDumpAccountCmd) Run(ctx *cli.Context) error {
	account, err := ctx.Store.GetAccountByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no account found with email: %s", cmd.Email)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	// never print the password hash
	return printJSON(ctx, account.Profile())
}

type DebugDumpSessionCmd struct{}

func (cmd *DebugDumpSessionCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Store.GetSession()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return printJSON(ctx, nil)
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	return printJSON(ctx, sess)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetAllSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}
