package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return errors.New("migrate is only supported for SQLite and PostgreSQL storage")
	}

	ctx.PerformAutomaticBackup()

	count, err := m.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
