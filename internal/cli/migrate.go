package cli

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type MigrateCmd struct {
	DSN    string `help:"PostgreSQL connection string." env:"DATABASE_URL" required:""`
	Status bool   `help:"Only print the current schema version."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	db, err := database.NewPostgreSQLDB(c.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db)
	bg := context.Background()

	if c.Status {
		version, err := migrator.CurrentVersion(bg)
		if err != nil {
			return err
		}
		ctx.Log.Info("schema version", "version", version)
		return nil
	}

	applied, err := migrator.Apply(bg, func(msg string) { ctx.Log.Info(msg) })
	if err != nil {
		return err
	}
	ctx.Log.Info("migrations complete", "applied", applied)
	return nil
}
