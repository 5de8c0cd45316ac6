package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/readsphere/readsphere/pkg/config"
	"github.com/readsphere/readsphere/pkg/database"
	"github.com/readsphere/readsphere/pkg/migrations"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:        "migrations",
		Usage:       "manage the books schema",
		Description: "Applies, rolls back and inspects the Go migrations for the books table. DATABASE_URL selects sqlite or Postgres.",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the migration bookkeeping tables",
				Action: func(c *cli.Context) error {
					return migrations.NewMigrator(db).Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply pending migrations to the books schema",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}

					if group.ID == 0 {
						fmt.Println("Books schema is already up to date")
						return nil
					}

					fmt.Printf("Applied %s (group %d)\n", group.Migrations, group.ID)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrations.RollbackLast(c.Context, db)
					if err != nil {
						return err
					}

					if group.ID == 0 {
						fmt.Println("Nothing to roll back")
						return nil
					}

					fmt.Printf("Rolled back %s (group %d)\n", group.Migrations, group.ID)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "scaffold a Go migration in pkg/migrations",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("usage: migrations create <name words>", 1)
					}

					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrations.NewMigrator(db).CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)

					return nil
				},
			},
			{
				Name:  "status",
				Usage: "show applied and pending migrations",
				Action: func(c *cli.Context) error {
					status, err := migrations.CurrentStatus(c.Context, db)
					if err != nil {
						return err
					}
					fmt.Printf("Dialect: %s\n", status.Dialect)
					fmt.Printf("Applied: %s\n", status.Applied)
					fmt.Printf("Pending: %s\n", status.Unapplied)
					fmt.Printf("Last group: %s\n", status.LastGroup)

					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		db.Close()
		log.Err(err).Fatal("app run error")
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
