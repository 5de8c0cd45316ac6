package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/books"
	"github.com/readsphere/readsphere/pkg/config"
	"github.com/readsphere/readsphere/pkg/database"
	"github.com/readsphere/readsphere/pkg/migrations"
	"github.com/readsphere/readsphere/pkg/seed"
	"github.com/robinjoseph08/golib/logger"
)

func main() {
	log := logger.New()

	var opts struct {
		File    string `short:"f" long:"file" description:"YAML catalogue to load instead of the built-in one"`
		Migrate bool   `long:"migrate" description:"Bring the schema up to date before seeding"`
	}

	_, err := flags.Parse(&opts)
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Err(err).Fatal("flags parse error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	ctx := log.Root(logger.Data{"script": "seed"}).WithContext(context.Background())

	entries, err := loadEntries(opts.File)
	if err != nil {
		log.Err(err).Fatal("catalogue error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	if opts.Migrate {
		if _, err := migrations.BringUpToDate(ctx, db); err != nil {
			log.Err(err).Fatal("migrations error")
		}
	}

	report := seed.NewSeeder(books.NewService(db), entries).Run(ctx)
	fmt.Printf("Inserted: %d\nFailed: %d\n", len(report.Inserted), len(report.Failures))
}

func loadEntries(path string) ([]seed.Entry, error) {
	if path == "" {
		return seed.Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return seed.Parse(data)
}
