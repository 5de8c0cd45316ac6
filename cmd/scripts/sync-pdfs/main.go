package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/readsphere/readsphere/pkg/books"
	"github.com/readsphere/readsphere/pkg/config"
	"github.com/readsphere/readsphere/pkg/database"
	"github.com/readsphere/readsphere/pkg/reconcile"
	"github.com/readsphere/readsphere/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

func main() {
	log := logger.New()

	var opts struct {
		Bucket      string `short:"b" long:"bucket" description:"Bucket holding the PDFs (defaults to STORAGE_BUCKET)"`
		DryRun      bool   `short:"n" long:"dry-run" description:"Report the matches without writing them"`
		Concurrency int    `short:"c" long:"concurrency" description:"Books to update at once (defaults to RECONCILE_CONCURRENCY)"`
		JSON        bool   `long:"json" description:"Print the full report as JSON"`
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
	if opts.Bucket == "" {
		opts.Bucket = cfg.StorageBucket
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = cfg.ReconcileConcurrency
	}

	ctx := log.Root(logger.Data{"script": "sync-pdfs", "bucket": opts.Bucket}).WithContext(context.Background())

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	store, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Err(err).Fatal("storage error")
	}

	syncer := reconcile.NewSyncer(store, books.NewService(db), reconcile.Options{
		DryRun:      opts.DryRun,
		Concurrency: opts.Concurrency,
	})
	report, err := syncer.Sync(ctx, opts.Bucket)
	if err != nil {
		log.Err(err).Fatal("sync error")
	}

	if opts.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Err(err).Fatal("report encode error")
		}
		fmt.Println(string(out))
	} else {
		fmt.Printf("Updated: %d\nUnmatched: %d\nFailed: %d\n", report.Updated(), report.Unmatched(), report.Failed())
	}

	if report.Failed() > 0 {
		db.Close()
		os.Exit(1)
	}
}
