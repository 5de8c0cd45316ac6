package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/readsphere/readsphere/pkg/config"
	"github.com/readsphere/readsphere/pkg/reconcile"
	"github.com/readsphere/readsphere/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

func main() {
	log := logger.New()

	var opts struct {
		Bucket      string `short:"b" long:"bucket" description:"Bucket to clean up (defaults to STORAGE_BUCKET)"`
		DryRun      bool   `short:"n" long:"dry-run" description:"Report the renames without making them"`
		Concurrency int    `short:"c" long:"concurrency" description:"Objects to rename at once (defaults to RECONCILE_CONCURRENCY)"`
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

	ctx := log.Root(logger.Data{"script": "cleanup-filenames", "bucket": opts.Bucket}).WithContext(context.Background())

	store, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Err(err).Fatal("storage error")
	}

	cleaner := reconcile.NewCleaner(store, reconcile.Options{
		DryRun:      opts.DryRun,
		Concurrency: opts.Concurrency,
	})
	report, err := cleaner.Cleanup(ctx, opts.Bucket)
	if err != nil {
		log.Err(err).Fatal("cleanup error")
	}

	if opts.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Err(err).Fatal("report encode error")
		}
		fmt.Println(string(out))
	} else {
		fmt.Printf("Renamed: %d\nSkipped: %d (unchanged %d, folders %d, invalid %d, conflicts %d)\nFailed: %d\n",
			report.Renamed(), report.Skipped(),
			len(report.Unchanged), len(report.Folders), len(report.Invalid), len(report.Conflicts),
			report.Failed())
	}

	if report.Failed() > 0 {
		os.Exit(1)
	}
}
