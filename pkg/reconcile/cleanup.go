package reconcile

import (
	"context"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/filenames"
	"github.com/readsphere/readsphere/pkg/metrics"
	"github.com/readsphere/readsphere/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
)

type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type CleanupReport struct {
	DryRun bool `json:"dry_run"`

	Renames []Rename `json:"renames"`
	// Unchanged objects already have their canonical name.
	Unchanged []string `json:"unchanged"`
	Folders   []string `json:"folders"`
	// Invalid objects have nothing left of their name once canonicalized.
	Invalid []string `json:"invalid"`
	// Conflicts would have overwritten another object, or another rename of
	// this run, so they were left alone.
	Conflicts []Rename  `json:"conflicts"`
	Failures  []Failure `json:"failures"`
}

func (r *CleanupReport) Renamed() int {
	return len(r.Renames)
}

func (r *CleanupReport) Skipped() int {
	return len(r.Unchanged) + len(r.Folders) + len(r.Invalid) + len(r.Conflicts)
}

func (r *CleanupReport) Failed() int {
	return len(r.Failures)
}

// Cleaner renames every file in a bucket to its canonical name.
type Cleaner struct {
	store storage.Client
	opts  Options
}

func NewCleaner(store storage.Client, opts Options) *Cleaner {
	return &Cleaner{store, opts}
}

func (c *Cleaner) Cleanup(ctx context.Context, bucket string) (*CleanupReport, error) {
	log := logger.FromContext(ctx)

	objects, err := c.store.List(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bucket")
	}
	log.Info("listed bucket", logger.Data{"bucket": bucket, "objects": len(objects)})

	report := &CleanupReport{
		DryRun:    c.opts.DryRun,
		Renames:   []Rename{},
		Unchanged: []string{},
		Folders:   []string{},
		Invalid:   []string{},
		Conflicts: []Rename{},
		Failures:  []Failure{},
	}

	existing := make(map[string]bool, len(objects))
	for _, obj := range objects {
		existing[obj.Name] = true
	}
	claimed := map[string]bool{}

	// Decisions are made in listing order so the collision checks are
	// deterministic. Only the moves fan out.
	planned := []Rename{}
	for _, obj := range objects {
		if obj.IsFolder() {
			log.Debug("skipping folder", logger.Data{"name": obj.Name})
			report.Folders = append(report.Folders, obj.Name)
			metrics.RecordReconcileItem(metrics.RunCleanup, "folder")
			continue
		}

		canonical, ok := filenames.Canonicalize(obj.Name)
		if !ok {
			log.Warn("name has nothing left once canonicalized", logger.Data{"name": obj.Name})
			report.Invalid = append(report.Invalid, obj.Name)
			metrics.RecordReconcileItem(metrics.RunCleanup, "invalid")
			continue
		}

		if canonical == obj.Name {
			log.Debug("already canonical", logger.Data{"name": obj.Name})
			report.Unchanged = append(report.Unchanged, obj.Name)
			metrics.RecordReconcileItem(metrics.RunCleanup, "unchanged")
			continue
		}

		rename := Rename{From: obj.Name, To: canonical}
		if existing[canonical] || claimed[canonical] {
			log.Warn("canonical name is taken", logger.Data{"from": rename.From, "to": rename.To})
			report.Conflicts = append(report.Conflicts, rename)
			metrics.RecordReconcileItem(metrics.RunCleanup, "conflict")
			continue
		}
		claimed[canonical] = true
		planned = append(planned, rename)
	}

	errs := make([]error, len(planned))
	if !c.opts.DryRun {
		each(len(planned), c.opts.limit(), func(i int) {
			errs[i] = c.store.Move(ctx, bucket, planned[i].From, planned[i].To)
		})
	}

	for i, rename := range planned {
		if err := errs[i]; err != nil {
			log.Warn("failed to rename object", logger.Data{"from": rename.From, "to": rename.To, "error": err.Error()})
			report.Failures = append(report.Failures, Failure{Name: rename.From, Error: err.Error()})
			metrics.RecordReconcileItem(metrics.RunCleanup, "failed")
			continue
		}
		log.Info("renamed object", logger.Data{"from": rename.From, "to": rename.To, "dry_run": c.opts.DryRun})
		report.Renames = append(report.Renames, rename)
		metrics.RecordReconcileItem(metrics.RunCleanup, "renamed")
	}

	log.Info("cleanup finished", logger.Data{
		"bucket":  bucket,
		"renamed": report.Renamed(),
		"skipped": report.Skipped(),
		"failed":  report.Failed(),
		"dry_run": report.DryRun,
	})

	return report, nil
}
