package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanup_FolderMarkerAndJunkPrefix(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		folderObject("folder"),
		fileObject("OceanofPDF.com_X_-_Y.pdf"),
	)
	c := NewCleaner(store, Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	assert.Equal(t, []Rename{{From: "OceanofPDF.com_X_-_Y.pdf", To: "x.pdf"}}, store.moves)
	assert.Equal(t, 1, report.Renamed())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, []string{"folder"}, report.Folders)
}

func TestCleanup_Categories(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		fileObject("the-midnight-library.pdf"),
		fileObject("___.pdf"),
		fileObject("Dune Messiah.pdf"),
		folderObject("archive"),
	)
	c := NewCleaner(store, Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	assert.Equal(t, []Rename{{From: "Dune Messiah.pdf", To: "dune-messiah.pdf"}}, report.Renames)
	assert.Equal(t, []string{"the-midnight-library.pdf"}, report.Unchanged)
	assert.Equal(t, []string{"___.pdf"}, report.Invalid)
	assert.Equal(t, []string{"archive"}, report.Folders)
	assert.Empty(t, report.Conflicts)
	assert.Equal(t, 1, report.Renamed())
	assert.Equal(t, 3, report.Skipped())
}

func TestCleanup_FailedMoveDoesNotAbort(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		fileObject("A B.pdf"),
		fileObject("C D.pdf"),
		fileObject("E F.pdf"),
	)
	store.moveErrs["C D.pdf"] = errBoom
	c := NewCleaner(store, Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	assert.Equal(t, []Rename{
		{From: "A B.pdf", To: "a-b.pdf"},
		{From: "E F.pdf", To: "e-f.pdf"},
	}, report.Renames)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "C D.pdf", report.Failures[0].Name)
	assert.Equal(t, "boom", report.Failures[0].Error)
	assert.Equal(t, 2, report.Renamed())
	assert.Equal(t, 1, report.Failed())
}

func TestCleanup_Conflicts(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		// Targets an existing object.
		fileObject("Dune.pdf"),
		fileObject("dune.pdf"),
		// Both canonicalize to the same target; the first one wins.
		fileObject("Hail Mary.pdf"),
		fileObject("hail_mary.pdf"),
	)
	c := NewCleaner(store, Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	assert.Equal(t, []Rename{{From: "Hail Mary.pdf", To: "hail-mary.pdf"}}, store.moves)
	assert.Equal(t, []Rename{
		{From: "Dune.pdf", To: "dune.pdf"},
		{From: "hail_mary.pdf", To: "hail-mary.pdf"},
	}, report.Conflicts)
	assert.Equal(t, []string{"dune.pdf"}, report.Unchanged)
	assert.Equal(t, 1, report.Renamed())
	assert.Equal(t, 3, report.Skipped())
}

func TestCleanup_DryRun(t *testing.T) {
	t.Parallel()

	store := newFakeStore(fileObject("Dune Messiah.pdf"))
	c := NewCleaner(store, Options{DryRun: true})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	assert.Empty(t, store.moves)
	assert.True(t, report.DryRun)
	assert.Equal(t, []Rename{{From: "Dune Messiah.pdf", To: "dune-messiah.pdf"}}, report.Renames)
}

func TestCleanup_Concurrency(t *testing.T) {
	t.Parallel()

	objects := newFakeStore()
	for _, name := range []string{"A 1.pdf", "A 2.pdf", "A 3.pdf", "A 4.pdf", "A 5.pdf", "A 6.pdf"} {
		objects.objects = append(objects.objects, fileObject(name))
	}
	objects.moveErrs["A 4.pdf"] = errBoom
	c := NewCleaner(objects, Options{Concurrency: 4})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)

	// The report keeps listing order regardless of completion order.
	assert.Equal(t, []Rename{
		{From: "A 1.pdf", To: "a-1.pdf"},
		{From: "A 2.pdf", To: "a-2.pdf"},
		{From: "A 3.pdf", To: "a-3.pdf"},
		{From: "A 5.pdf", To: "a-5.pdf"},
		{From: "A 6.pdf", To: "a-6.pdf"},
	}, report.Renames)
	assert.Len(t, objects.moves, 5)
	assert.Equal(t, 1, report.Failed())
}

func TestCleanup_ListFailureAborts(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.listErr = errBoom
	c := NewCleaner(store, Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "failed to list bucket")
}

func TestCleanup_EmptyBucket(t *testing.T) {
	t.Parallel()

	c := NewCleaner(newFakeStore(), Options{})

	report, err := c.Cleanup(context.Background(), "book-pdfs")
	require.NoError(t, err)
	assert.Zero(t, report.Renamed())
	assert.Zero(t, report.Skipped())
	assert.Zero(t, report.Failed())
}
