package reconcile

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/books"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/readsphere/readsphere/pkg/storage"
)

type fakeStore struct {
	mu       sync.Mutex
	objects  []storage.Object
	listErr  error
	moveErrs map[string]error
	moves    []Rename
}

func newFakeStore(objects ...storage.Object) *fakeStore {
	return &fakeStore{objects: objects, moveErrs: map[string]error{}}
}

func (s *fakeStore) List(_ context.Context, _ string) ([]storage.Object, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.objects, nil
}

func (s *fakeStore) Move(_ context.Context, _, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.moveErrs[from]; err != nil {
		return err
	}
	s.moves = append(s.moves, Rename{From: from, To: to})
	return nil
}

func fileObject(name string) storage.Object {
	id := "id-" + name
	return storage.Object{Name: name, ID: &id}
}

func folderObject(name string) storage.Object {
	return storage.Object{Name: name}
}

type fakeBooks struct {
	mu         sync.Mutex
	books      []*models.Book
	listErr    error
	updateErrs map[int]error
	updates    map[int]string
}

func newFakeBooks(titles ...string) *fakeBooks {
	fb := &fakeBooks{updateErrs: map[int]error{}, updates: map[int]string{}}
	for i, title := range titles {
		fb.books = append(fb.books, &models.Book{ID: i + 1, Title: title})
	}
	return fb
}

func (b *fakeBooks) ListBooks(_ context.Context, _ books.ListBooksOptions) ([]*models.Book, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.books, nil
}

func (b *fakeBooks) UpdatePDFFilename(_ context.Context, id int, filename string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.updateErrs[id]; err != nil {
		return err
	}
	b.updates[id] = filename
	return nil
}

var errBoom = errors.New("boom")
