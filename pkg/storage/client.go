package storage

import (
	"context"
)

// Object is an entry of a bucket listing. Folder markers have no ID.
type Object struct {
	Name string
	ID   *string
}

func (o Object) IsFolder() bool {
	return o.ID == nil
}

// Client is the subset of an object store the reconcile tools need. Renaming
// is the only mutation.
type Client interface {
	List(ctx context.Context, bucket string) ([]Object, error)
	Move(ctx context.Context, bucket, from, to string) error
}
