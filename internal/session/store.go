package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Delete for an unknown id.
var ErrNotFound = errors.New("not found")

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]T, error)
	NewID() string
}

func newID() string {
	return uuid.NewString()
}
