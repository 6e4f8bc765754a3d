package airquality

import (
	"context"
	"io"
)

// Source abstracts where the readings table comes from (HTTP, local file).
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Store is the contract the in-memory snapshot store must satisfy.
type Store interface {
	Save(ds *Dataset)
	Latest() (*Dataset, error)
	Get(id string) (*Dataset, error)
	History() []DatasetInfo
}
