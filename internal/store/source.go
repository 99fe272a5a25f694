package store

import (
	"context"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// Source loads a dataset from a SQLite file written by Save.
type Source struct{}

// Format returns the source name.
func (Source) Format() string { return "sqlite" }

// Load opens the database at path, reads it and closes it again.
func (Source) Load(ctx context.Context, path string) (*model.Dataset, error) {
	conn, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Load(ctx)
}
