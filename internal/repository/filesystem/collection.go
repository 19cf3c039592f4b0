package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
)

// Collection stores a slice of T as one indented JSON array file. Every
// mutation rewrites the whole file. A mutex serialises read-modify-write
// cycles within this process; other processes writing the same file are not
// coordinated with.
type Collection[T any] struct {
	path     string
	resource string
	idOf     func(*T) string
	logger   *slog.Logger

	mu sync.Mutex
}

// NewCollection returns a collection backed by path. resource names the
// record kind in errors and idOf extracts a record's identifier.
func NewCollection[T any](path, resource string, idOf func(*T) string, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		path:     path,
		resource: resource,
		idOf:     idOf,
		logger:   logger,
	}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// ReadAll returns every record. A missing or empty file is an empty collection.
func (c *Collection[T]) ReadAll(ctx context.Context) (records []T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "ReadAll", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// WriteAll replaces the collection with records.
func (c *Collection[T]) WriteAll(ctx context.Context, records []T) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "WriteAll", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, records)
}

// Create appends record. It fails with AlreadyExists when the id is taken.
func (c *Collection[T]) Create(ctx context.Context, record T) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "Create", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	id := c.idOf(&record)
	if c.indexOf(records, id) >= 0 {
		return apperrors.AlreadyExists(c.resource, "id", id)
	}
	return c.store(ctx, append(records, record))
}

// Read returns the record with the given id.
func (c *Collection[T]) Read(ctx context.Context, id string) (_ *T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "Read", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	i := c.indexOf(records, id)
	if i < 0 {
		return nil, apperrors.NotFound(c.resource, id)
	}
	return &records[i], nil
}

// Update applies mutate to the record with the given id and rewrites the
// file, all under the collection lock. mutate must not change the id.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (_ *T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "Update", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	i := c.indexOf(records, id)
	if i < 0 {
		return nil, apperrors.NotFound(c.resource, id)
	}

	updated := records[i]
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	records[i] = updated
	if err := c.store(ctx, records); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemFilesystem, "Delete", c.path)
	defer func() { end(err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	i := c.indexOf(records, id)
	if i < 0 {
		return apperrors.NotFound(c.resource, id)
	}
	return c.store(ctx, append(records[:i], records[i+1:]...))
}

// Ping verifies the collection file can be read and its directory exists.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	_, err := c.ReadAll(ctx)
	return err
}

func (c *Collection[T]) indexOf(records []T, id string) int {
	for i := range records {
		if c.idOf(&records[i]) == id {
			return i
		}
	}
	return -1
}

// load must be called with mu held.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to read collection file",
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Persistence("read "+c.resource+"s", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode collection file",
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Persistence("decode "+c.resource+"s", err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// store must be called with mu held.
func (c *Collection[T]) store(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.Persistence("encode "+c.resource+"s", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.logger.ErrorContext(ctx, "failed to write collection file",
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return apperrors.Persistence("write "+c.resource+"s", err)
	}
	c.logger.DebugContext(ctx, "collection written",
		slog.String("path", c.path),
		slog.Int("records", len(records)),
	)
	return nil
}
