// Package store holds the vault's record stores: credentials, the active session and
// file metadata.
//
// Each store owns one key of a repository.KeyValueStore and treats the JSON value under
// it as a single unit:
//
//	read whole collection → change it in memory → write whole collection back
//
// There are no partial updates and no indexes. A missing or unparseable value reads
// as an empty collection, so a corrupt entry never takes the vault down; it is logged
// and replaced on the next write. Inside a well-formed array, an element that does not
// decode is hidden from callers but written back unchanged, so one odd record never
// costs the others their data.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/file-vault/internal/repository"
)

// collection reads and writes a JSON array of T under one key.
//
// load and save must run under the owning store's lock: elements that failed to
// decode on the last load are kept in skipped and appended again by save.
type collection[T any] struct {
	kv      repository.KeyValueStore
	key     string
	logger  *slog.Logger
	skipped []json.RawMessage
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	c.skipped = nil

	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", c.key, err)
	}
	if !ok {
		return []T{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		c.logger.Warn("malformed collection, using empty default",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return []T{}, nil
	}

	items := make([]T, 0, len(elems))
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			c.logger.Warn("skipping malformed element",
				slog.String("key", c.key),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			c.skipped = append(c.skipped, elem)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	out := make([]any, 0, len(items)+len(c.skipped))
	for _, item := range items {
		out = append(out, item)
	}
	for _, elem := range c.skipped {
		out = append(out, elem)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("store: writing %s: %w", c.key, err)
	}
	return nil
}

// Option customises a store. Tests use it to pin time and ids.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func defaultOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used for joinDate and uploadDate.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides id generation (xid by default, which is time-ordered).
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}
