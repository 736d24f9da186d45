// Package store provides the small string key-value backends used for local
// persistence, such as the learnings document.
package store

import (
	"context"
	"fmt"
)

// KV is a string key-value store. Get reports ok=false for an absent key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend
type Options struct {
	Backend     string
	Dir         string // file backend
	SQLitePath  string // sqlite backend
	DatabaseURL string // postgres backend
}

// Open returns the configured backend. The returned close func is never nil.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendFile, "":
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	case BackendSQLite:
		s, err := NewSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendPostgres:
		p, err := NewPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return p, func() error { p.Close(); return nil }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
