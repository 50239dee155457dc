package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisheknishant138/scope/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the database file for bolt and sqlite.
	Path string

	// Bucket, Prefix, Region and Endpoint configure the s3 backend.
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// Open creates the Store named by opts.Backend. An empty backend means
// memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendBolt:
		return OpenBolt(opts.Path)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Path)
	case BackendS3:
		if opts.Bucket == "" {
			return nil, errors.New("E112").WithDetail("the s3 backend requires a bucket")
		}
		client, err := NewS3Client(ctx, opts.Region, opts.Endpoint)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, opts.Bucket, opts.Prefix), nil
	default:
		return nil, errors.New("E112").WithDetail(fmt.Sprintf("unknown store backend %q", opts.Backend))
	}
}
