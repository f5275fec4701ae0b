package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// LedgerArchiver defines the interface for snapshotting attendance data
// to object storage. Snapshots are written before a destructive template
// apply so replaced ledgers remain downloadable.
type LedgerArchiver interface {
	// PutSnapshot stores a JSON snapshot under the given key.
	PutSnapshot(ctx context.Context, objectKey string, data []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading a snapshot directly from the provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes a snapshot from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
