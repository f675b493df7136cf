package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore keeps exported documents (standings snapshots) in a public bucket.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	GetPublicURL(key string) string
}

// SnapshotKey names an exported document: one folder per tournament and kind,
// one object per export instant.
func SnapshotKey(tournamentID int, kind string, at time.Time) string {
	kind = strings.Trim(strings.ToLower(kind), "/ ")
	return fmt.Sprintf("tournaments/%d/%s/%s.json", tournamentID, kind, at.UTC().Format("20060102T150405Z"))
}
