package repositories

import (
	"context"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

// FileCache is the local persistent key-value store for file bytes, document
// snapshots and offline user records. GetFile returns ok=false (no error) for
// a missing id; DeleteFile on a missing id is a no-op. There is no eviction:
// callers delete entries when a document is permanently removed.
type FileCache interface {
	PutFile(ctx context.Context, id, mimeType string, data []byte) error
	GetFile(ctx context.Context, id string) (mimeType string, data []byte, ok bool, err error)
	DeleteFile(ctx context.Context, id string) error

	SaveSnapshot(ctx context.Context, email string, docs []*entities.Document) error
	LoadSnapshot(ctx context.Context, email string) ([]*entities.Document, error)

	LoadUserRecord(ctx context.Context, email string) (*entities.UserRecord, error)
	SaveUserRecord(ctx context.Context, rec *entities.UserRecord) error
}

// BlobStorage is the remote blob side of the backend. Upload returns a
// download URL for the stored object.
type BlobStorage interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, objectName string) ([]byte, error)
	Remove(ctx context.Context, objectName string) error
}
