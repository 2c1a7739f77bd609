package repositories

import (
	"context"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

// RemoteDocumentStore is the metadata side of the remote backend. Upsert is a
// whole-record merge keyed by document ID (last write wins); UnionSharedWith
// is the backend's atomic union-into-array-field primitive.
type RemoteDocumentStore interface {
	Upsert(ctx context.Context, doc *entities.Document) error
	Get(ctx context.Context, id string) (*entities.Document, error)
	Owned(ctx context.Context, owner string) ([]*entities.Document, error)
	SharedWith(ctx context.Context, email string) ([]*entities.Document, error)
	UnionSharedWith(ctx context.Context, id string, emails ...string) error
	Delete(ctx context.Context, id string) error
}
