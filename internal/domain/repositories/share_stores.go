package repositories

import (
	"context"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

type RemoteInviteStore interface {
	Create(ctx context.Context, invite *entities.ShareInvite) error
	Get(ctx context.Context, id string) (*entities.ShareInvite, error)
	PendingFor(ctx context.Context, email string) ([]*entities.ShareInvite, error)
	AcceptedFor(ctx context.Context, folderID string) ([]*entities.ShareInvite, error)
	SetStatus(ctx context.Context, id string, status entities.InviteStatus) error
}

// FolderMembershipStore persists folder membership redundantly under every
// member's record (the backend has no join table, so a folder must be visible
// from either party's perspective). UnionMembers is idempotent.
type FolderMembershipStore interface {
	EnsureUser(ctx context.Context, email string) error
	EnsureFolder(ctx context.Context, userEmail string, folder *entities.SharedFolder) error
	UnionMembers(ctx context.Context, userEmail, folderID string, members ...string) error
	Folder(ctx context.Context, userEmail, folderID string) (*entities.SharedFolder, error)
	FoldersFor(ctx context.Context, email string) ([]*entities.SharedFolder, error)
}

type SharedDocStore interface {
	Upsert(ctx context.Context, rec *entities.SharedDocRecord) error
	ByFolder(ctx context.Context, folderID string) ([]*entities.SharedDocRecord, error)
	Delete(ctx context.Context, recID string) error
}
