package repositories

import "context"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend bundles the remote collaborators. A nil *Backend is the offline
// deployment: every sync operation short-circuits to its local-only codepath.
// The choice is made once at startup; there is no runtime shape-sniffing.
type Backend struct {
	Docs       RemoteDocumentStore
	Invites    RemoteInviteStore
	Folders    FolderMembershipStore
	SharedDocs SharedDocStore
	Blobs      BlobStorage
	Feed       ChangeFeed
	Pinger     Pinger
}

// Available reports whether remote operations may be attempted right now.
func (b *Backend) Available(ctx context.Context) bool {
	if b == nil || b.Docs == nil {
		return false
	}
	if b.Pinger != nil && b.Pinger.Ping(ctx) != nil {
		return false
	}
	return true
}
