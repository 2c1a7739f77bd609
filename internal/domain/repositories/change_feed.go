package repositories

import (
	"context"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

// CancelFunc stops a live subscription. Implementations must be safe to call
// more than once.
type CancelFunc func()

// ChangeFeed delivers remote changes to live subscribers. Publishing fans a
// document out to its owner and to every sharedWith member, so a subscriber
// holds one owned and one shared subscription per signed-in user (a pair).
type ChangeFeed interface {
	PublishDocument(ctx context.Context, doc *entities.Document) error
	SubscribeOwnedDocs(email string, fn func(*entities.Document)) (CancelFunc, error)
	SubscribeSharedDocs(email string, fn func(*entities.Document)) (CancelFunc, error)

	PublishInvite(ctx context.Context, invite *entities.ShareInvite) error
	SubscribeInvites(email string, fn func(*entities.ShareInvite)) (CancelFunc, error)

	PublishMembers(ctx context.Context, owner, folderID string, members []string) error
	SubscribeMembers(owner, folderID string, fn func([]string)) (CancelFunc, error)

	PublishSharedDoc(ctx context.Context, rec *entities.SharedDocRecord) error
	SubscribeFolderDocs(folderID string, fn func(*entities.SharedDocRecord)) (CancelFunc, error)
}
