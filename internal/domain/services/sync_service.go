package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/pkg/logger"
)

// SyncService reconciles local document state with the remote backend:
// best-effort, one-way-preferred. Every remote failure degrades to the local
// codepath; nothing here propagates a transient remote error to its caller.
type SyncService struct {
	backend *repositories.Backend
	cache   repositories.FileCache

	mu      sync.Mutex
	watches map[string]repositories.CancelFunc // one active pair per user
}

func NewSyncService(backend *repositories.Backend, cache repositories.FileCache) *SyncService {
	return &SyncService{
		backend: backend,
		cache:   cache,
		watches: make(map[string]repositories.CancelFunc),
	}
}

// Available reports whether the remote backend can be reached right now.
func (s *SyncService) Available(ctx context.Context) bool {
	return s.backend.Available(ctx)
}

// ObjectName builds the blob path for a document's bytes.
func ObjectName(owner, docID, fileName string) string {
	return "documents/" + owner + "/" + docID + "_" + fileName
}

// Upload mirrors a new document to the backend: bytes to blob storage first
// (failure logged, metadata still written with a nil download URL), then the
// metadata merge keyed by the document id, then a change-feed publish.
func (s *SyncService) Upload(ctx context.Context, doc *entities.Document, data []byte) {
	if !s.Available(ctx) {
		return
	}

	if s.backend.Blobs != nil && len(data) > 0 {
		name := ObjectName(doc.Owner, doc.ID, doc.OriginalFileName)
		url, err := s.backend.Blobs.Upload(ctx, name, data, doc.MimeType)
		if err != nil {
			logger.Warn("blob upload failed, keeping document local-only bytes",
				zap.String("doc_id", doc.ID), zap.Error(err))
		} else {
			doc.DownloadURL = &url
		}
	}

	s.Mirror(ctx, doc)
}

// Mirror writes/merges the document metadata remotely and publishes the
// change. Best-effort: failures are logged and swallowed.
func (s *SyncService) Mirror(ctx context.Context, doc *entities.Document) {
	if !s.Available(ctx) {
		return
	}
	if err := s.backend.Docs.Upsert(ctx, doc); err != nil {
		logger.Warn("remote document upsert failed",
			zap.String("doc_id", doc.ID), zap.Error(err))
		return
	}
	if s.backend.Feed != nil {
		if err := s.backend.Feed.PublishDocument(ctx, doc); err != nil {
			logger.Warn("document change publish failed",
				zap.String("doc_id", doc.ID), zap.Error(err))
		}
	}
}

// Remove deletes the remote metadata record and blob, best-effort.
func (s *SyncService) Remove(ctx context.Context, doc *entities.Document) {
	if !s.Available(ctx) {
		return
	}
	if err := s.backend.Docs.Delete(ctx, doc.ID); err != nil {
		logger.Warn("remote document delete failed",
			zap.String("doc_id", doc.ID), zap.Error(err))
	}
	if s.backend.Blobs != nil && doc.DownloadURL != nil {
		name := ObjectName(doc.Owner, doc.ID, doc.OriginalFileName)
		if err := s.backend.Blobs.Remove(ctx, name); err != nil {
			logger.Warn("remote blob delete failed",
				zap.String("doc_id", doc.ID), zap.Error(err))
		}
	}
}

// FetchAll runs the owned and shared-with queries in parallel and merges the
// results de-duplicated by id, owned winning ties. Returns ok=false when the
// remote is unavailable or either query failed, so the caller can fall back
// to its last local snapshot.
func (s *SyncService) FetchAll(ctx context.Context, email string) ([]*entities.Document, bool) {
	if !s.Available(ctx) {
		return nil, false
	}

	var owned, shared []*entities.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.backend.Docs.Owned(gctx, email)
		return err
	})
	g.Go(func() error {
		var err error
		shared, err = s.backend.Docs.SharedWith(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn("remote document fetch failed", zap.String("user", email), zap.Error(err))
		return nil, false
	}

	return MergeByID(owned, shared), true
}

// MergeByID concatenates document lists keeping only the first occurrence of
// each id.
func MergeByID(lists ...[]*entities.Document) []*entities.Document {
	seen := make(map[string]struct{})
	var out []*entities.Document
	for _, list := range lists {
		for _, doc := range list {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}
	return out
}

// Watch starts the live subscription pair (owned + shared) for a user. Any
// prior pair for the same user is cancelled first, so there is exactly one
// active pair per signed-in user. The returned cancel is idempotent.
func (s *SyncService) Watch(email string, onChange func(*entities.Document)) repositories.CancelFunc {
	s.Unwatch(email)

	if s.backend == nil || s.backend.Feed == nil {
		return func() {}
	}

	cancelOwned, err := s.backend.Feed.SubscribeOwnedDocs(email, onChange)
	if err != nil {
		logger.Warn("owned-docs subscription failed", zap.String("user", email), zap.Error(err))
		return func() {}
	}
	cancelShared, err := s.backend.Feed.SubscribeSharedDocs(email, onChange)
	if err != nil {
		logger.Warn("shared-docs subscription failed", zap.String("user", email), zap.Error(err))
		cancelOwned()
		return func() {}
	}

	var once sync.Once
	cancel := repositories.CancelFunc(func() {
		once.Do(func() {
			cancelOwned()
			cancelShared()
		})
	})

	s.mu.Lock()
	s.watches[email] = cancel
	s.mu.Unlock()
	return cancel
}

// Unwatch cancels the user's active subscription pair, if any.
func (s *SyncService) Unwatch(email string) {
	s.mu.Lock()
	cancel := s.watches[email]
	delete(s.watches, email)
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// PushLocal uploads the cached bytes of every non-trashed document that has
// no download URL yet, merging the URL back into the remote record. Returns
// how many documents synced and how many failed.
func (s *SyncService) PushLocal(ctx context.Context, docs []*entities.Document) (synced, failed int) {
	if !s.Available(ctx) {
		return 0, 0
	}

	for _, doc := range docs {
		if doc.Trashed {
			continue
		}
		if doc.DownloadURL != nil {
			synced++
			continue
		}
		mimeType, data, ok, err := s.cache.GetFile(ctx, doc.ID)
		if err != nil || !ok {
			logger.Warn("no cached bytes for document", zap.String("doc_id", doc.ID))
			failed++
			continue
		}
		if doc.MimeType == "" {
			doc.MimeType = mimeType
		}
		name := ObjectName(doc.Owner, doc.ID, doc.OriginalFileName)
		url, err := s.backend.Blobs.Upload(ctx, name, data, doc.MimeType)
		if err != nil {
			logger.Warn("blob upload failed during local push",
				zap.String("doc_id", doc.ID), zap.Error(err))
			failed++
			continue
		}
		doc.DownloadURL = &url
		s.Mirror(ctx, doc)
		synced++
	}
	return synced, failed
}

// Hydrate downloads bytes for documents that have a download URL but no
// local cache entry yet, so files shared from another device open offline.
func (s *SyncService) Hydrate(ctx context.Context, docs []*entities.Document) {
	if !s.Available(ctx) || s.backend.Blobs == nil {
		return
	}
	for _, doc := range docs {
		if doc.DownloadURL == nil {
			continue
		}
		if _, _, ok, _ := s.cache.GetFile(ctx, doc.ID); ok {
			continue
		}
		name := ObjectName(doc.Owner, doc.ID, doc.OriginalFileName)
		data, err := s.backend.Blobs.Fetch(ctx, name)
		if err != nil {
			logger.Warn("failed to hydrate document bytes",
				zap.String("doc_id", doc.ID), zap.Error(err))
			continue
		}
		if err := s.cache.PutFile(ctx, doc.ID, doc.MimeType, data); err != nil {
			logger.Warn("failed to cache hydrated bytes",
				zap.String("doc_id", doc.ID), zap.Error(err))
		}
	}
}

// Backend exposes the backend handle to sibling services.
func (s *SyncService) Backend() *repositories.Backend {
	return s.backend
}
