package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/pkg/errors"
	"github.com/danateck/eco-file-system/pkg/logger"
)

// userDocs is one signed-in user's in-memory working set: the merged view of
// owned and shared documents, plus the index by id used by the change feed to
// replace records in place.
type userDocs struct {
	mu    sync.Mutex
	docs  []*entities.Document
	index map[string]int // doc id -> position in docs
}

// DocumentService owns the document lifecycle for signed-in users: the
// in-memory working set, the persisted snapshot, the cached file bytes and
// the best-effort remote mirror. All mutating operations write the snapshot
// before they touch the remote.
type DocumentService struct {
	cache repositories.FileCache
	sync  *SyncService

	mu      sync.Mutex
	users   map[string]*userDocs
	onOpen  []func(email string)
	onClose []func(email string)
}

func NewDocumentService(cache repositories.FileCache, syncSvc *SyncService) *DocumentService {
	return &DocumentService{
		cache: cache,
		sync:  syncSvc,
		users: make(map[string]*userDocs),
	}
}

// Open loads the user's documents and starts the live subscription pair.
// Remote is preferred; when unreachable, the last persisted snapshot is the
// working set. Calling Open for an already-open user reloads in place.
func (s *DocumentService) Open(ctx context.Context, email string) ([]*entities.Document, error) {
	state := s.stateFor(email)

	docs, ok := s.sync.FetchAll(ctx, email)
	if ok {
		s.sync.Hydrate(ctx, docs)
		if err := s.cache.SaveSnapshot(ctx, email, docs); err != nil {
			logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
		}
	} else {
		var err error
		docs, err = s.cache.LoadSnapshot(ctx, email)
		if err != nil {
			return nil, errors.NewInternalError("failed to load local documents")
		}
		logger.Info("backend unreachable, serving local snapshot",
			zap.String("user", email), zap.Int("documents", len(docs)))
	}

	state.mu.Lock()
	state.docs = docs
	state.reindex()
	state.mu.Unlock()

	s.sync.Watch(email, func(doc *entities.Document) {
		s.applyRemote(context.Background(), email, doc)
	})

	s.mu.Lock()
	hooks := append([]func(string){}, s.onOpen...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(email)
	}

	return docs, nil
}

// OnOpen registers a hook run after a user's archive is opened. Used to
// start companion subscriptions, e.g. the share workflow's invite watch.
func (s *DocumentService) OnOpen(fn func(email string)) {
	s.mu.Lock()
	s.onOpen = append(s.onOpen, fn)
	s.mu.Unlock()
}

// OnClose registers a hook run when a user's archive is closed.
func (s *DocumentService) OnClose(fn func(email string)) {
	s.mu.Lock()
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close drops the user's in-memory state and cancels their subscriptions.
// The snapshot and cached bytes stay on disk for the next sign-in.
func (s *DocumentService) Close(email string) {
	s.sync.Unwatch(email)
	s.mu.Lock()
	delete(s.users, email)
	hooks := append([]func(string){}, s.onClose...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(email)
	}
}

func (s *DocumentService) stateFor(email string) *userDocs {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.users[email]
	if !ok {
		state = &userDocs{index: make(map[string]int)}
		s.users[email] = state
	}
	return state
}

// reindex rebuilds the id index; callers hold state.mu.
func (u *userDocs) reindex() {
	u.index = make(map[string]int, len(u.docs))
	for i, d := range u.docs {
		u.index[d.ID] = i
	}
}

// applyRemote is the change-feed callback: replace the record with the same
// id in place, or append if unseen. The remote version wins wholesale.
func (s *DocumentService) applyRemote(ctx context.Context, email string, doc *entities.Document) {
	state := s.stateFor(email)
	state.mu.Lock()
	if i, ok := state.index[doc.ID]; ok {
		state.docs[i] = doc
	} else {
		state.index[doc.ID] = len(state.docs)
		state.docs = append(state.docs, doc)
	}
	snapshot := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()

	if err := s.cache.SaveSnapshot(ctx, email, snapshot); err != nil {
		logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
	}
}

// List returns the user's non-trashed documents ordered by spec. Trashed
// documents are returned only when trashed is true (and then only trashed
// ones).
func (s *DocumentService) List(email string, spec entities.SortSpec, trashed bool) []*entities.Document {
	state := s.stateFor(email)
	state.mu.Lock()
	out := make([]*entities.Document, 0, len(state.docs))
	for _, d := range state.docs {
		if d.Trashed == trashed {
			out = append(out, d)
		}
	}
	state.mu.Unlock()

	SortDocuments(out, spec)
	return out
}

// Get returns one of the user's documents by id.
func (s *DocumentService) Get(email, docID string) (*entities.Document, error) {
	state := s.stateFor(email)
	state.mu.Lock()
	defer state.mu.Unlock()
	if i, ok := state.index[docID]; ok {
		return state.docs[i], nil
	}
	return nil, errors.NewNotFoundError("document not found")
}

// Add stores a new document: bytes into the file cache, record into the
// working set and snapshot, then a best-effort remote upload. An existing
// non-trashed document with the same original file name is rejected.
func (s *DocumentService) Add(ctx context.Context, email string, doc *entities.Document, data []byte) (*entities.Document, error) {
	state := s.stateFor(email)

	state.mu.Lock()
	for _, d := range state.docs {
		if !d.Trashed && d.OriginalFileName == doc.OriginalFileName {
			state.mu.Unlock()
			return nil, errors.NewConflictError("a document with this file name already exists")
		}
	}
	state.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.Owner = email
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	doc.FileSize = int64(len(data))

	if err := s.cache.PutFile(ctx, doc.ID, doc.MimeType, data); err != nil {
		return nil, errors.NewInternalError("failed to cache document bytes")
	}

	state.mu.Lock()
	state.index[doc.ID] = len(state.docs)
	state.docs = append(state.docs, doc)
	snapshot := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()

	if err := s.cache.SaveSnapshot(ctx, email, snapshot); err != nil {
		logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
	}

	s.sync.Upload(ctx, doc, data)
	return doc, nil
}

// Update applies a partial patch to a document the user can see, persists
// the snapshot and mirrors the merged record.
func (s *DocumentService) Update(ctx context.Context, email, docID string, patch *entities.DocumentPatch) (*entities.Document, error) {
	state := s.stateFor(email)

	state.mu.Lock()
	i, ok := state.index[docID]
	if !ok {
		state.mu.Unlock()
		return nil, errors.NewNotFoundError("document not found")
	}
	doc := state.docs[i]
	patch.Apply(doc)
	snapshot := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()

	if err := s.cache.SaveSnapshot(ctx, email, snapshot); err != nil {
		logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
	}

	s.sync.Mirror(ctx, doc)
	return doc, nil
}

// SoftDelete marks a document trashed. The record and its bytes survive so
// Restore can bring it back.
func (s *DocumentService) SoftDelete(ctx context.Context, email, docID string) error {
	trashed := true
	_, err := s.Update(ctx, email, docID, &entities.DocumentPatch{Trashed: &trashed})
	return err
}

// Restore clears the trashed mark.
func (s *DocumentService) Restore(ctx context.Context, email, docID string) error {
	trashed := false
	_, err := s.Update(ctx, email, docID, &entities.DocumentPatch{Trashed: &trashed})
	return err
}

// HardDelete removes a document everywhere: working set, snapshot, cached
// bytes, remote record and blob. Only the owner may hard-delete.
func (s *DocumentService) HardDelete(ctx context.Context, email, docID string) error {
	state := s.stateFor(email)

	state.mu.Lock()
	i, ok := state.index[docID]
	if !ok {
		state.mu.Unlock()
		return errors.NewNotFoundError("document not found")
	}
	doc := state.docs[i]
	if doc.Owner != email {
		state.mu.Unlock()
		return errors.NewForbiddenError("only the owner can delete a document")
	}
	state.docs = append(state.docs[:i], state.docs[i+1:]...)
	state.reindex()
	snapshot := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()

	if err := s.cache.DeleteFile(ctx, docID); err != nil {
		logger.Warn("cached bytes delete failed", zap.String("doc_id", docID), zap.Error(err))
	}
	if err := s.cache.SaveSnapshot(ctx, email, snapshot); err != nil {
		logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
	}

	s.sync.Remove(ctx, doc)
	return nil
}

// PurgeExpired hard-deletes every warranty document whose auto-delete date
// is strictly before today. A document expiring today survives the day.
// Returns the ids that were purged.
func (s *DocumentService) PurgeExpired(ctx context.Context, email string, now time.Time) []string {
	today := now.Format("2006-01-02")
	state := s.stateFor(email)

	state.mu.Lock()
	var expired []string
	for _, d := range state.docs {
		if d.Category != CategoryWarranty || d.AutoDeleteAfter == nil {
			continue
		}
		if today > *d.AutoDeleteAfter {
			expired = append(expired, d.ID)
		}
	}
	state.mu.Unlock()

	for _, id := range expired {
		if err := s.HardDelete(ctx, email, id); err != nil {
			logger.Warn("expired document purge failed", zap.String("doc_id", id), zap.Error(err))
		}
	}
	return expired
}

// FileBytes returns a document's cached bytes for download/preview.
func (s *DocumentService) FileBytes(ctx context.Context, email, docID string) (string, []byte, error) {
	if _, err := s.Get(email, docID); err != nil {
		return "", nil, err
	}
	mimeType, data, ok, err := s.cache.GetFile(ctx, docID)
	if err != nil {
		return "", nil, errors.NewInternalError("failed to read cached bytes")
	}
	if !ok {
		return "", nil, errors.NewNotFoundError("document bytes not cached")
	}
	return mimeType, data, nil
}

// SyncLocalToCloud pushes every local-only document to the backend and
// reports counts.
func (s *DocumentService) SyncLocalToCloud(ctx context.Context, email string) (synced, failed int, err error) {
	if !s.sync.Available(ctx) {
		return 0, 0, errors.NewBadRequestError("backend is not reachable")
	}
	state := s.stateFor(email)
	state.mu.Lock()
	docs := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()

	synced, failed = s.sync.PushLocal(ctx, docs)

	state.mu.Lock()
	snapshot := append([]*entities.Document(nil), state.docs...)
	state.mu.Unlock()
	if err := s.cache.SaveSnapshot(ctx, email, snapshot); err != nil {
		logger.Warn("snapshot save failed", zap.String("user", email), zap.Error(err))
	}
	return synced, failed, nil
}

// SortDocuments orders docs in place by spec. Date fields sort by their ISO
// string value with missing dates first (treated as the epoch), year sorts
// numerically with unparseable years as zero, text fields compare
// case-insensitively with the upload time as a stable tiebreak.
func SortDocuments(docs []*entities.Document, spec entities.SortSpec) {
	key := func(d *entities.Document) string {
		switch spec.Field {
		case entities.SortByTitle:
			return strings.ToLower(d.Title)
		case entities.SortByCategory:
			return strings.ToLower(d.Category)
		case entities.SortByOrg:
			return strings.ToLower(d.Org)
		case entities.SortByWarrantyStart:
			return isoOrEpoch(d.WarrantyStart)
		case entities.SortByWarrantyExpiresAt:
			return isoOrEpoch(d.WarrantyExpiresAt)
		case entities.SortByAutoDeleteAfter:
			return isoOrEpoch(d.AutoDeleteAfter)
		default:
			return ""
		}
	}

	cmp := func(a, b *entities.Document) int {
		switch spec.Field {
		case entities.SortByUploadedAt:
			return a.UploadedAt.Compare(b.UploadedAt)
		case entities.SortByYear:
			ya, _ := strconv.Atoi(a.Year)
			yb, _ := strconv.Atoi(b.Year)
			switch {
			case ya < yb:
				return -1
			case ya > yb:
				return 1
			}
			return 0
		default:
			return strings.Compare(key(a), key(b))
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		c := cmp(docs[i], docs[j])
		if c == 0 {
			return docs[i].UploadedAt.Before(docs[j].UploadedAt)
		}
		if spec.Ascending {
			return c < 0
		}
		return c > 0
	})
}

// isoOrEpoch maps a missing date to the epoch so absent dates sort first
// ascending.
func isoOrEpoch(iso *string) string {
	if iso == nil || *iso == "" {
		return "1970-01-01"
	}
	return *iso
}
