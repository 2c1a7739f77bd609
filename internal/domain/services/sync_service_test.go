package services

import (
	"context"
	"testing"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

type fakeBlobStorage struct {
	objects map[string][]byte
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{objects: make(map[string][]byte)}
}

func (f *fakeBlobStorage) Upload(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	f.objects[objectName] = data
	return "https://blob.local/" + objectName, nil
}

func (f *fakeBlobStorage) Fetch(_ context.Context, objectName string) ([]byte, error) {
	return f.objects[objectName], nil
}

func (f *fakeBlobStorage) Remove(_ context.Context, objectName string) error {
	delete(f.objects, objectName)
	return nil
}

type fakeFeed struct {
	published   []*entities.Document
	subscribers map[string]func(*entities.Document)
	inviteSubs  map[string]func(*entities.ShareInvite)
	cancels     int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		subscribers: make(map[string]func(*entities.Document)),
		inviteSubs:  make(map[string]func(*entities.ShareInvite)),
	}
}

func (f *fakeFeed) PublishDocument(_ context.Context, doc *entities.Document) error {
	f.published = append(f.published, doc)
	if fn, ok := f.subscribers["owned."+doc.Owner]; ok {
		fn(doc)
	}
	return nil
}

func (f *fakeFeed) SubscribeOwnedDocs(email string, fn func(*entities.Document)) (repositories.CancelFunc, error) {
	f.subscribers["owned."+email] = fn
	return func() { f.cancels++ }, nil
}

func (f *fakeFeed) SubscribeSharedDocs(email string, fn func(*entities.Document)) (repositories.CancelFunc, error) {
	f.subscribers["shared."+email] = fn
	return func() { f.cancels++ }, nil
}

func (f *fakeFeed) PublishInvite(_ context.Context, _ *entities.ShareInvite) error { return nil }

func (f *fakeFeed) SubscribeInvites(email string, fn func(*entities.ShareInvite)) (repositories.CancelFunc, error) {
	f.inviteSubs[email] = fn
	return func() { f.cancels++ }, nil
}

func (f *fakeFeed) PublishMembers(_ context.Context, _, _ string, _ []string) error { return nil }

func (f *fakeFeed) SubscribeMembers(_, _ string, _ func([]string)) (repositories.CancelFunc, error) {
	return func() {}, nil
}

func (f *fakeFeed) PublishSharedDoc(_ context.Context, _ *entities.SharedDocRecord) error {
	return nil
}

func (f *fakeFeed) SubscribeFolderDocs(string, func(*entities.SharedDocRecord)) (repositories.CancelFunc, error) {
	return func() {}, nil
}

func TestAvailableNilBackend(t *testing.T) {
	svc := NewSyncService(nil, newFakeCache())
	if svc.Available(context.Background()) {
		t.Fatal("nil backend must not be available")
	}
}

func TestUploadOfflineIsNoop(t *testing.T) {
	svc := NewSyncService(nil, newFakeCache())
	doc := &entities.Document{ID: "d1", Owner: "a@b.co", OriginalFileName: "a.pdf"}

	svc.Upload(context.Background(), doc, []byte("x"))

	if doc.DownloadURL != nil {
		t.Fatal("offline upload must not set a download URL")
	}
}

func TestUploadSetsDownloadURLAndPublishes(t *testing.T) {
	backend, _, _, _, _ := newTestBackend()
	blobs := newFakeBlobStorage()
	feed := newFakeFeed()
	backend.Blobs = blobs
	backend.Feed = feed
	svc := NewSyncService(backend, newFakeCache())

	doc := &entities.Document{ID: "d1", Owner: "a@b.co", OriginalFileName: "a.pdf", MimeType: "application/pdf"}
	svc.Upload(context.Background(), doc, []byte("x"))

	if doc.DownloadURL == nil {
		t.Fatal("expected a download URL")
	}
	if len(feed.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(feed.published))
	}
	if _, ok := blobs.objects[ObjectName("a@b.co", "d1", "a.pdf")]; !ok {
		t.Fatal("expected blob stored under the document object name")
	}
}

func TestFetchAllMergesOwnedFirst(t *testing.T) {
	backend, docs, _, _, _ := newTestBackend()
	svc := NewSyncService(backend, newFakeCache())
	ctx := context.Background()

	docs.Upsert(ctx, &entities.Document{ID: "d1", Owner: "a@b.co", Title: "mine"})
	docs.Upsert(ctx, &entities.Document{ID: "d2", Owner: "other@b.co", SharedWith: []string{"a@b.co"}, Title: "theirs"})

	merged, ok := svc.FetchAll(ctx, "a@b.co")
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(merged))
	}
}

func TestWatchReplacesPriorPair(t *testing.T) {
	backend, _, _, _, _ := newTestBackend()
	feed := newFakeFeed()
	backend.Feed = feed
	svc := NewSyncService(backend, newFakeCache())

	cancel1 := svc.Watch("a@b.co", func(*entities.Document) {})
	svc.Watch("a@b.co", func(*entities.Document) {})

	// The first pair was cancelled when the second was installed.
	if feed.cancels != 2 {
		t.Fatalf("expected 2 cancels from replacement, got %d", feed.cancels)
	}

	// Cancelling the stale handle again does nothing.
	cancel1()
	cancel1()
	if feed.cancels != 2 {
		t.Fatalf("stale cancel must be idempotent, got %d", feed.cancels)
	}

	svc.Unwatch("a@b.co")
	if feed.cancels != 4 {
		t.Fatalf("expected active pair cancelled, got %d", feed.cancels)
	}
}

func TestPushLocalCountsSyncedAndFailed(t *testing.T) {
	backend, _, _, _, _ := newTestBackend()
	blobs := newFakeBlobStorage()
	backend.Blobs = blobs
	cache := newFakeCache()
	svc := NewSyncService(backend, cache)
	ctx := context.Background()

	cache.PutFile(ctx, "d1", "application/pdf", []byte("x"))
	url := "https://blob.local/existing"
	docs := []*entities.Document{
		{ID: "d1", Owner: "a@b.co", OriginalFileName: "a.pdf"},             // cached, needs push
		{ID: "d2", Owner: "a@b.co", OriginalFileName: "b.pdf"},             // no bytes anywhere
		{ID: "d3", Owner: "a@b.co", DownloadURL: &url},                     // already synced
		{ID: "d4", Owner: "a@b.co", OriginalFileName: "c.pdf", Trashed: true}, // skipped
	}

	synced, failed := svc.PushLocal(ctx, docs)
	if synced != 2 || failed != 1 {
		t.Fatalf("expected synced=2 failed=1, got %d/%d", synced, failed)
	}
	if docs[0].DownloadURL == nil {
		t.Fatal("expected pushed doc to gain a download URL")
	}
}

func TestHydrateFillsMissingBytes(t *testing.T) {
	backend, _, _, _, _ := newTestBackend()
	blobs := newFakeBlobStorage()
	backend.Blobs = blobs
	cache := newFakeCache()
	svc := NewSyncService(backend, cache)
	ctx := context.Background()

	name := ObjectName("a@b.co", "d1", "a.pdf")
	blobs.objects[name] = []byte("remote-bytes")
	url := "https://blob.local/" + name

	svc.Hydrate(ctx, []*entities.Document{
		{ID: "d1", Owner: "a@b.co", OriginalFileName: "a.pdf", DownloadURL: &url, MimeType: "application/pdf"},
	})

	_, data, ok, _ := cache.GetFile(ctx, "d1")
	if !ok || string(data) != "remote-bytes" {
		t.Fatalf("expected hydrated bytes, got ok=%v data=%q", ok, data)
	}
}
