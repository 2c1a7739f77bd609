package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutFile(ctx, "d1", "application/pdf", []byte("hello")); err != nil {
		t.Fatalf("put: %v", err)
	}

	mimeType, data, ok, err := store.GetFile(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if mimeType != "application/pdf" || string(data) != "hello" {
		t.Fatalf("got %s %q", mimeType, data)
	}
}

func TestGetFileMissing(t *testing.T) {
	store := newTestStore(t)

	_, _, ok, err := store.GetFile(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing id must not error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing id")
	}
}

func TestDeleteFileIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.PutFile(ctx, "d1", "text/plain", []byte("x"))
	if err := store.DeleteFile(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteFile(ctx, "d1"); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []*entities.Document{
		{ID: "d1", Title: "a", UploadedAt: time.Unix(100, 0).UTC()},
		{ID: "d2", Title: "b", Trashed: true},
	}
	if err := store.SaveSnapshot(ctx, "a@b.co", docs); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, "a@b.co")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "d1" || !loaded[1].Trashed {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
}

func TestLoadUserRecordMissingReturnsEmpty(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.LoadUserRecord(context.Background(), "new@b.co")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Email != "new@b.co" || rec.SharedFolders == nil {
		t.Fatalf("unexpected empty record %+v", rec)
	}
}

func TestUserRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &entities.UserRecord{
		Email: "a@b.co",
		SharedFolders: map[string]entities.SharedFolder{
			"f1": {ID: "f1", Name: "bills", Owner: "a@b.co", Members: []string{"a@b.co"}},
		},
		IncomingShareRequests: []entities.ShareInvite{{ID: "inv1", Status: entities.InvitePending}},
	}
	if err := store.SaveUserRecord(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadUserRecord(ctx, "a@b.co")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SharedFolders["f1"].Name != "bills" {
		t.Fatalf("unexpected record %+v", loaded)
	}
	if len(loaded.IncomingShareRequests) != 1 {
		t.Fatalf("expected 1 incoming request, got %d", len(loaded.IncomingShareRequests))
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	url := EncodeDataURL("", []byte{0x00, 0xff})
	mimeType, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mimeType != "application/octet-stream" || len(data) != 2 {
		t.Fatalf("got %s %v", mimeType, data)
	}

	if _, _, err := DecodeDataURL("not-a-data-url"); err == nil {
		t.Fatal("expected error for junk input")
	}
}
