package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/pkg/errors"
)

type fakeDocStore struct {
	docs   map[string]*entities.Document
	unions map[string][]string
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]*entities.Document), unions: make(map[string][]string)}
}

func (f *fakeDocStore) Upsert(_ context.Context, doc *entities.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocStore) Get(_ context.Context, id string) (*entities.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("doc %s not found", id)
	}
	return doc, nil
}

func (f *fakeDocStore) Owned(_ context.Context, owner string) ([]*entities.Document, error) {
	var out []*entities.Document
	for _, d := range f.docs {
		if d.Owner == owner {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) SharedWith(_ context.Context, email string) ([]*entities.Document, error) {
	var out []*entities.Document
	for _, d := range f.docs {
		for _, m := range d.SharedWith {
			if m == email && d.Owner != email {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDocStore) UnionSharedWith(_ context.Context, id string, emails ...string) error {
	f.unions[id] = append(f.unions[id], emails...)
	return nil
}

func (f *fakeDocStore) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

type fakeInviteStore struct {
	invites map[string]*entities.ShareInvite
}

func newFakeInviteStore() *fakeInviteStore {
	return &fakeInviteStore{invites: make(map[string]*entities.ShareInvite)}
}

func (f *fakeInviteStore) Create(_ context.Context, invite *entities.ShareInvite) error {
	cp := *invite
	f.invites[invite.ID] = &cp
	return nil
}

func (f *fakeInviteStore) Get(_ context.Context, id string) (*entities.ShareInvite, error) {
	inv, ok := f.invites[id]
	if !ok {
		return nil, fmt.Errorf("invite %s not found", id)
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInviteStore) PendingFor(_ context.Context, email string) ([]*entities.ShareInvite, error) {
	var out []*entities.ShareInvite
	for _, inv := range f.invites {
		if inv.ToEmail == email && inv.Status == entities.InvitePending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInviteStore) AcceptedFor(_ context.Context, folderID string) ([]*entities.ShareInvite, error) {
	var out []*entities.ShareInvite
	for _, inv := range f.invites {
		if inv.FolderID == folderID && inv.Status == entities.InviteAccepted {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInviteStore) SetStatus(_ context.Context, id string, status entities.InviteStatus) error {
	inv, ok := f.invites[id]
	if !ok {
		return fmt.Errorf("invite %s not found", id)
	}
	inv.Status = status
	return nil
}

type fakeFolderStore struct {
	folders map[string]*entities.SharedFolder // key userEmail + "/" + folderID
	users   map[string]bool
}

func newFakeFolderStore() *fakeFolderStore {
	return &fakeFolderStore{folders: make(map[string]*entities.SharedFolder), users: make(map[string]bool)}
}

func (f *fakeFolderStore) EnsureUser(_ context.Context, email string) error {
	f.users[email] = true
	return nil
}

func (f *fakeFolderStore) EnsureFolder(_ context.Context, userEmail string, folder *entities.SharedFolder) error {
	key := userEmail + "/" + folder.ID
	if _, ok := f.folders[key]; !ok {
		cp := *folder
		cp.Members = append([]string(nil), folder.Members...)
		f.folders[key] = &cp
	}
	return nil
}

func (f *fakeFolderStore) UnionMembers(_ context.Context, userEmail, folderID string, members ...string) error {
	folder, ok := f.folders[userEmail+"/"+folderID]
	if !ok {
		return fmt.Errorf("folder %s not found for %s", folderID, userEmail)
	}
	folder.Members = unionStrings(folder.Members, members)
	return nil
}

func (f *fakeFolderStore) Folder(_ context.Context, userEmail, folderID string) (*entities.SharedFolder, error) {
	folder, ok := f.folders[userEmail+"/"+folderID]
	if !ok {
		return nil, fmt.Errorf("folder %s not found for %s", folderID, userEmail)
	}
	return folder, nil
}

func (f *fakeFolderStore) FoldersFor(_ context.Context, email string) ([]*entities.SharedFolder, error) {
	var out []*entities.SharedFolder
	for key, folder := range f.folders {
		if key == email+"/"+folder.ID {
			out = append(out, folder)
		}
	}
	return out, nil
}

type fakeSharedDocStore struct {
	recs map[string]*entities.SharedDocRecord
}

func newFakeSharedDocStore() *fakeSharedDocStore {
	return &fakeSharedDocStore{recs: make(map[string]*entities.SharedDocRecord)}
}

func (f *fakeSharedDocStore) Upsert(_ context.Context, rec *entities.SharedDocRecord) error {
	f.recs[rec.RecID] = rec
	return nil
}

func (f *fakeSharedDocStore) ByFolder(_ context.Context, folderID string) ([]*entities.SharedDocRecord, error) {
	var out []*entities.SharedDocRecord
	for _, rec := range f.recs {
		if rec.FolderID == folderID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSharedDocStore) Delete(_ context.Context, recID string) error {
	delete(f.recs, recID)
	return nil
}

func newTestBackend() (*repositories.Backend, *fakeDocStore, *fakeInviteStore, *fakeFolderStore, *fakeSharedDocStore) {
	docs := newFakeDocStore()
	invites := newFakeInviteStore()
	folders := newFakeFolderStore()
	shared := newFakeSharedDocStore()
	backend := &repositories.Backend{
		Docs:       docs,
		Invites:    invites,
		Folders:    folders,
		SharedDocs: shared,
	}
	return backend, docs, invites, folders, shared
}

func TestRespondToInviteSettlesOnce(t *testing.T) {
	backend, _, invites, folders, _ := newTestBackend()
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	invites.Create(ctx, &entities.ShareInvite{
		ID: "inv1", FolderID: "f1", FolderName: "bills",
		FromEmail: "owner@b.co", ToEmail: "member@b.co",
		Status: entities.InvitePending,
	})

	inv, err := svc.RespondToInvite(ctx, "member@b.co", "inv1", true)
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if inv.Status != entities.InviteAccepted {
		t.Fatalf("expected accepted, got %s", inv.Status)
	}

	// A second response, even a contradictory one, is a no-op.
	inv, err = svc.RespondToInvite(ctx, "member@b.co", "inv1", false)
	if err != nil {
		t.Fatalf("second respond failed: %v", err)
	}
	if inv.Status != entities.InviteAccepted {
		t.Fatalf("settled invite flipped to %s", inv.Status)
	}

	// Accepting joined the member on both membership records.
	for _, user := range []string{"owner@b.co", "member@b.co"} {
		folder, err := folders.Folder(ctx, user, "f1")
		if err != nil {
			t.Fatalf("folder missing for %s: %v", user, err)
		}
		if len(folder.Members) != 2 {
			t.Fatalf("expected 2 members on %s's record, got %v", user, folder.Members)
		}
	}
}

func TestRespondToInviteWrongRecipient(t *testing.T) {
	backend, _, invites, _, _ := newTestBackend()
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	invites.Create(ctx, &entities.ShareInvite{
		ID: "inv1", FolderID: "f1", FromEmail: "owner@b.co", ToEmail: "member@b.co",
		Status: entities.InvitePending,
	})

	_, err := svc.RespondToInvite(ctx, "stranger@b.co", "inv1", true)
	if _, ok := err.(*errors.ForbiddenError); !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSendInviteOfflineQueuesLocally(t *testing.T) {
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(nil, cache))
	svc := NewShareService(nil, cache, docSvc)
	ctx := context.Background()

	if _, err := svc.SendInvite(ctx, "Owner@B.co", "member@b.co", "f1", "bills"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	to, _ := cache.LoadUserRecord(ctx, "member@b.co")
	if len(to.IncomingShareRequests) != 1 {
		t.Fatalf("expected 1 incoming request, got %d", len(to.IncomingShareRequests))
	}
	if to.IncomingShareRequests[0].FromEmail != "owner@b.co" {
		t.Fatalf("expected normalized sender, got %s", to.IncomingShareRequests[0].FromEmail)
	}

	from, _ := cache.LoadUserRecord(ctx, "owner@b.co")
	if len(from.OutgoingShareRequests) != 1 {
		t.Fatalf("expected 1 outgoing request, got %d", len(from.OutgoingShareRequests))
	}
}

func TestShareDocumentOwnerOnly(t *testing.T) {
	backend, _, _, folders, _ := newTestBackend()
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	folders.EnsureFolder(ctx, "member@b.co", &entities.SharedFolder{
		ID: "f1", Name: "bills", Owner: "owner@b.co", Members: []string{"owner@b.co", "member@b.co"},
	})
	docSvc.applyRemote(ctx, "member@b.co", &entities.Document{ID: "d1", Owner: "owner@b.co"})

	_, err := svc.ShareDocument(ctx, "member@b.co", "d1", "f1")
	if _, ok := err.(*errors.ForbiddenError); !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestShareDocumentGrantsMembers(t *testing.T) {
	backend, docs, _, folders, sharedDocs := newTestBackend()
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	folders.EnsureFolder(ctx, "owner@b.co", &entities.SharedFolder{
		ID: "f1", Name: "bills", Owner: "owner@b.co", Members: []string{"owner@b.co", "member@b.co"},
	})
	doc, err := docSvc.Add(ctx, "owner@b.co", &entities.Document{OriginalFileName: "a.pdf"}, []byte("x"))
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	shared, err := svc.ShareDocument(ctx, "owner@b.co", doc.ID, "f1")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if shared.SharedFolderID != "f1" {
		t.Fatalf("expected folder tag, got %q", shared.SharedFolderID)
	}
	if len(shared.SharedWith) != 2 {
		t.Fatalf("expected both members granted, got %v", shared.SharedWith)
	}
	if len(docs.unions[doc.ID]) == 0 {
		t.Fatal("expected remote sharedWith union")
	}

	recs, _ := sharedDocs.ByFolder(ctx, "f1")
	if len(recs) != 1 {
		t.Fatalf("expected 1 mirror record, got %d", len(recs))
	}
	if recs[0].RecID != entities.MirrorRecID("owner@b.co", doc.ID) {
		t.Fatalf("unexpected mirror key %s", recs[0].RecID)
	}
}

func TestReconcileFolderDropsStaleMirrors(t *testing.T) {
	backend, docs, _, _, sharedDocs := newTestBackend()
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	docs.Upsert(ctx, &entities.Document{ID: "d1", Owner: "owner@b.co", SharedFolderID: "f1", Title: "kept"})
	sharedDocs.Upsert(ctx, &entities.SharedDocRecord{
		RecID: entities.MirrorRecID("owner@b.co", "gone"), FolderID: "f1",
		OwnerEmail: "owner@b.co", DocID: "gone",
	})

	if err := svc.ReconcileFolder(ctx, "owner@b.co", "f1"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	recs, _ := sharedDocs.ByFolder(ctx, "f1")
	if len(recs) != 1 {
		t.Fatalf("expected exactly the live mirror, got %d", len(recs))
	}
	if recs[0].DocID != "d1" {
		t.Fatalf("expected mirror for d1, got %s", recs[0].DocID)
	}
}

func TestCreateFolderOffline(t *testing.T) {
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(nil, cache))
	svc := NewShareService(nil, cache, docSvc)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "a@b.co", "bills")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, _ := cache.LoadUserRecord(ctx, "a@b.co")
	if _, ok := rec.SharedFolders[folder.ID]; !ok {
		t.Fatal("expected folder on local user record")
	}
}

func TestCreateFolderWithInvitesOffline(t *testing.T) {
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(nil, cache))
	svc := NewShareService(nil, cache, docSvc)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "a@b.co", "bills", "friend@b.co")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	to, _ := cache.LoadUserRecord(ctx, "friend@b.co")
	if len(to.IncomingShareRequests) != 1 {
		t.Fatalf("expected 1 queued invite, got %d", len(to.IncomingShareRequests))
	}
	if to.IncomingShareRequests[0].FolderID != folder.ID {
		t.Fatal("queued invite references wrong folder")
	}
}

func TestFolderMembersOffline(t *testing.T) {
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(nil, cache))
	svc := NewShareService(nil, cache, docSvc)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "a@b.co", "bills")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	members, err := svc.FolderMembers(ctx, "a@b.co", folder.ID)
	if err != nil {
		t.Fatalf("members failed: %v", err)
	}
	if len(members) != 1 || members[0] != "a@b.co" {
		t.Fatalf("members = %v", members)
	}

	if _, err := svc.FolderMembers(ctx, "a@b.co", "missing"); err == nil {
		t.Fatal("expected error for unknown folder")
	}
}

func TestOpenForFoldsInvitesIntoLocalQueue(t *testing.T) {
	backend, _, _, _, _ := newTestBackend()
	feed := newFakeFeed()
	backend.Feed = feed
	cache := newFakeCache()
	docSvc := NewDocumentService(cache, NewSyncService(backend, cache))
	svc := NewShareService(backend, cache, docSvc)
	ctx := context.Background()

	svc.OpenFor("a@b.co")
	fn, ok := feed.inviteSubs["a@b.co"]
	if !ok {
		t.Fatal("expected an invite subscription")
	}

	fn(&entities.ShareInvite{ID: "i1", FolderID: "f1", ToEmail: "a@b.co", Status: entities.InvitePending})
	rec, _ := cache.LoadUserRecord(ctx, "a@b.co")
	if len(rec.IncomingShareRequests) != 1 {
		t.Fatalf("expected 1 queued invite, got %d", len(rec.IncomingShareRequests))
	}

	// Same invite updated in place, not duplicated.
	fn(&entities.ShareInvite{ID: "i1", FolderID: "f1", ToEmail: "a@b.co", Status: entities.InviteAccepted})
	rec, _ = cache.LoadUserRecord(ctx, "a@b.co")
	if len(rec.IncomingShareRequests) != 1 {
		t.Fatalf("expected invite replaced in place, got %d entries", len(rec.IncomingShareRequests))
	}
	if rec.IncomingShareRequests[0].Status != entities.InviteAccepted {
		t.Fatalf("status = %s", rec.IncomingShareRequests[0].Status)
	}

	svc.StopWatches("a@b.co")
	if feed.cancels != 1 {
		t.Fatalf("expected 1 cancel, got %d", feed.cancels)
	}
}
