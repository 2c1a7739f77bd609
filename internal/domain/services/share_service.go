package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/internal/utils"
	"github.com/danateck/eco-file-system/pkg/errors"
	"github.com/danateck/eco-file-system/pkg/logger"
)

// ShareService runs the folder sharing workflow: invites, membership and the
// denormalized per-folder document mirror. Like the document side it degrades
// to local user records when the backend is unreachable.
type ShareService struct {
	backend *repositories.Backend
	cache   repositories.FileCache
	docs    *DocumentService

	mu          sync.Mutex
	inviteWatch map[string]repositories.CancelFunc // keyed by user email
	memberWatch map[string]repositories.CancelFunc // keyed by owner + "/" + folderID
	folderWatch map[string]repositories.CancelFunc // keyed by folderID
}

func NewShareService(backend *repositories.Backend, cache repositories.FileCache, docs *DocumentService) *ShareService {
	return &ShareService{
		backend:     backend,
		cache:       cache,
		docs:        docs,
		inviteWatch: make(map[string]repositories.CancelFunc),
		memberWatch: make(map[string]repositories.CancelFunc),
		folderWatch: make(map[string]repositories.CancelFunc),
	}
}

// CreateFolder registers a new shared folder owned by email, with the owner
// as its first member. Any invited addresses get a pending invitation to
// join; invite failures are logged and do not fail the folder creation.
func (s *ShareService) CreateFolder(ctx context.Context, email, name string, invited ...string) (*entities.SharedFolder, error) {
	email = utils.NormalizeEmail(email)
	if name == "" {
		return nil, errors.NewBadRequestError("folder name is required")
	}

	folder := &entities.SharedFolder{
		ID:      uuid.New().String(),
		Name:    name,
		Owner:   email,
		Members: []string{email},
	}

	if s.backend.Available(ctx) {
		if err := s.backend.Folders.EnsureUser(ctx, email); err != nil {
			return nil, errors.NewInternalError("failed to create folder")
		}
		if err := s.backend.Folders.EnsureFolder(ctx, email, folder); err != nil {
			return nil, errors.NewInternalError("failed to create folder")
		}
	} else {
		rec, err := s.cache.LoadUserRecord(ctx, email)
		if err != nil {
			return nil, errors.NewInternalError("failed to load local user record")
		}
		if rec.SharedFolders == nil {
			rec.SharedFolders = make(map[string]entities.SharedFolder)
		}
		rec.SharedFolders[folder.ID] = *folder
		if err := s.cache.SaveUserRecord(ctx, rec); err != nil {
			return nil, errors.NewInternalError("failed to save local user record")
		}
	}

	for _, to := range invited {
		if _, err := s.SendInvite(ctx, email, to, folder.ID, folder.Name); err != nil {
			logger.Warn("folder invite failed",
				zap.String("folder_id", folder.ID), zap.String("to", to), zap.Error(err))
		}
	}
	return folder, nil
}

// FolderMembers lists the member emails of one of email's folders.
func (s *ShareService) FolderMembers(ctx context.Context, email, folderID string) ([]string, error) {
	email = utils.NormalizeEmail(email)
	if s.backend.Available(ctx) {
		folder, err := s.backend.Folders.Folder(ctx, email, folderID)
		if err != nil {
			return nil, errors.NewNotFoundError("shared folder not found")
		}
		return folder.Members, nil
	}

	rec, err := s.cache.LoadUserRecord(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to load local user record")
	}
	folder, ok := rec.SharedFolders[folderID]
	if !ok {
		return nil, errors.NewNotFoundError("shared folder not found")
	}
	return folder.Members, nil
}

// Folders lists every shared folder visible to email.
func (s *ShareService) Folders(ctx context.Context, email string) ([]*entities.SharedFolder, error) {
	email = utils.NormalizeEmail(email)
	if s.backend.Available(ctx) {
		folders, err := s.backend.Folders.FoldersFor(ctx, email)
		if err != nil {
			return nil, errors.NewInternalError("failed to list folders")
		}
		return folders, nil
	}

	rec, err := s.cache.LoadUserRecord(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to load local user record")
	}
	folders := make([]*entities.SharedFolder, 0, len(rec.SharedFolders))
	for id := range rec.SharedFolders {
		f := rec.SharedFolders[id]
		folders = append(folders, &f)
	}
	return folders, nil
}

// SendInvite creates a pending invitation for toEmail to join the folder.
// Offline, the invite is queued on both parties' local records instead.
func (s *ShareService) SendInvite(ctx context.Context, fromEmail, toEmail, folderID, folderName string) (*entities.ShareInvite, error) {
	fromEmail = utils.NormalizeEmail(fromEmail)
	toEmail = utils.NormalizeEmail(toEmail)
	if err := utils.ValidateEmail(toEmail); err != nil {
		return nil, errors.NewBadRequestError("invalid recipient email")
	}
	if fromEmail == toEmail {
		return nil, errors.NewBadRequestError("cannot share a folder with yourself")
	}

	now := time.Now().UTC()
	invite := &entities.ShareInvite{
		ID:         uuid.New().String(),
		FolderID:   folderID,
		FolderName: folderName,
		FromEmail:  fromEmail,
		ToEmail:    toEmail,
		Status:     entities.InvitePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.backend.Available(ctx) {
		if err := s.backend.Invites.Create(ctx, invite); err != nil {
			return nil, errors.NewInternalError("failed to create invitation")
		}
		if s.backend.Feed != nil {
			if err := s.backend.Feed.PublishInvite(ctx, invite); err != nil {
				logger.Warn("invite publish failed", zap.String("invite_id", invite.ID), zap.Error(err))
			}
		}
		return invite, nil
	}

	// Offline: queue the invite under both parties so either side sees it
	// on its next sign-in.
	if err := s.queueLocalInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *ShareService) queueLocalInvite(ctx context.Context, invite *entities.ShareInvite) error {
	from, err := s.cache.LoadUserRecord(ctx, invite.FromEmail)
	if err != nil {
		return errors.NewInternalError("failed to load local user record")
	}
	from.OutgoingShareRequests = append(from.OutgoingShareRequests, *invite)
	if err := s.cache.SaveUserRecord(ctx, from); err != nil {
		return errors.NewInternalError("failed to save local user record")
	}

	to, err := s.cache.LoadUserRecord(ctx, invite.ToEmail)
	if err != nil {
		return errors.NewInternalError("failed to load local user record")
	}
	to.IncomingShareRequests = append(to.IncomingShareRequests, *invite)
	if err := s.cache.SaveUserRecord(ctx, to); err != nil {
		return errors.NewInternalError("failed to save local user record")
	}
	return nil
}

// PendingInvites lists the invitations awaiting email's response.
func (s *ShareService) PendingInvites(ctx context.Context, email string) ([]*entities.ShareInvite, error) {
	email = utils.NormalizeEmail(email)
	if s.backend.Available(ctx) {
		invites, err := s.backend.Invites.PendingFor(ctx, email)
		if err != nil {
			return nil, errors.NewInternalError("failed to list invitations")
		}
		return invites, nil
	}

	rec, err := s.cache.LoadUserRecord(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to load local user record")
	}
	var pending []*entities.ShareInvite
	for i := range rec.IncomingShareRequests {
		inv := rec.IncomingShareRequests[i]
		if inv.Status == entities.InvitePending {
			pending = append(pending, &inv)
		}
	}
	return pending, nil
}

// RespondToInvite moves a pending invitation to accepted or rejected. The
// transition happens at most once: responding to an already-settled invite is
// a no-op that reports the settled status. Accepting joins the recipient to
// the folder on both membership records.
func (s *ShareService) RespondToInvite(ctx context.Context, email, inviteID string, accept bool) (*entities.ShareInvite, error) {
	email = utils.NormalizeEmail(email)
	if !s.backend.Available(ctx) {
		return nil, errors.NewBadRequestError("responding to invitations requires a backend connection")
	}

	invite, err := s.backend.Invites.Get(ctx, inviteID)
	if err != nil {
		return nil, errors.NewNotFoundError("invitation not found")
	}
	if invite.ToEmail != email {
		return nil, errors.NewForbiddenError("invitation is addressed to another user")
	}
	if invite.Status.Terminal() {
		return invite, nil
	}

	status := entities.InviteRejected
	if accept {
		status = entities.InviteAccepted
	}
	if err := s.backend.Invites.SetStatus(ctx, inviteID, status); err != nil {
		return nil, errors.NewInternalError("failed to update invitation")
	}
	invite.Status = status
	invite.UpdatedAt = time.Now().UTC()

	if accept {
		if err := s.JoinFolder(ctx, invite); err != nil {
			return nil, err
		}
	}

	if s.backend.Feed != nil {
		if err := s.backend.Feed.PublishInvite(ctx, invite); err != nil {
			logger.Warn("invite publish failed", zap.String("invite_id", inviteID), zap.Error(err))
		}
	}
	return invite, nil
}

// JoinFolder adds the invite recipient to the folder's membership under both
// the owner's and the member's records. Every step is a union or an ensure,
// so replays converge to the same state.
func (s *ShareService) JoinFolder(ctx context.Context, invite *entities.ShareInvite) error {
	owner := invite.FromEmail
	member := invite.ToEmail

	if err := s.backend.Folders.EnsureUser(ctx, owner); err != nil {
		return errors.NewInternalError("failed to join folder")
	}
	if err := s.backend.Folders.EnsureUser(ctx, member); err != nil {
		return errors.NewInternalError("failed to join folder")
	}

	folder := &entities.SharedFolder{
		ID:      invite.FolderID,
		Name:    invite.FolderName,
		Owner:   owner,
		Members: []string{owner, member},
	}
	if err := s.backend.Folders.EnsureFolder(ctx, owner, folder); err != nil {
		return errors.NewInternalError("failed to join folder")
	}
	if err := s.backend.Folders.EnsureFolder(ctx, member, folder); err != nil {
		return errors.NewInternalError("failed to join folder")
	}
	if err := s.backend.Folders.UnionMembers(ctx, owner, invite.FolderID, owner, member); err != nil {
		return errors.NewInternalError("failed to join folder")
	}
	if err := s.backend.Folders.UnionMembers(ctx, member, invite.FolderID, owner, member); err != nil {
		return errors.NewInternalError("failed to join folder")
	}

	if s.backend.Feed != nil {
		current, err := s.backend.Folders.Folder(ctx, owner, invite.FolderID)
		if err == nil {
			if err := s.backend.Feed.PublishMembers(ctx, owner, invite.FolderID, current.Members); err != nil {
				logger.Warn("membership publish failed", zap.String("folder_id", invite.FolderID), zap.Error(err))
			}
		}
	}
	return nil
}

// ShareDocument tags a document into a shared folder and grants the folder's
// members read access. Only the document's owner may share it.
func (s *ShareService) ShareDocument(ctx context.Context, email, docID, folderID string) (*entities.Document, error) {
	email = utils.NormalizeEmail(email)

	doc, err := s.docs.Get(email, docID)
	if err != nil {
		return nil, err
	}
	if doc.Owner != email {
		return nil, errors.NewForbiddenError("only the owner can share a document")
	}

	var members []string
	if s.backend.Available(ctx) {
		folder, err := s.backend.Folders.Folder(ctx, email, folderID)
		if err != nil {
			return nil, errors.NewNotFoundError("shared folder not found")
		}
		members = folder.Members
	} else {
		rec, err := s.cache.LoadUserRecord(ctx, email)
		if err != nil {
			return nil, errors.NewInternalError("failed to load local user record")
		}
		folder, ok := rec.SharedFolders[folderID]
		if !ok {
			return nil, errors.NewNotFoundError("shared folder not found")
		}
		members = folder.Members
	}

	fid := folderID
	shared := unionStrings(doc.SharedWith, members)
	patch := &entities.DocumentPatch{SharedFolderID: &fid, SharedWith: &shared}
	doc, err = s.docs.Update(ctx, email, docID, patch)
	if err != nil {
		return nil, err
	}

	if s.backend.Available(ctx) {
		if err := s.backend.Docs.UnionSharedWith(ctx, docID, members...); err != nil {
			logger.Warn("remote sharedWith union failed", zap.String("doc_id", docID), zap.Error(err))
		}
		s.mirrorDoc(ctx, doc)
	}
	return doc, nil
}

// FolderDocs lists the mirror records of every document tagged into the
// folder.
func (s *ShareService) FolderDocs(ctx context.Context, folderID string) ([]*entities.SharedDocRecord, error) {
	if !s.backend.Available(ctx) {
		return nil, errors.NewBadRequestError("listing folder documents requires a backend connection")
	}
	recs, err := s.backend.SharedDocs.ByFolder(ctx, folderID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list folder documents")
	}
	return recs, nil
}

// ReconcileFolder recomputes the folder's mirror records from the owner's
// documents tagged with the folder id: missing mirrors are written, stale
// mirrors (documents untagged or deleted since) are removed. Safe to run
// repeatedly.
func (s *ShareService) ReconcileFolder(ctx context.Context, ownerEmail, folderID string) error {
	ownerEmail = utils.NormalizeEmail(ownerEmail)
	if !s.backend.Available(ctx) {
		return errors.NewBadRequestError("reconciliation requires a backend connection")
	}

	owned, err := s.backend.Docs.Owned(ctx, ownerEmail)
	if err != nil {
		return errors.NewInternalError("failed to load owner documents")
	}

	tagged := make(map[string]*entities.Document)
	for _, d := range owned {
		if d.SharedFolderID == folderID && !d.Trashed {
			tagged[d.ID] = d
		}
	}

	existing, err := s.backend.SharedDocs.ByFolder(ctx, folderID)
	if err != nil {
		return errors.NewInternalError("failed to load folder mirrors")
	}
	for _, rec := range existing {
		if rec.OwnerEmail != ownerEmail {
			continue
		}
		if _, still := tagged[rec.DocID]; !still {
			if err := s.backend.SharedDocs.Delete(ctx, rec.RecID); err != nil {
				logger.Warn("stale mirror delete failed", zap.String("rec_id", rec.RecID), zap.Error(err))
			}
		}
	}

	for _, d := range tagged {
		s.mirrorDoc(ctx, d)
	}
	return nil
}

// mirrorDoc upserts the denormalized shared-docs record for a folder-tagged
// document and publishes it to folder subscribers.
func (s *ShareService) mirrorDoc(ctx context.Context, doc *entities.Document) {
	if doc.SharedFolderID == "" {
		return
	}
	rec := &entities.SharedDocRecord{
		RecID:             entities.MirrorRecID(doc.Owner, doc.ID),
		FolderID:          doc.SharedFolderID,
		OwnerEmail:        doc.Owner,
		DocID:             doc.ID,
		Title:             doc.Title,
		FileName:          doc.OriginalFileName,
		Category:          doc.Category,
		UploadedAt:        doc.UploadedAt,
		WarrantyStart:     doc.WarrantyStart,
		WarrantyExpiresAt: doc.WarrantyExpiresAt,
		Org:               doc.Org,
		Year:              doc.Year,
		Recipient:         doc.Recipient,
		LastUpdated:       time.Now().UTC(),
	}
	if err := s.backend.SharedDocs.Upsert(ctx, rec); err != nil {
		logger.Warn("mirror upsert failed", zap.String("rec_id", rec.RecID), zap.Error(err))
		return
	}
	if s.backend.Feed != nil {
		if err := s.backend.Feed.PublishSharedDoc(ctx, rec); err != nil {
			logger.Warn("mirror publish failed", zap.String("rec_id", rec.RecID), zap.Error(err))
		}
	}
}

// OpenFor starts the live invite watch for a signed-in user. Incoming
// updates are folded into the local user record's queue so the pending list
// stays current even if the backend drops afterwards.
func (s *ShareService) OpenFor(email string) {
	email = utils.NormalizeEmail(email)
	s.WatchInvites(email, func(invite *entities.ShareInvite) {
		ctx := context.Background()
		rec, err := s.cache.LoadUserRecord(ctx, email)
		if err != nil {
			logger.Warn("local user record load failed", zap.String("user", email), zap.Error(err))
			return
		}
		replaced := false
		for i := range rec.IncomingShareRequests {
			if rec.IncomingShareRequests[i].ID == invite.ID {
				rec.IncomingShareRequests[i] = *invite
				replaced = true
				break
			}
		}
		if !replaced {
			rec.IncomingShareRequests = append(rec.IncomingShareRequests, *invite)
		}
		if err := s.cache.SaveUserRecord(ctx, rec); err != nil {
			logger.Warn("local user record save failed", zap.String("user", email), zap.Error(err))
		}
	})
}

// WatchInvites subscribes email to live invitation updates, replacing any
// prior subscription for the same user.
func (s *ShareService) WatchInvites(email string, fn func(*entities.ShareInvite)) repositories.CancelFunc {
	email = utils.NormalizeEmail(email)
	return s.replaceWatch(s.inviteWatch, email, func() (repositories.CancelFunc, error) {
		return s.backend.Feed.SubscribeInvites(email, fn)
	})
}

// WatchMembers subscribes to membership changes of one folder.
func (s *ShareService) WatchMembers(owner, folderID string, fn func([]string)) repositories.CancelFunc {
	key := owner + "/" + folderID
	return s.replaceWatch(s.memberWatch, key, func() (repositories.CancelFunc, error) {
		return s.backend.Feed.SubscribeMembers(owner, folderID, fn)
	})
}

// WatchFolderDocs subscribes to mirror-record changes of one folder.
func (s *ShareService) WatchFolderDocs(folderID string, fn func(*entities.SharedDocRecord)) repositories.CancelFunc {
	return s.replaceWatch(s.folderWatch, folderID, func() (repositories.CancelFunc, error) {
		return s.backend.Feed.SubscribeFolderDocs(folderID, fn)
	})
}

func (s *ShareService) replaceWatch(watches map[string]repositories.CancelFunc, key string, subscribe func() (repositories.CancelFunc, error)) repositories.CancelFunc {
	s.mu.Lock()
	if prev := watches[key]; prev != nil {
		prev()
	}
	delete(watches, key)
	s.mu.Unlock()

	if s.backend == nil || s.backend.Feed == nil {
		return func() {}
	}
	cancel, err := subscribe()
	if err != nil {
		logger.Warn("subscription failed", zap.String("key", key), zap.Error(err))
		return func() {}
	}

	var once sync.Once
	wrapped := repositories.CancelFunc(func() {
		once.Do(cancel)
	})
	s.mu.Lock()
	watches[key] = wrapped
	s.mu.Unlock()
	return wrapped
}

// StopWatches cancels every live share subscription for email's sign-out.
func (s *ShareService) StopWatches(email string) {
	email = utils.NormalizeEmail(email)
	s.mu.Lock()
	if cancel := s.inviteWatch[email]; cancel != nil {
		cancel()
	}
	delete(s.inviteWatch, email)
	s.mu.Unlock()
}

func unionStrings(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range extra {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
