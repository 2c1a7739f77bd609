package entities

import "time"

// SharedFolder is a named collection multiple users can tag documents into.
// Membership is authoritative on the owner's record; member copies are caches
// that reconcile against it.
type SharedFolder struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRejected InviteStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s InviteStatus) Terminal() bool {
	return s == InviteAccepted || s == InviteRejected
}

// ShareInvite is a folder-sharing invitation. Lifecycle: created pending by
// the inviter, then moved exactly once to accepted or rejected; never reverts.
type ShareInvite struct {
	ID         string       `json:"id" db:"id"`
	FolderID   string       `json:"folderId" db:"folder_id"`
	FolderName string       `json:"folderName" db:"folder_name"`
	FromEmail  string       `json:"fromEmail" db:"from_email"`
	ToEmail    string       `json:"toEmail" db:"to_email"`
	Status     InviteStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" db:"updated_at"`
}

// SharedDocRecord is the denormalized mirror of a document written into the
// shared-docs collection so folder members can list a folder without read
// access to the owner's private document list. Keyed owner_docID; updated on
// sync passes, not transactionally with the document write.
type SharedDocRecord struct {
	RecID             string    `json:"recId"`
	FolderID          string    `json:"folderId"`
	OwnerEmail        string    `json:"ownerEmail"`
	DocID             string    `json:"id"`
	Title             string    `json:"title"`
	FileName          string    `json:"fileName"`
	Category          string    `json:"category"`
	UploadedAt        time.Time `json:"uploadedAt"`
	WarrantyStart     *string   `json:"warrantyStart"`
	WarrantyExpiresAt *string   `json:"warrantyExpiresAt"`
	Org               string    `json:"org"`
	Year              string    `json:"year"`
	Recipient         []string  `json:"recipient"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// MirrorRecID builds the shared-docs key for an owner/document pair.
func MirrorRecID(ownerEmail, docID string) string {
	return ownerEmail + "_" + docID
}
