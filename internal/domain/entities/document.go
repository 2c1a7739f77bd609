package entities

import "time"

// Document is the metadata record for one archived file. File bytes are not
// part of the record: they live in the local file cache (keyed by ID) and,
// when mirrored, behind DownloadURL in remote blob storage. The ID is the
// join key between the local cache, the remote store and shared-folder
// mirror records.
type Document struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	OriginalFileName string    `json:"originalFileName"`
	Category         string    `json:"category"`
	Org              string    `json:"org"`
	Year             string    `json:"year"`
	Recipient        []string  `json:"recipient"`
	SharedWith       []string  `json:"sharedWith"`
	Owner            string    `json:"owner"`
	SharedFolderID   string    `json:"sharedFolderId,omitempty"`
	UploadedAt       time.Time `json:"uploadedAt"`

	// Warranty dates, ISO YYYY-MM-DD, set only for warranty-category documents.
	WarrantyStart     *string `json:"warrantyStart"`
	WarrantyExpiresAt *string `json:"warrantyExpiresAt"`
	AutoDeleteAfter   *string `json:"autoDeleteAfter"`

	MimeType    string  `json:"mimeType"`
	FileSize    int64   `json:"fileSize"`
	DownloadURL *string `json:"downloadURL"`
	Trashed     bool    `json:"_trashed"`
}

// DocumentPatch is a partial update: nil fields are left untouched.
// Patching never re-runs classification or warranty extraction.
type DocumentPatch struct {
	Title             *string   `json:"title"`
	Category          *string   `json:"category"`
	Org               *string   `json:"org"`
	Year              *string   `json:"year"`
	Recipient         *[]string `json:"recipient"`
	SharedWith        *[]string `json:"sharedWith"`
	SharedFolderID    *string   `json:"sharedFolderId"`
	WarrantyStart     *string   `json:"warrantyStart"`
	WarrantyExpiresAt *string   `json:"warrantyExpiresAt"`
	AutoDeleteAfter   *string   `json:"autoDeleteAfter"`
	Trashed           *bool     `json:"_trashed"`
}

// Apply merges the patch into doc in place, last write wins per field.
func (p *DocumentPatch) Apply(doc *Document) {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Category != nil {
		doc.Category = *p.Category
	}
	if p.Org != nil {
		doc.Org = *p.Org
	}
	if p.Year != nil {
		doc.Year = *p.Year
	}
	if p.Recipient != nil {
		doc.Recipient = *p.Recipient
	}
	if p.SharedWith != nil {
		doc.SharedWith = *p.SharedWith
	}
	if p.SharedFolderID != nil {
		doc.SharedFolderID = *p.SharedFolderID
	}
	if p.WarrantyStart != nil {
		doc.WarrantyStart = p.WarrantyStart
	}
	if p.WarrantyExpiresAt != nil {
		doc.WarrantyExpiresAt = p.WarrantyExpiresAt
	}
	if p.AutoDeleteAfter != nil {
		doc.AutoDeleteAfter = p.AutoDeleteAfter
	}
	if p.Trashed != nil {
		doc.Trashed = *p.Trashed
	}
}

// SortField selects the ordering for list views.
type SortField string

const (
	SortByUploadedAt        SortField = "uploadedAt"
	SortByTitle             SortField = "title"
	SortByCategory          SortField = "category"
	SortByOrg               SortField = "org"
	SortByYear              SortField = "year"
	SortByWarrantyStart     SortField = "warrantyStart"
	SortByWarrantyExpiresAt SortField = "warrantyExpiresAt"
	SortByAutoDeleteAfter   SortField = "autoDeleteAfter"
)

type SortSpec struct {
	Field     SortField
	Ascending bool
}
