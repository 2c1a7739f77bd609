package dto

import (
	"github.com/danateck/eco-file-system/internal/domain/entities"
)

// DocumentMeta is the metadata half of the multipart upload form.
type DocumentMeta struct {
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Org       string   `json:"org"`
	Year      string   `json:"year"`
	Recipient []string `json:"recipient"`
}

type DocumentListRequest struct {
	Sort    string `form:"sort,omitempty"`
	Order   string `form:"order,omitempty"`
	Trashed bool   `form:"trashed,omitempty"`
}

type DocumentListResponse struct {
	Docs []*entities.Document `json:"docs"`
}

type DocumentUpdateRequest struct {
	Patch *entities.DocumentPatch `json:"patch" binding:"required"`
}

type DocumentDeleteResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

type PurgeResponse struct {
	Purged []string `json:"purged"`
}

type SyncResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

type StatusResponse struct {
	Online bool `json:"online"`
}
