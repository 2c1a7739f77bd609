package dto

import (
	"github.com/danateck/eco-file-system/internal/domain/entities"
)

type FolderCreateRequest struct {
	Name   string   `json:"name" binding:"required"`
	Invite []string `json:"invite"`
}

type FolderListResponse struct {
	Folders []*entities.SharedFolder `json:"folders"`
}

type InviteRequest struct {
	ToEmail    string `json:"toEmail" binding:"required"`
	FolderID   string `json:"folderId" binding:"required"`
	FolderName string `json:"folderName" binding:"required"`
}

type InviteListResponse struct {
	Invites []*entities.ShareInvite `json:"invites"`
}

type InviteRespondRequest struct {
	Accept bool `json:"accept"`
}

type ShareDocumentRequest struct {
	FolderID string `json:"folderId" binding:"required"`
}

type FolderDocsResponse struct {
	Docs []*entities.SharedDocRecord `json:"docs"`
}

type FolderMembersResponse struct {
	Members []string `json:"members"`
}
