package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danateck/eco-file-system/internal/domain/services"
	"github.com/danateck/eco-file-system/internal/interfaces/dto"
)

type ShareHandler struct {
	shareSvc *services.ShareService
}

func NewShareHandler(shareSvc *services.ShareService) *ShareHandler {
	return &ShareHandler{shareSvc: shareSvc}
}

func (h *ShareHandler) CreateFolder(c *gin.Context) {
	user := currentUser(c)

	var req dto.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "folder name is required")
		return
	}

	folder, err := h.shareSvc.CreateFolder(c.Request.Context(), user.Email, req.Name, req.Invite...)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, folder, nil)
}

func (h *ShareHandler) ListFolders(c *gin.Context) {
	user := currentUser(c)
	folders, err := h.shareSvc.Folders(c.Request.Context(), user.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.FolderListResponse{Folders: folders}, nil)
}

func (h *ShareHandler) SendInvite(c *gin.Context) {
	user := currentUser(c)

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "toEmail, folderId and folderName are required")
		return
	}

	invite, err := h.shareSvc.SendInvite(c.Request.Context(), user.Email, req.ToEmail, req.FolderID, req.FolderName)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, invite, nil)
}

func (h *ShareHandler) PendingInvites(c *gin.Context) {
	user := currentUser(c)
	invites, err := h.shareSvc.PendingInvites(c.Request.Context(), user.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.InviteListResponse{Invites: invites}, nil)
}

func (h *ShareHandler) RespondToInvite(c *gin.Context) {
	user := currentUser(c)

	var req dto.InviteRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "invalid response body")
		return
	}

	invite, err := h.shareSvc.RespondToInvite(c.Request.Context(), user.Email, c.Param("id"), req.Accept)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, invite, nil)
}

// ShareDocument tags one of the caller's documents into a shared folder.
func (h *ShareHandler) ShareDocument(c *gin.Context) {
	user := currentUser(c)

	var req dto.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "folderId is required")
		return
	}

	doc, err := h.shareSvc.ShareDocument(c.Request.Context(), user.Email, c.Param("id"), req.FolderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, doc, nil)
}

func (h *ShareHandler) FolderMembers(c *gin.Context) {
	user := currentUser(c)
	members, err := h.shareSvc.FolderMembers(c.Request.Context(), user.Email, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.FolderMembersResponse{Members: members}, nil)
}

func (h *ShareHandler) FolderDocs(c *gin.Context) {
	docs, err := h.shareSvc.FolderDocs(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.FolderDocsResponse{Docs: docs}, nil)
}

// Reconcile recomputes the caller's mirror records for one folder.
func (h *ShareHandler) Reconcile(c *gin.Context) {
	user := currentUser(c)
	if err := h.shareSvc.ReconcileFolder(c.Request.Context(), user.Email, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, gin.H{"success": true}, nil)
}
