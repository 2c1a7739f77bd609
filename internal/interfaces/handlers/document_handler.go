package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/services"
	"github.com/danateck/eco-file-system/internal/interfaces/dto"
)

type DocumentHandler struct {
	documentSvc *services.DocumentService
	extractSvc  *services.ExtractService
	syncSvc     *services.SyncService
}

func NewDocumentHandler(
	documentSvc *services.DocumentService,
	extractSvc *services.ExtractService,
	syncSvc *services.SyncService,
) *DocumentHandler {
	return &DocumentHandler{
		documentSvc: documentSvc,
		extractSvc:  extractSvc,
		syncSvc:     syncSvc,
	}
}

// Open loads the signed-in user's archive and starts live updates.
func (h *DocumentHandler) Open(c *gin.Context) {
	user := currentUser(c)
	docs, err := h.documentSvc.Open(c.Request.Context(), user.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.DocumentListResponse{Docs: docs}, nil)
}

func (h *DocumentHandler) List(c *gin.Context) {
	user := currentUser(c)

	var req dto.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "invalid query parameters")
		return
	}

	spec := entities.SortSpec{Field: entities.SortByUploadedAt}
	if req.Sort != "" {
		spec.Field = entities.SortField(req.Sort)
	}
	spec.Ascending = req.Order == "asc"

	docs := h.documentSvc.List(user.Email, spec, req.Trashed)
	respondWithSuccess(c, dto.DocumentListResponse{Docs: docs}, nil)
}

// Create accepts a multipart form: a "file" part with the bytes and a "meta"
// part with optional JSON metadata. Category and warranty dates are derived
// when the uploader leaves them blank.
func (h *DocumentHandler) Create(c *gin.Context) {
	user := currentUser(c)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil { // 32MB
		respondWithError(c, http.StatusBadRequest, 400, "failed to parse multipart form")
		return
	}

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "failed to read file")
		return
	}

	var meta dto.DocumentMeta
	if metaStr := c.Request.FormValue("meta"); metaStr != "" {
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			respondWithError(c, http.StatusBadRequest, 400, "invalid meta format")
			return
		}
	}

	doc := &entities.Document{
		Title:            meta.Title,
		OriginalFileName: fileHeader.Filename,
		Category:         meta.Category,
		Org:              meta.Org,
		Year:             meta.Year,
		Recipient:        meta.Recipient,
		MimeType:         fileHeader.Header.Get("Content-Type"),
	}
	h.extractSvc.Enrich(c.Request.Context(), doc, data)

	doc, err = h.documentSvc.Add(c.Request.Context(), user.Email, doc, data)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondWithSuccess(c, doc, nil)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	user := currentUser(c)
	doc, err := h.documentSvc.Get(user.Email, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, doc, nil)
}

// Download streams the cached bytes of a document, or redirects to the blob
// URL when nothing is cached locally.
func (h *DocumentHandler) Download(c *gin.Context) {
	user := currentUser(c)
	mimeType, data, err := h.documentSvc.FileBytes(c.Request.Context(), user.Email, c.Param("id"))
	if err != nil {
		// Not cached locally: hand the client the blob URL instead.
		if doc, derr := h.documentSvc.Get(user.Email, c.Param("id")); derr == nil &&
			doc.DownloadURL != nil && *doc.DownloadURL != "" {
			c.Redirect(http.StatusFound, *doc.DownloadURL)
			return
		}
		handleServiceError(c, err)
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, data)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	user := currentUser(c)

	var req dto.DocumentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, 400, "patch is required")
		return
	}

	doc, err := h.documentSvc.Update(c.Request.Context(), user.Email, c.Param("id"), req.Patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, doc, nil)
}

// Delete moves a document to the trash; ?hard=true removes it permanently.
func (h *DocumentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	var err error
	if c.Query("hard") == "true" {
		err = h.documentSvc.HardDelete(c.Request.Context(), user.Email, id)
	} else {
		err = h.documentSvc.SoftDelete(c.Request.Context(), user.Email, id)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.DocumentDeleteResponse{ID: id, Success: true}, nil)
}

func (h *DocumentHandler) Restore(c *gin.Context) {
	user := currentUser(c)
	if err := h.documentSvc.Restore(c.Request.Context(), user.Email, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.DocumentDeleteResponse{ID: c.Param("id"), Success: true}, nil)
}

// PurgeExpired removes warranty documents past their auto-delete date.
func (h *DocumentHandler) PurgeExpired(c *gin.Context) {
	user := currentUser(c)
	purged := h.documentSvc.PurgeExpired(c.Request.Context(), user.Email, time.Now())
	respondWithSuccess(c, dto.PurgeResponse{Purged: purged}, nil)
}

// SyncToCloud pushes local-only documents to the backend.
func (h *DocumentHandler) SyncToCloud(c *gin.Context) {
	user := currentUser(c)
	synced, failed, err := h.documentSvc.SyncLocalToCloud(c.Request.Context(), user.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondWithSuccess(c, dto.SyncResponse{Synced: synced, Failed: failed}, nil)
}

// Status reports backend reachability.
func (h *DocumentHandler) Status(c *gin.Context) {
	respondWithSuccess(c, dto.StatusResponse{Online: h.syncSvc.Available(c.Request.Context())}, nil)
}
