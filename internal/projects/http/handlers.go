package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/auth"
	"github.com/collabhub-dev/collab-backend/internal/files"
	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
	"github.com/collabhub-dev/collab-backend/internal/projects/service"
)

// create handles multipart project creation: form fields plus any
// number of "files" parts.
func (h *Handler) create(c *gin.Context) {
	actor := auth.CurrentUser(c)

	submitted, err := h.readUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid upload: " + err.Error()})
		return
	}

	p, warn, err := h.svc.Create(c.Request.Context(), actor, service.CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		AssignedTo:  c.PostForm("assigned_to"),
		Files:       submitted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, projectResponse(p, warn))
}

func (h *Handler) get(c *gin.Context) {
	actor := auth.CurrentUser(c)

	p, err := h.svc.Read(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	actor := auth.CurrentUser(c)

	items, err := h.svc.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// update handles multipart edits. Durable attachments the caller wants
// to keep arrive as repeated "keep" fields (storage keys); new files
// arrive as "files" parts. A key missing from "keep" means the caller
// removed that attachment.
func (h *Handler) update(c *gin.Context) {
	actor := auth.CurrentUser(c)

	submitted, err := h.readUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid upload: " + err.Error()})
		return
	}
	for _, key := range c.PostFormArray("keep") {
		submitted = append(submitted, files.SubmittedFile{
			Attachment: domain.FileAttachment{SanitizedPath: key},
		})
	}

	patch := service.UpdatePatch{}
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("assigned_to"); ok {
		patch.AssignedTo = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		patch.Status = &v
	}

	p, warn, err := h.svc.Update(c.Request.Context(), actor, c.Param("id"), patch, submitted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectResponse(p, warn))
}

func (h *Handler) delete(c *gin.Context) {
	actor := auth.CurrentUser(c)

	if err := h.svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// checkTitle runs one immediate advisory uniqueness check. The client
// owns the debounce for keystroke-driven checks; this endpoint is the
// query it fires after quiescence.
func (h *Handler) checkTitle(c *gin.Context) {
	res, err := h.svc.CheckTitle(c.Request.Context(), c.Query("title"), c.Query("exclude"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

func (h *Handler) readUploads(c *gin.Context) ([]files.SubmittedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	out := make([]files.SubmittedFile, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, files.SubmittedFile{
			Attachment: domain.FileAttachment{Name: fh.Filename},
			Data:       data,
		})
	}
	return out, nil
}
