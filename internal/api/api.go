package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/celerix-dev/celerix-attach/internal/attach"
	"github.com/celerix-dev/celerix-attach/internal/store"
	"github.com/celerix-dev/celerix-attach/internal/tasks"
	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

// ItemStore is the persistence the handlers need.
type ItemStore interface {
	PutItem(ctx context.Context, it schema.Item) error
	GetItem(ctx context.Context, id string) (schema.Item, error)
	ListItems(ctx context.Context) ([]schema.Item, error)
	SetItemAttachment(ctx context.Context, id, field, path string) error
	DeleteItem(ctx context.Context, id string) error
}

type Handler struct {
	Store  ItemStore
	Attach *attach.Attacher
}

// Register mounts the handlers on r. The tasks middleware must already be
// installed for background deletions to run.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/ping", h.Ping)
	r.GET("/items", h.ListItems)
	r.GET("/items/:id", h.GetItem)
	r.POST("/items", h.CreateItem)
	r.PUT("/items/:id/photo", h.ReplacePhoto)
	r.PUT("/items/:id/file", h.ReplaceFile)
	r.DELETE("/items/:id/photo", h.ClearPhoto)
	r.DELETE("/items/:id/file", h.ClearFile)
	r.DELETE("/items/:id", h.DeleteItem)
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.Store.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c *gin.Context) {
	it, err := h.Store.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// CreateItem stores the optional photo and file parts, then the row. When
// the row cannot be stored the just-written files are removed again.
func (h *Handler) CreateItem(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	now := time.Now().UTC()
	it := schema.Item{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	parts := []struct {
		field string
		kind  attach.Kind
	}{
		{schema.FieldPhoto, attach.KindPhoto},
		{schema.FieldFile, attach.KindFile},
	}
	for _, p := range parts {
		fh, err := c.FormFile(p.field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			h.discard(it.AttachmentPaths())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		path, err := h.Attach.Save(attach.FromFileHeader(fh), &it, p.kind)
		if err != nil {
			h.discard(it.AttachmentPaths())
			respondError(c, err)
			return
		}
		it.SetAttachmentPath(p.field, path)
	}

	if err := h.Store.PutItem(c.Request.Context(), it); err != nil {
		h.discard(it.AttachmentPaths())
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h *Handler) ReplacePhoto(c *gin.Context) {
	h.replace(c, schema.FieldPhoto, attach.KindPhoto)
}

func (h *Handler) ReplaceFile(c *gin.Context) {
	h.replace(c, schema.FieldFile, attach.KindFile)
}

func (h *Handler) replace(c *gin.Context, field string, kind attach.Kind) {
	ctx := c.Request.Context()

	it, err := h.Store.GetItem(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := h.Attach.Replace(attach.FromFileHeader(fh), &it, field, tasks.FromContext(c), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Store.SetItemAttachment(ctx, it.ID, field, path); err != nil {
		h.discard([]string{path})
		respondError(c, err)
		return
	}
	it.SetAttachmentPath(field, path)
	c.JSON(http.StatusOK, it)
}

func (h *Handler) ClearPhoto(c *gin.Context) {
	h.clear(c, schema.FieldPhoto)
}

func (h *Handler) ClearFile(c *gin.Context) {
	h.clear(c, schema.FieldFile)
}

// clear deletes the attachment synchronously and empties the column. A
// stored path outside the root is left on disk but still cleared.
func (h *Handler) clear(c *gin.Context, field string) {
	ctx := c.Request.Context()

	it, err := h.Store.GetItem(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	deleted := false
	if old := it.AttachmentPath(field); old != "" {
		deleted, err = h.Attach.Delete(old)
		if errors.Is(err, attach.ErrOutsideRoot) {
			log.Printf("Warning: leaving %s in place, it is outside the attachment root", old)
		} else if err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.Store.SetItemAttachment(ctx, it.ID, field, ""); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// DeleteItem removes the row and schedules deletion of its attachments.
func (h *Handler) DeleteItem(c *gin.Context) {
	ctx := c.Request.Context()

	it, err := h.Store.GetItem(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.DeleteItem(ctx, it.ID); err != nil {
		respondError(c, err)
		return
	}

	q := tasks.FromContext(c)
	for _, p := range it.AttachmentPaths() {
		p := p
		q.Add("delete "+p, func() error {
			_, err := h.Attach.Delete(p)
			return err
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// discard removes files written by a request that then failed.
func (h *Handler) discard(paths []string) {
	for _, p := range paths {
		if _, err := h.Attach.Delete(p); err != nil {
			log.Printf("Warning: could not remove orphaned upload %s: %v", p, err)
		}
	}
}

func respondError(c *gin.Context, err error) {
	var ae *attach.Error
	switch {
	case errors.As(err, &ae):
		c.JSON(ae.Status, gin.H{"error": ae.Detail})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, attach.ErrOutsideRoot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
