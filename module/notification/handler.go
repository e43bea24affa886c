package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

type Handler struct {
	store storage.Store
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListNotifications(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread_count": unread})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	// only the addressee may mark it read
	list, err := h.store.ListNotifications(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	owned := false
	for _, n := range list {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"message": "notification not found"})
		return
	}
	if err := h.store.MarkNotificationRead(c.Request.Context(), id); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}
