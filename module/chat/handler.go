package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/service/relay"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

// Handler serves the conversation REST surface: history fetch for
// reconnecting clients, read receipts, and presence.
type Handler struct {
	store storage.MessageStore
	srv   *relay.Server
}

func NewHandler(store storage.MessageStore, srv *relay.Server) *Handler {
	return &Handler{store: store, srv: srv}
}

func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.store.ListChats(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// ListMessages returns the chat's messages ordered by creation time;
// messages persisted while the receiver was offline surface here.
func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.store.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	if err := h.store.MarkMessageRead(c.Request.Context(), c.Param("id")); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

// Presence reports whether a user is reachable. The local registry is
// authoritative for this node; users attached to another node show up
// through the redis mirror. Mirror errors (redis down or disabled)
// degrade to the local answer.
func (h *Handler) Presence(c *gin.Context) {
	userID := c.Param("user_id")
	online := h.srv.IsOnline(userID)
	node := ""
	if !online {
		if n, ok, err := storage.PresenceLookup(c.Request.Context(), userID); err == nil && ok {
			online = true
			node = n
		}
	}
	resp := gin.H{"user_id": userID, "online": online}
	if node != "" {
		resp["node"] = node
	}
	c.JSON(http.StatusOK, resp)
}
