package idea

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

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

type createReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Attachments []string `json:"attachments"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.Wrap(err))
		return
	}
	if req.Title == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing required fields"})
		return
	}
	now := time.Now().UnixMilli()
	idea := &storage.Idea{
		ID:             uuid.NewString(),
		OwnerID:        midsec.UserID(c),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Tags:           req.Tags,
		AttachmentURLs: req.Attachments,
		Status:         storage.IdeaStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.CreateIdea(c.Request.Context(), idea); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "idea created", "idea_id": idea.ID})
}

func (h *Handler) List(c *gin.Context) {
	f := storage.IdeaFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		OwnerID:  c.Query("owner_id"),
	}
	ideas, err := h.store.ListIdeas(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

func (h *Handler) Get(c *gin.Context) {
	idea, err := h.store.GetIdea(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "idea not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, idea)
}
