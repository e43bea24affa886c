package collab

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type joinReq struct {
	Role string `json:"role"`
}

func (h *Handler) Join(c *gin.Context) {
	var req joinReq
	_ = c.ShouldBindJSON(&req) // role is optional
	collab, err := h.svc.Request(c.Request.Context(), c.Param("id"), midsec.UserID(c), req.Role)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, collab)
}

func (h *Handler) Accept(c *gin.Context) {
	if err := h.svc.Accept(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request accepted"})
}

func (h *Handler) Decline(c *gin.Context) {
	if err := h.svc.Decline(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request declined"})
}

func (h *Handler) ListMine(c *gin.Context) {
	collabs, err := h.svc.ListMine(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collaborations": collabs})
}

func writeErr(c *gin.Context, err error) {
	switch {
	case errs.ErrRecordNotFound.Is(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errs.ErrDuplicate.Is(err):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errs.ErrNoPermission.Is(err):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errs.ErrArgs.Is(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
