package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
	toolsec "github.com/GitSid-glitch/cobuild/tools/security"
)

type Handler struct {
	store storage.Store
	jwt   toolsec.Options
}

func NewHandler(store storage.Store, jwt toolsec.Options) *Handler {
	return &Handler{store: store, jwt: jwt}
}

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.Wrap(err))
		return
	}
	if !strings.Contains(req.Email, "@") || len(req.Password) < 6 {
		c.JSON(http.StatusUnprocessableEntity, errs.ErrArgs.WithDetail("invalid email or password too short"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrPersistence.Wrap(err))
		return
	}
	now := time.Now().UnixMilli()
	u := &storage.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		if errs.ErrDuplicate.Is(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created", "user_id": u.ID})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, errs.ErrArgs.WithDetail("email and password required"))
		return
	}
	u, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	token, exp, err := toolsec.Generate(h.jwt, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UnixMilli(),
		"user":       u,
	})
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.store.GetUser(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type profileReq struct {
	FullName  string   `json:"full_name"`
	Bio       string   `json:"bio"`
	AvatarURL string   `json:"avatar_url"`
	Skills    []string `json:"skills"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.Wrap(err))
		return
	}
	u := &storage.User{
		ID:        midsec.UserID(c),
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Skills:    req.Skills,
	}
	if err := h.store.UpdateProfile(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}
