package idea_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/module/idea"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/service/storage/memory"
)

func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(midsec.CtxUserIDKey, id)
		c.Next()
	}
}

func newRouter(t *testing.T, store storage.Store, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := idea.NewHandler(store)

	r := gin.New()
	r.GET("/api/ideas", h.List)
	r.POST("/api/ideas", asUser(userID), h.Create)
	r.GET("/api/ideas/:id", h.Get)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateThenGet(t *testing.T) {
	store := memory.NewStore()
	r := newRouter(t, store, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/ideas", gin.H{
		"title":       "Garden planner",
		"description": "plan community gardens together",
		"category":    "sustainability",
		"tags":        []string{"green"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		IdeaID string `json:"idea_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.IdeaID)

	w = doJSON(t, r, http.MethodGet, "/api/ideas/"+created.IdeaID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got storage.Idea
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Garden planner", got.Title)
	require.Equal(t, "alice", got.OwnerID)
	require.Equal(t, storage.IdeaStatusActive, got.Status)
}

func TestCreateMissingFields(t *testing.T) {
	r := newRouter(t, memory.NewStore(), "alice")

	w := doJSON(t, r, http.MethodPost, "/api/ideas", gin.H{"title": "no description"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/ideas", gin.H{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownIdea(t *testing.T) {
	r := newRouter(t, memory.NewStore(), "alice")
	w := doJSON(t, r, http.MethodGet, "/api/ideas/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFilters(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.CreateIdea(ctx, &storage.Idea{
		ID: "i1", OwnerID: "alice", Title: "Garden planner", Category: "sustainability", CreatedAt: 100,
	}))
	require.NoError(t, store.CreateIdea(ctx, &storage.Idea{
		ID: "i2", OwnerID: "bob", Title: "Recipe swap", Description: "garden produce recipes", Category: "food", CreatedAt: 200,
	}))
	r := newRouter(t, store, "alice")

	type listResp struct {
		Ideas []storage.Idea `json:"ideas"`
	}
	var resp listResp

	w := doJSON(t, r, http.MethodGet, "/api/ideas?category=food", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 1)
	require.Equal(t, "i2", resp.Ideas[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/ideas?q=garden", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 2)

	w = doJSON(t, r, http.MethodGet, "/api/ideas?owner_id=alice", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 1)
	require.Equal(t, "i1", resp.Ideas[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/ideas", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 2)
}
