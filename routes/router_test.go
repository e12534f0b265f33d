package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/store"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	// every request comes from the same test client address
	t.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	t.Setenv("GIN_MODE", "test")

	stores := store.NewMemory()
	mediaStore := media.NewDiskStore(t.TempDir(), "/static/media")
	defaults := media.NewDefaults("/static/media", 3, rand.New(rand.NewSource(1)))
	e := engine.New(stores, mediaStore, defaults, zap.NewNop().Sugar())

	return SetupRouter(e, nil)
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"first_name":       "Jane",
		"last_name":        "Doe",
		"email":            email,
		"dob":              "1990-04-01",
		"password":         "hunter22",
		"password_confirm": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/login", "", gin.H{
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func createPostHTTP(t *testing.T, r *gin.Engine, token, title string, published bool) uint {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/posts", token, gin.H{
		"title":       title,
		"content":     "<p>content</p>",
		"description": "desc",
		"published":   published,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Post struct {
				ID uint `json:"id"`
			} `json:"post"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.Post.ID)
	return resp.Data.Post.ID
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)
	w := doJSON(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupLoginAndProfile(t *testing.T) {
	r := newTestServer(t)
	token := signupAndLogin(t, r, "jane@example.com")

	w := doJSON(r, http.MethodGet, "/api/v1/user", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
}

func TestDuplicateSignupConflict(t *testing.T) {
	r := newTestServer(t)
	signupAndLogin(t, r, "jane@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"first_name":       "Other",
		"last_name":        "Person",
		"email":            "jane@example.com",
		"dob":              "1990-04-01",
		"password":         "hunter22",
		"password_confirm": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/api/v1/posts", "", gin.H{
		"title": "T", "content": "c", "description": "d",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/user", "", gin.H{"password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	r := newTestServer(t)
	author := signupAndLogin(t, r, "author@example.com")
	other := signupAndLogin(t, r, "other@example.com")

	draftID := createPostHTTP(t, r, author, "My Draft", false)
	path := fmt.Sprintf("/api/v1/posts/%d", draftID)

	// drafts are hidden from the public list and from other callers
	w := doJSON(r, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "My Draft")

	w = doJSON(r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodGet, path, author, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// only the owner can edit
	update := gin.H{"title": "My Draft", "content": "c", "description": "d", "published": true}
	w = doJSON(r, http.MethodPut, path, other, update)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodPut, path, author, update)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// once published it shows up publicly and can't go back to draft
	w = doJSON(r, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Contains(t, w.Body.String(), "My Draft")

	update["published"] = false
	w = doJSON(r, http.MethodPut, path, author, update)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// delete demands the exact title as confirmation
	w = doJSON(r, http.MethodDelete, path, author, gin.H{"confirmation": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(r, http.MethodDelete, path, author, gin.H{"confirmation": "My Draft"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, path, author, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentFlowOverHTTP(t *testing.T) {
	r := newTestServer(t)
	author := signupAndLogin(t, r, "author@example.com")
	reader := signupAndLogin(t, r, "reader@example.com")

	postID := createPostHTTP(t, r, author, "Discussed", true)
	base := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	// anonymous callers can read but not write
	w := doJSON(r, http.MethodPost, base, "", gin.H{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, base, reader, gin.H{"content": "great read"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Comment struct {
				ID uint `json:"id"`
			} `json:"comment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	commentPath := fmt.Sprintf("%s/%d", base, resp.Data.Comment.ID)

	w = doJSON(r, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great read")

	// the post author does not own the reader's comment
	w = doJSON(r, http.MethodPut, commentPath, author, gin.H{"content": "edited"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodDelete, commentPath, author, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPut, commentPath, reader, gin.H{"content": "edited"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodDelete, commentPath, reader, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCommentOnMissingPost(t *testing.T) {
	r := newTestServer(t)
	token := signupAndLogin(t, r, "jane@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/posts/999/comments", token, gin.H{"content": "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestServer(t)
	token := signupAndLogin(t, r, "jane@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/v1/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteAccountOverHTTP(t *testing.T) {
	r := newTestServer(t)
	token := signupAndLogin(t, r, "leaving@example.com")
	postID := createPostHTTP(t, r, token, "Going Away", true)

	// wrong password leaves the account alone
	w := doJSON(r, http.MethodDelete, "/api/v1/user", token, gin.H{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/user", token, gin.H{"password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the post went with the account
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", postID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
