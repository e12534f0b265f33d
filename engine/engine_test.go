package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/store"
)

// fakeMedia is an in-memory media.Store that records every upload and delete
// and can be told to fail either operation.
type fakeMedia struct {
	mu         sync.Mutex
	nextID     int
	objects    map[string][]byte
	deleted    []string
	failUpload error
	failDelete map[string]error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		objects:    make(map[string][]byte),
		failDelete: make(map[string]error),
	}
}

func (f *fakeMedia) Upload(ctx context.Context, data []byte, folder, originalName string) (media.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload != nil {
		return media.Reference{}, f.failUpload
	}
	f.nextID++
	key := fmt.Sprintf("%s/img-%d", folder, f.nextID)
	f.objects[key] = data
	return media.Reference{Key: key, URL: "/static/media/" + key}, nil
}

func (f *fakeMedia) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failDelete[key]; ok {
		return err
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeMedia) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, store.Stores, *fakeMedia) {
	t.Helper()
	stores := store.NewMemory()
	mediaStore := newFakeMedia()
	defaults := media.NewDefaults("/static/media", 3, rand.New(rand.NewSource(1)))
	e := New(stores, mediaStore, defaults, zap.NewNop().Sugar())
	e.now = func() time.Time { return testTime }
	return e, stores, mediaStore
}

func adultDOB() time.Time {
	return testTime.AddDate(-30, 0, 0)
}

// pngUpload is a minimal payload that passes image validation.
func pngUpload() *ImageUpload {
	return &ImageUpload{
		Data:         []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
		OriginalName: "photo.png",
		ContentType:  "image/png",
	}
}

func mustSignup(t *testing.T, e *Engine, email string) (*models.User, *Identity) {
	t.Helper()
	user, err := e.Signup(context.Background(), SignupInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           email,
		DOB:             adultDOB(),
		Password:        "hunter22",
		PasswordConfirm: "hunter22",
	})
	require.NoError(t, err)
	return user, &Identity{UserID: user.ID, Email: user.Email}
}

func mustCreatePost(t *testing.T, e *Engine, ident *Identity, title string, published bool) *models.Post {
	t.Helper()
	post, err := e.CreatePost(context.Background(), ident, PostInput{
		Title:       title,
		Content:     "<p>some content</p>",
		Description: "a short description",
		Published:   published,
	})
	require.NoError(t, err)
	return post
}
