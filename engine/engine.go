// Package engine centralizes authorization checks and multi-step mutation
// workflows for users, posts and comments. Every mutation path performs the
// ownership check here, so no controller can forget it.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/store"
)

// MaxImageBytes caps uploaded image payloads.
const MaxImageBytes = 2 * 1024 * 1024

// Identity is the resolved caller derived from a verified credential. The
// verifier does not re-check the user against the store; operations that
// need the record load it themselves.
type Identity struct {
	UserID uint
	Email  string
}

// ImageUpload carries the raw bytes of an uploaded image.
type ImageUpload struct {
	Data         []byte
	OriginalName string
	ContentType  string
}

// Engine executes validated mutations against the entity and media stores.
// It is stateless between calls and safe for concurrent use.
type Engine struct {
	stores   store.Stores
	media    media.Store
	defaults *media.Defaults
	log      *zap.SugaredLogger
	now      func() time.Time
}

// New creates an Engine.
func New(stores store.Stores, mediaStore media.Store, defaults *media.Defaults, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		stores:   stores,
		media:    mediaStore,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

func validateImage(up *ImageUpload) error {
	if len(up.Data) == 0 {
		return invalid("photo", "uploaded image is empty")
	}
	if len(up.Data) > MaxImageBytes {
		return invalid("photo", "image exceeds the 2MB size limit")
	}
	if up.ContentType != "image/png" && up.ContentType != "image/jpeg" {
		return invalid("photo", "only png and jpeg images are accepted")
	}
	return nil
}

// uploadImage validates and stores an uploaded image, returning the
// persisted Image value.
func (e *Engine) uploadImage(ctx context.Context, up *ImageUpload, folder string) (models.Image, error) {
	if err := validateImage(up); err != nil {
		return models.Image{}, err
	}
	ref, err := e.media.Upload(ctx, up.Data, folder, up.OriginalName)
	if err != nil {
		return models.Image{}, upstream("image upload", err)
	}
	return models.Image{
		IsDefault:    false,
		StorageKey:   ref.Key,
		OriginalName: up.OriginalName,
		URL:          ref.URL,
	}, nil
}

// releaseMedia deletes the given non-default storage keys. Failures are
// logged and recorded for the janitor; the caller's committed state is never
// rolled back.
func (e *Engine) releaseMedia(ctx context.Context, keys ...string) error {
	failed := 0
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := e.media.Delete(ctx, key); err != nil {
			e.log.Errorw("media delete failed", "key", key, "error", err)
			if recErr := e.stores.Orphans().Record(ctx, key, err.Error()); recErr != nil {
				e.log.Errorw("recording orphaned media failed", "key", key, "error", recErr)
			}
			failed++
		}
	}
	if failed > 0 {
		return &Error{
			Kind:    KindUpstream,
			Msg:     "media cleanup failed",
			Err:     fmt.Errorf("%d object(s) left behind", failed),
			cleanup: true,
		}
	}
	return nil
}
