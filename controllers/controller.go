package controllers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/middleware"
	"github.com/nordblog/blogapi/utils"
)

var errImageTooLarge = errors.New("uploaded image exceeds the size limit")

// identityFrom builds the engine identity from the values the auth
// middleware stored in the context. Nil means anonymous.
func identityFrom(ctx *gin.Context) *engine.Identity {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return nil
	}
	userID, ok := value.(uint)
	if !ok {
		return nil
	}
	return &engine.Identity{UserID: userID, Email: ctx.GetString(middleware.ContextEmailKey)}
}

// respondEngineError maps the engine's typed failure kinds onto HTTP status
// codes and the uniform JSON envelope.
func respondEngineError(ctx *gin.Context, err error) {
	msg := engine.Message(err)
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		utils.Error(ctx, http.StatusNotFound, 40400, msg)
	case engine.KindUnauthenticated:
		utils.Error(ctx, http.StatusUnauthorized, 40100, msg)
	case engine.KindUnauthorized:
		utils.Error(ctx, http.StatusUnauthorized, 40110, msg)
	case engine.KindValidation:
		utils.Error(ctx, http.StatusBadRequest, 40000, msg)
	case engine.KindConflict:
		utils.Error(ctx, http.StatusConflict, 40900, msg)
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorw("unexpected engine failure", "error", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, msg)
	}
}

// formImage reads an optional multipart image field. A missing file or a
// non-multipart request yields (nil, nil).
func formImage(ctx *gin.Context, field string) (*engine.ImageUpload, error) {
	file, header, err := ctx.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > engine.MaxImageBytes {
		return nil, errImageTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, engine.MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > engine.MaxImageBytes {
		return nil, errImageTooLarge
	}

	return &engine.ImageUpload{
		Data:         data,
		OriginalName: filepath.Base(header.Filename),
		ContentType:  header.Header.Get("Content-Type"),
	}, nil
}

// respondImageError maps upload read failures, distinguishing oversized
// payloads (413) from malformed multipart bodies (400).
func respondImageError(ctx *gin.Context, err error) {
	if errors.Is(err, errImageTooLarge) {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large, max size is 2MB")
		return
	}
	utils.Error(ctx, http.StatusBadRequest, 40030, "invalid file upload")
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
