package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/utils"
)

// PostController manages CRUD operations for posts.
type PostController struct {
	engine *engine.Engine
}

// NewPostController creates a new PostController instance.
func NewPostController(e *engine.Engine) *PostController {
	return &PostController{engine: e}
}

type postRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Content     string `form:"content" json:"content" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
	Published   bool   `form:"published" json:"published"`
}

// CreatePost allows authenticated users to create new posts, optionally with
// a multipart cover photo.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	photo, err := formImage(ctx, "photo")
	if err != nil {
		respondImageError(ctx, err)
		return
	}

	post, err := p.engine.CreatePost(ctx.Request.Context(), identityFrom(ctx), engine.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Published:   req.Published,
		Photo:       photo,
	})
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")

	utils.Created(ctx, gin.H{"post": post})
}

// ListPosts returns every published post with comment counts, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:posts:list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.engine.ListPublishedPosts(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	payload := gin.H{"items": posts}
	utils.CacheSetJSON("cache:posts:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns a single post with its comment count. Drafts are served
// only to their author, resolved best-effort from the bearer token.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid post id")
		return
	}

	ident := identityFrom(ctx)
	if ident == nil {
		// only the anonymous view of a published post is cacheable
		if b, ok := utils.CacheGetBytes("cache:post:detail:" + ctx.Param("id")); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	post, err := p.engine.GetPost(ctx.Request.Context(), ident, postID)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	payload := gin.H{"post": post}
	if ident == nil && post.Published {
		utils.CacheSetJSON("cache:post:detail:"+ctx.Param("id"), utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// ListMyPosts returns every post the authenticated caller authored, drafts
// included.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	posts, err := p.engine.ListPostsByAuthor(ctx.Request.Context(), identityFrom(ctx))
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// UpdatePost allows the author to update their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid post id")
		return
	}

	var req postRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	photo, err := formImage(ctx, "photo")
	if err != nil {
		respondImageError(ctx, err)
		return
	}

	post, err := p.engine.UpdatePost(ctx.Request.Context(), identityFrom(ctx), postID, engine.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Published:   req.Published,
		Photo:       photo,
	})
	if err != nil {
		if engine.CleanupFailed(err) {
			// the update committed; the cache must not keep serving the old post
			utils.InvalidateByPrefix("cache:posts:list")
			utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))
		}
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost allows the author to delete their post and all its comments.
// The request must repeat the post's exact current title as confirmation.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid post id")
		return
	}

	var req struct {
		Confirmation string `form:"confirmation" json:"confirmation"`
	}
	_ = ctx.ShouldBind(&req)

	if err := p.engine.DeletePost(ctx.Request.Context(), identityFrom(ctx), postID, req.Confirmation); err != nil {
		if engine.CleanupFailed(err) {
			// the records are gone; the cache must not keep serving them
			utils.InvalidateByPrefix("cache:posts:list")
			utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))
		}
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))

	utils.Success(ctx, gin.H{"message": "the post and its comments were deleted successfully"})
}
