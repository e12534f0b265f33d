package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/utils"
)

// CommentController manages comments nested under their parent post.
type CommentController struct {
	engine *engine.Engine
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(e *engine.Engine) *CommentController {
	return &CommentController{engine: e}
}

type commentRequest struct {
	Content string `form:"content" json:"content" binding:"required"`
}

// CreateComment allows authenticated users to comment on an existing post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid post id")
		return
	}

	var req commentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	comment, err := c.engine.CreateComment(ctx.Request.Context(), identityFrom(ctx), postID, req.Content)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))

	utils.Created(ctx, gin.H{"comment": comment})
}

// ListComments returns all comments on a post, oldest first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid post id")
		return
	}

	comments, err := c.engine.ListComments(ctx.Request.Context(), postID)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"items": comments})
}

// UpdateComment allows the comment owner to rewrite its content.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid post id")
		return
	}
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid comment id")
		return
	}

	var req commentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid request payload")
		return
	}

	comment, err := c.engine.UpdateComment(ctx.Request.Context(), identityFrom(ctx), postID, commentID, req.Content)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment allows the comment owner to delete it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40046, "invalid post id")
		return
	}
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40047, "invalid comment id")
		return
	}

	if err := c.engine.DeleteComment(ctx.Request.Context(), identityFrom(ctx), postID, commentID); err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + ctx.Param("id"))

	utils.Success(ctx, gin.H{"message": "the comment was deleted successfully"})
}
