package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/store"
	"github.com/nordblog/blogapi/utils"
)

func sanitizeCommentContent(content string) (string, error) {
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return "", invalid("content", "content must be specified")
	}
	return content, nil
}

// CreateComment adds a comment by the caller to an existing post. The parent
// post must exist; a comment can never be created against a missing post.
func (e *Engine) CreateComment(ctx context.Context, ident *Identity, postID uint, content string) (*models.Comment, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	content, err := sanitizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := e.stores.Posts().GetByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("comment's parent post doesn't exist")
		}
		return nil, upstream("post lookup", err)
	}

	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  ident.UserID,
		Content:   content,
		CreatedAt: e.now(),
	}
	if err := e.stores.Comments().Create(ctx, comment); err != nil {
		return nil, upstream("comment create", err)
	}
	return e.stores.Comments().GetByID(ctx, comment.ID)
}

// ListComments returns all comments on a post, oldest first.
func (e *Engine) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := e.stores.Posts().GetByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("no post found")
		}
		return nil, upstream("post lookup", err)
	}
	comments, err := e.stores.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, upstream("comment list", err)
	}
	return comments, nil
}

// UpdateComment rewrites the content of a comment the caller owns. The
// author, parent post and creation timestamp never change. A comment whose
// stored post reference does not match the post id in the request path is
// rejected outright.
func (e *Engine) UpdateComment(ctx context.Context, ident *Identity, postID, commentID uint, content string) (*models.Comment, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	comment, err := e.stores.Comments().GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("comment not found")
		}
		return nil, upstream("comment lookup", err)
	}
	if comment.PostID != postID {
		return nil, invalid("postid", "comment does not belong to the given post")
	}
	if comment.AuthorID != ident.UserID {
		return nil, unauthorized("no authorization")
	}
	content, err = sanitizeCommentContent(content)
	if err != nil {
		return nil, err
	}

	now := e.now()
	comment.Content = content
	comment.EditedAt = &now
	if err := e.stores.Comments().Update(ctx, comment); err != nil {
		return nil, upstream("comment update", err)
	}
	return comment, nil
}

// DeleteComment removes a comment the caller owns. No media is involved.
func (e *Engine) DeleteComment(ctx context.Context, ident *Identity, postID, commentID uint) error {
	if ident == nil {
		return unauthenticated()
	}
	comment, err := e.stores.Comments().GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("comment not found")
		}
		return upstream("comment lookup", err)
	}
	if comment.PostID != postID {
		return invalid("postid", "comment does not belong to the given post")
	}
	if comment.AuthorID != ident.UserID {
		return unauthorized("no authorization")
	}
	if err := e.stores.Comments().Delete(ctx, commentID); err != nil {
		return upstream("comment delete", err)
	}
	return nil
}
