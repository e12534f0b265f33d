package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/store"
	"github.com/nordblog/blogapi/utils"
)

// PostInput carries the fields of a post create or update request.
type PostInput struct {
	Title       string
	Content     string
	Description string
	Published   bool
	Photo       *ImageUpload
}

// PostSummary is a post with its comment count attached.
type PostSummary struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

func sanitizePostInput(in PostInput) (title, content, description string, err error) {
	title = utils.SanitizePlain(strings.TrimSpace(in.Title))
	if title == "" {
		return "", "", "", invalid("title", "title must be specified")
	}
	content = utils.Sanitize(in.Content)
	if strings.TrimSpace(content) == "" {
		return "", "", "", invalid("content", "content must be specified")
	}
	description = utils.SanitizePlain(strings.TrimSpace(in.Description))
	if description == "" {
		return "", "", "", invalid("description", "description must be specified")
	}
	return title, content, description, nil
}

// CreatePost persists a new post authored by the caller. A cover photo is
// uploaded to the media store before the record is persisted; when the upload
// fails no post is created. Without a photo one of the shared default cover
// images is picked.
func (e *Engine) CreatePost(ctx context.Context, ident *Identity, in PostInput) (*models.Post, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	title, content, description, err := sanitizePostInput(in)
	if err != nil {
		return nil, err
	}

	photo := defaultPostPhoto(e.defaults)
	if in.Photo != nil {
		photo, err = e.uploadImage(ctx, in.Photo, "posts")
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		AuthorID:    ident.UserID,
		Title:       title,
		Content:     content,
		Description: description,
		Photo:       photo,
		Published:   in.Published,
		CreatedAt:   e.now(),
	}
	if err := e.stores.Posts().Create(ctx, post); err != nil {
		if in.Photo != nil {
			_ = e.releaseMedia(ctx, photo.StorageKey)
		}
		return nil, upstream("post create", err)
	}
	return e.stores.Posts().GetByID(ctx, post.ID)
}

// GetPost returns a single post with its comment count. An unpublished post
// is visible only to its author; every other caller, anonymous included, is
// rejected.
func (e *Engine) GetPost(ctx context.Context, ident *Identity, postID uint) (*PostSummary, error) {
	post, err := e.stores.Posts().GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("no post found")
		}
		return nil, upstream("post lookup", err)
	}
	if !post.Published && (ident == nil || ident.UserID != post.AuthorID) {
		return nil, unauthorized("post has not been published")
	}
	count, err := e.stores.Comments().CountByPost(ctx, postID)
	if err != nil {
		return nil, upstream("comment count", err)
	}
	return &PostSummary{Post: *post, CommentCount: count}, nil
}

// ListPublishedPosts returns every published post, newest first, with
// comment counts. Drafts are never included regardless of caller.
func (e *Engine) ListPublishedPosts(ctx context.Context) ([]PostSummary, error) {
	posts, err := e.stores.Posts().ListPublished(ctx)
	if err != nil {
		return nil, upstream("post list", err)
	}
	return e.withCommentCounts(ctx, posts)
}

// ListPostsByAuthor returns every post the caller authored, drafts included.
func (e *Engine) ListPostsByAuthor(ctx context.Context, ident *Identity) ([]PostSummary, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	posts, err := e.stores.Posts().ListByAuthor(ctx, ident.UserID)
	if err != nil {
		return nil, upstream("post list", err)
	}
	return e.withCommentCounts(ctx, posts)
}

func (e *Engine) withCommentCounts(ctx context.Context, posts []models.Post) ([]PostSummary, error) {
	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		count, err := e.stores.Comments().CountByPost(ctx, post.ID)
		if err != nil {
			return nil, upstream("comment count", err)
		}
		summaries = append(summaries, PostSummary{Post: post, CommentCount: count})
	}
	return summaries, nil
}

// UpdatePost rewrites a post the caller owns. The author and creation
// timestamp never change, a published post can never return to draft, and a
// replacement photo is uploaded before the superseded one is released.
func (e *Engine) UpdatePost(ctx context.Context, ident *Identity, postID uint, in PostInput) (*models.Post, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	post, err := e.stores.Posts().GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("post doesn't exist")
		}
		return nil, upstream("post lookup", err)
	}
	if post.AuthorID != ident.UserID {
		return nil, unauthorized("no authorization")
	}
	if post.Published && !in.Published {
		return nil, invalid("published", "published post can't be unpublished")
	}
	title, content, description, err := sanitizePostInput(in)
	if err != nil {
		return nil, err
	}

	oldPhoto := post.Photo
	if in.Photo != nil {
		photo, err := e.uploadImage(ctx, in.Photo, "posts")
		if err != nil {
			return nil, err
		}
		post.Photo = photo
	}

	now := e.now()
	post.Title = title
	post.Content = content
	post.Description = description
	post.Published = in.Published
	post.EditedAt = &now

	if err := e.stores.Posts().Update(ctx, post); err != nil {
		if in.Photo != nil {
			// the fresh upload is unreferenced now
			_ = e.releaseMedia(ctx, post.Photo.StorageKey)
		}
		return nil, upstream("post update", err)
	}

	if in.Photo != nil && !oldPhoto.IsDefault {
		if err := e.releaseMedia(ctx, oldPhoto.StorageKey); err != nil {
			return post, err
		}
	}
	return post, nil
}

// DeletePost removes a post the caller owns together with all its comments.
// The caller must repeat the post's exact current title as confirmation.
// Record deletions are atomic; the cover photo is released afterwards unless
// it is a shared default.
func (e *Engine) DeletePost(ctx context.Context, ident *Identity, postID uint, confirmation string) error {
	if ident == nil {
		return unauthenticated()
	}
	post, err := e.stores.Posts().GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("the post doesn't exist")
		}
		return upstream("post lookup", err)
	}
	if post.AuthorID != ident.UserID {
		return unauthorized("no authorization")
	}
	if confirmation != post.Title {
		return invalid("confirmation", "confirmation title didn't match")
	}

	err = e.stores.Atomic(ctx, func(tx store.Stores) error {
		if err := tx.Comments().DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, post.ID)
	})
	if err != nil {
		return upstream("post delete", err)
	}

	if !post.Photo.IsDefault {
		return e.releaseMedia(ctx, post.Photo.StorageKey)
	}
	return nil
}

func defaultPostPhoto(defaults *media.Defaults) models.Image {
	ref := defaults.PostPhoto()
	return models.Image{IsDefault: true, OriginalName: "default.webp", URL: ref.URL}
}
