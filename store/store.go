package store

import (
	"context"
	"errors"

	"github.com/nordblog/blogapi/models"
)

// ErrNotFound is returned when a record does not exist. Implementations must
// translate their driver's sentinel into this one so callers never depend on
// the backing database.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint,
// such as two signups racing on the same email past the pre-insert check.
var ErrDuplicate = errors.New("duplicate record")

// Users provides durable storage for user accounts.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

// Posts provides durable storage for posts.
type Posts interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublished(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// Comments provides durable storage for comments.
type Comments interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByPost(ctx context.Context, postID uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
}

// Orphans tracks media store keys whose cleanup failed after the owning
// record was already deleted.
type Orphans interface {
	Record(ctx context.Context, key, lastError string) error
	List(ctx context.Context, limit int) ([]models.OrphanedMedia, error)
	Remove(ctx context.Context, key string) error
}

// Stores aggregates the per-entity stores. Atomic runs fn inside a single
// transactional boundary so multi-record workflows (cascading deletes) are
// never observable half-done.
type Stores interface {
	Users() Users
	Posts() Posts
	Comments() Comments
	Orphans() Orphans
	Atomic(ctx context.Context, fn func(Stores) error) error
}
