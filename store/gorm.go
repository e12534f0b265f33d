package store

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nordblog/blogapi/models"
)

// NewGorm returns a Stores backed by a GORM database handle.
func NewGorm(db *gorm.DB) Stores {
	return &gormStores{db: db}
}

type gormStores struct {
	db *gorm.DB
}

func (s *gormStores) Users() Users       { return &gormUsers{db: s.db} }
func (s *gormStores) Posts() Posts       { return &gormPosts{db: s.db} }
func (s *gormStores) Comments() Comments { return &gormComments{db: s.db} }
func (s *gormStores) Orphans() Orphans   { return &gormOrphans{db: s.db} }

func (s *gormStores) Atomic(ctx context.Context, fn func(Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStores{db: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// MySQL error 1062 is ER_DUP_ENTRY.
func translateDuplicate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicate
	}
	return err
}

type gormUsers struct {
	db *gorm.DB
}

func (u *gormUsers) Create(ctx context.Context, user *models.User) error {
	return translateDuplicate(u.db.WithContext(ctx).Create(user).Error)
}

func (u *gormUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *gormUsers) Update(ctx context.Context, user *models.User) error {
	return translateDuplicate(u.db.WithContext(ctx).Save(user).Error)
}

func (u *gormUsers) Delete(ctx context.Context, id uint) error {
	res := u.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormPosts struct {
	db *gorm.DB
}

func (p *gormPosts) Create(ctx context.Context, post *models.Post) error {
	return p.db.WithContext(ctx).Create(post).Error
}

func (p *gormPosts) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (p *gormPosts) ListPublished(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := p.db.WithContext(ctx).
		Where("published = ?", true).
		Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (p *gormPosts) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := p.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (p *gormPosts) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (p *gormPosts) Update(ctx context.Context, post *models.Post) error {
	return p.db.WithContext(ctx).Save(post).Error
}

func (p *gormPosts) Delete(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormComments struct {
	db *gorm.DB
}

func (c *gormComments) Create(ctx context.Context, comment *models.Comment) error {
	return c.db.WithContext(ctx).Create(comment).Error
}

func (c *gormComments) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := c.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (c *gormComments) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (c *gormComments) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func (c *gormComments) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Comment{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (c *gormComments) Update(ctx context.Context, comment *models.Comment) error {
	return c.db.WithContext(ctx).Save(comment).Error
}

func (c *gormComments) Delete(ctx context.Context, id uint) error {
	res := c.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *gormComments) DeleteByPost(ctx context.Context, postID uint) error {
	return c.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

func (c *gormComments) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return c.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Comment{}).Error
}

type gormOrphans struct {
	db *gorm.DB
}

func (o *gormOrphans) Record(ctx context.Context, key, lastError string) error {
	orphan := models.OrphanedMedia{StorageKey: key, LastError: lastError, Attempts: 1}
	return o.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_error": lastError,
			"attempts":   gorm.Expr("attempts + 1"),
		}),
	}).Create(&orphan).Error
}

func (o *gormOrphans) List(ctx context.Context, limit int) ([]models.OrphanedMedia, error) {
	var orphans []models.OrphanedMedia
	err := o.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Find(&orphans).Error
	return orphans, err
}

func (o *gormOrphans) Remove(ctx context.Context, key string) error {
	return o.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.OrphanedMedia{}).Error
}
