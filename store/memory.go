package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nordblog/blogapi/models"
)

// NewMemory returns a Stores backed by in-process maps. It is used by tests
// and by the no-database development mode. Atomic serializes whole workflows
// under one mutex; unlike the GORM implementation it does not roll back on
// error.
func NewMemory() Stores {
	return &memStores{
		mu:   &sync.Mutex{},
		data: &memData{users: map[uint]models.User{}, posts: map[uint]models.Post{}, comments: map[uint]models.Comment{}, orphans: map[string]models.OrphanedMedia{}},
	}
}

type memData struct {
	users    map[uint]models.User
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	orphans  map[string]models.OrphanedMedia

	nextUser    uint
	nextPost    uint
	nextComment uint
	nextOrphan  uint
}

type memStores struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

func (s *memStores) run(fn func() error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

func (s *memStores) Users() Users       { return &memUsers{s} }
func (s *memStores) Posts() Posts       { return &memPosts{s} }
func (s *memStores) Comments() Comments { return &memComments{s} }
func (s *memStores) Orphans() Orphans   { return &memOrphans{s} }

func (s *memStores) Atomic(ctx context.Context, fn func(Stores) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memStores{mu: s.mu, data: s.data, inTx: true})
}

type memUsers struct {
	root *memStores
}

func (u *memUsers) Create(ctx context.Context, user *models.User) error {
	return u.root.run(func() error {
		d := u.root.data
		for _, other := range d.users {
			if other.Email == user.Email {
				return ErrDuplicate
			}
		}
		d.nextUser++
		user.ID = d.nextUser
		d.users[user.ID] = *user
		return nil
	})
}

func (u *memUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := u.root.run(func() error {
		user, ok := u.root.data.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (u *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := u.root.run(func() error {
		for _, user := range u.root.data.users {
			if user.Email == email {
				user := user
				out = &user
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (u *memUsers) Update(ctx context.Context, user *models.User) error {
	return u.root.run(func() error {
		if _, ok := u.root.data.users[user.ID]; !ok {
			return ErrNotFound
		}
		for id, other := range u.root.data.users {
			if id != user.ID && other.Email == user.Email {
				return ErrDuplicate
			}
		}
		u.root.data.users[user.ID] = *user
		return nil
	})
}

func (u *memUsers) Delete(ctx context.Context, id uint) error {
	return u.root.run(func() error {
		if _, ok := u.root.data.users[id]; !ok {
			return ErrNotFound
		}
		delete(u.root.data.users, id)
		return nil
	})
}

type memPosts struct {
	root *memStores
}

func (p *memPosts) withAuthor(post models.Post) models.Post {
	if author, ok := p.root.data.users[post.AuthorID]; ok {
		post.Author = author
	}
	return post
}

func (p *memPosts) Create(ctx context.Context, post *models.Post) error {
	return p.root.run(func() error {
		d := p.root.data
		d.nextPost++
		post.ID = d.nextPost
		stored := *post
		stored.Author = models.User{}
		d.posts[post.ID] = stored
		return nil
	})
}

func (p *memPosts) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var out *models.Post
	err := p.root.run(func() error {
		post, ok := p.root.data.posts[id]
		if !ok {
			return ErrNotFound
		}
		post = p.withAuthor(post)
		out = &post
		return nil
	})
	return out, err
}

func (p *memPosts) ListPublished(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := p.root.run(func() error {
		for _, post := range p.root.data.posts {
			if post.Published {
				out = append(out, p.withAuthor(post))
			}
		}
		sortPostsNewestFirst(out)
		return nil
	})
	return out, err
}

func (p *memPosts) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var out []models.Post
	err := p.root.run(func() error {
		for _, post := range p.root.data.posts {
			if post.AuthorID == authorID {
				out = append(out, p.withAuthor(post))
			}
		}
		sortPostsNewestFirst(out)
		return nil
	})
	return out, err
}

func (p *memPosts) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := p.root.run(func() error {
		for _, post := range p.root.data.posts {
			if post.AuthorID == authorID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (p *memPosts) Update(ctx context.Context, post *models.Post) error {
	return p.root.run(func() error {
		if _, ok := p.root.data.posts[post.ID]; !ok {
			return ErrNotFound
		}
		stored := *post
		stored.Author = models.User{}
		p.root.data.posts[post.ID] = stored
		return nil
	})
}

func (p *memPosts) Delete(ctx context.Context, id uint) error {
	return p.root.run(func() error {
		if _, ok := p.root.data.posts[id]; !ok {
			return ErrNotFound
		}
		delete(p.root.data.posts, id)
		return nil
	})
}

type memComments struct {
	root *memStores
}

func (c *memComments) withAuthor(comment models.Comment) models.Comment {
	if author, ok := c.root.data.users[comment.AuthorID]; ok {
		comment.Author = author
	}
	return comment
}

func (c *memComments) Create(ctx context.Context, comment *models.Comment) error {
	return c.root.run(func() error {
		d := c.root.data
		d.nextComment++
		comment.ID = d.nextComment
		stored := *comment
		stored.Author = models.User{}
		d.comments[comment.ID] = stored
		return nil
	})
}

func (c *memComments) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var out *models.Comment
	err := c.root.run(func() error {
		comment, ok := c.root.data.comments[id]
		if !ok {
			return ErrNotFound
		}
		comment = c.withAuthor(comment)
		out = &comment
		return nil
	})
	return out, err
}

func (c *memComments) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var out []models.Comment
	err := c.root.run(func() error {
		for _, comment := range c.root.data.comments {
			if comment.PostID == postID {
				out = append(out, c.withAuthor(comment))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (c *memComments) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := c.root.run(func() error {
		for _, comment := range c.root.data.comments {
			if comment.PostID == postID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (c *memComments) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := c.root.run(func() error {
		for _, comment := range c.root.data.comments {
			if comment.AuthorID == authorID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (c *memComments) Update(ctx context.Context, comment *models.Comment) error {
	return c.root.run(func() error {
		if _, ok := c.root.data.comments[comment.ID]; !ok {
			return ErrNotFound
		}
		stored := *comment
		stored.Author = models.User{}
		c.root.data.comments[comment.ID] = stored
		return nil
	})
}

func (c *memComments) Delete(ctx context.Context, id uint) error {
	return c.root.run(func() error {
		if _, ok := c.root.data.comments[id]; !ok {
			return ErrNotFound
		}
		delete(c.root.data.comments, id)
		return nil
	})
}

func (c *memComments) DeleteByPost(ctx context.Context, postID uint) error {
	return c.root.run(func() error {
		for id, comment := range c.root.data.comments {
			if comment.PostID == postID {
				delete(c.root.data.comments, id)
			}
		}
		return nil
	})
}

func (c *memComments) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return c.root.run(func() error {
		for id, comment := range c.root.data.comments {
			if comment.AuthorID == authorID {
				delete(c.root.data.comments, id)
			}
		}
		return nil
	})
}

type memOrphans struct {
	root *memStores
}

func (o *memOrphans) Record(ctx context.Context, key, lastError string) error {
	return o.root.run(func() error {
		d := o.root.data
		if orphan, ok := d.orphans[key]; ok {
			orphan.Attempts++
			orphan.LastError = lastError
			d.orphans[key] = orphan
			return nil
		}
		d.nextOrphan++
		d.orphans[key] = models.OrphanedMedia{ID: d.nextOrphan, StorageKey: key, LastError: lastError, Attempts: 1}
		return nil
	})
}

func (o *memOrphans) List(ctx context.Context, limit int) ([]models.OrphanedMedia, error) {
	var out []models.OrphanedMedia
	err := o.root.run(func() error {
		for _, orphan := range o.root.data.orphans {
			out = append(out, orphan)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (o *memOrphans) Remove(ctx context.Context, key string) error {
	return o.root.run(func() error {
		delete(o.root.data.orphans, key)
		return nil
	})
}

func sortPostsNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
