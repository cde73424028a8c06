package store

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"inkflow/internal/models"
)

// Memory is the in-process Store. Posts are kept newest-first; comments
// are kept in insertion order.
type Memory struct {
	mu       sync.RWMutex
	users    []models.User
	posts    []models.Post
	comments []models.Comment

	nextUser    int64
	nextPost    int64
	nextComment int64

	now func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory builds a store from seed. The seeded comment counters are
// recomputed from the seeded comments.
func NewMemory(seed Seed, opts ...Option) (*Memory, error) {
	m := &Memory{now: time.Now}
	for _, o := range opts {
		o(m)
	}

	for _, su := range seed.Users {
		u, err := su.model()
		if err != nil {
			return nil, err
		}
		m.users = append(m.users, u)
		m.nextUser = max(m.nextUser, numericID(u.ID))
	}
	counts := make(map[string]int, len(seed.Posts))
	for _, sc := range seed.Comments {
		c, err := sc.model()
		if err != nil {
			return nil, err
		}
		m.comments = append(m.comments, c)
		m.nextComment = max(m.nextComment, numericID(c.ID))
		counts[c.PostID]++
	}
	for _, sp := range seed.Posts {
		p, err := sp.model()
		if err != nil {
			return nil, err
		}
		p.CommentsCount = counts[p.ID]
		m.posts = append(m.posts, p)
		m.nextPost = max(m.nextPost, numericID(p.ID))
	}
	return m, nil
}

// NewDefault builds a store from the embedded fixture.
func NewDefault(opts ...Option) (*Memory, error) {
	seed, err := DefaultSeed()
	if err != nil {
		return nil, err
	}
	return NewMemory(seed, opts...)
}

func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// allocate bumps counter until it yields an id for which taken is false.
func allocate(counter *int64, taken func(string) bool) string {
	for {
		*counter++
		id := strconv.FormatInt(*counter, 10)
		if !taken(id) {
			return id
		}
	}
}

// -------- users

func (m *Memory) userIndex(id string) int {
	return slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == id })
}

func (m *Memory) emailIndex(email string) int {
	return slices.IndexFunc(m.users, func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *Memory) author(id string) *models.User {
	i := m.userIndex(id)
	if i < 0 {
		return nil
	}
	u := m.users[i]
	return &u
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.author(id), nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.emailIndex(email)
	if i < 0 {
		return nil, nil
	}
	u := m.users[i]
	return &u, nil
}

// CreateUser stores u under a freshly allocated id. The email uniqueness
// check and the insert happen under one lock.
func (m *Memory) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailIndex(u.Email) >= 0 {
		return nil, models.ErrEmailAlreadyInUse
	}
	u.ID = allocate(&m.nextUser, func(id string) bool { return m.userIndex(id) >= 0 })
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now().UTC()
	}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *Memory) CountUsers(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// -------- posts

func (m *Memory) postIndex(id string) int {
	return slices.IndexFunc(m.posts, func(p models.Post) bool { return p.ID == id })
}

func (m *Memory) joined(p models.Post) models.Post {
	out := p.Clone()
	out.Author = m.author(p.AuthorID)
	return out
}

func (m *Memory) Posts(ctx context.Context) ([]models.Post, error) {
	return m.FindPosts(ctx, nil)
}

// FindPosts returns the posts for which match reports true, in collection
// order. A nil match selects every post.
func (m *Memory) FindPosts(_ context.Context, match func(models.Post) bool) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if match == nil || match(p) {
			out = append(out, m.joined(p))
		}
	}
	return out, nil
}

func (m *Memory) PostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.postIndex(id)
	if i < 0 {
		return nil, nil
	}
	p := m.joined(m.posts[i])
	return &p, nil
}

func (m *Memory) CreatePost(_ context.Context, authorID string, in models.PostInput) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	p := models.Post{
		ID:         allocate(&m.nextPost, func(id string) bool { return m.postIndex(id) >= 0 }),
		Title:      in.Title,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		CoverImage: in.CoverImage,
		AuthorID:   authorID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tags:       slices.Clone(in.Tags),
	}
	m.posts = slices.Insert(m.posts, 0, p)
	out := m.joined(p)
	return &out, nil
}

// owned returns the index of post id if authorID owns it.
func (m *Memory) owned(id, authorID string) (int, error) {
	i := m.postIndex(id)
	if i < 0 {
		return -1, models.ErrPostNotFound
	}
	if m.posts[i].AuthorID != authorID {
		return -1, models.ErrUnauthorized
	}
	return i, nil
}

func (m *Memory) UpdatePost(_ context.Context, id, authorID string, patch models.PostPatch) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.owned(id, authorID)
	if err != nil {
		return nil, err
	}
	p := m.posts[i].Clone()
	patch.Apply(&p)
	p.UpdatedAt = m.now().UTC()
	m.posts[i] = p
	out := m.joined(p)
	return &out, nil
}

// DeletePost removes the post and every comment on it.
func (m *Memory) DeletePost(_ context.Context, id, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.owned(id, authorID)
	if err != nil {
		return err
	}
	m.posts = slices.Delete(m.posts, i, i+1)
	m.comments = slices.DeleteFunc(m.comments, func(c models.Comment) bool { return c.PostID == id })
	return nil
}

// LikePost increments the like counter and returns the new value.
func (m *Memory) LikePost(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.postIndex(id)
	if i < 0 {
		return 0, models.ErrPostNotFound
	}
	m.posts[i].Likes++
	return m.posts[i].Likes, nil
}

// -------- comments

func (m *Memory) Comments(_ context.Context, postID string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			c.Author = m.author(c.AuthorID)
			out = append(out, c)
		}
	}
	return out, nil
}

// AddComment appends a comment and bumps the parent's counter atomically.
// A missing parent is rejected.
func (m *Memory) AddComment(_ context.Context, postID, authorID, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.postIndex(postID)
	if i < 0 {
		return nil, models.ErrPostNotFound
	}
	c := models.Comment{
		ID:        allocate(&m.nextComment, func(id string) bool { return slices.ContainsFunc(m.comments, func(c models.Comment) bool { return c.ID == id }) }),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: m.now().UTC(),
	}
	m.comments = append(m.comments, c)
	m.posts[i].CommentsCount++
	c.Author = m.author(authorID)
	return &c, nil
}
