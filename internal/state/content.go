package state

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"inkflow/internal/models"
)

type ContentService interface {
	AllPosts(ctx context.Context) ([]models.Post, error)
	FeaturedPosts(ctx context.Context) ([]models.Post, error)
	PostByID(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, authorID string, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id, authorID string, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id, authorID string) (bool, error)
	LikePost(ctx context.Context, id string) (int, error)
}

// CurrentUser reports who is signed in. *Session implements it.
type CurrentUser interface {
	User() *models.User
}

type ContentSnapshot struct {
	Posts         []models.Post
	FeaturedPosts []models.Post
	Loading       bool
	Error         string
}

// Content caches the post list and the featured list and keeps them in
// step with the mutations made through it.
type Content struct {
	svc   ContentService
	users CurrentUser

	mu       sync.RWMutex
	posts    []models.Post
	featured []models.Post
	inflight int
	err      string
}

func NewContent(svc ContentService, users CurrentUser) *Content {
	return &Content{svc: svc, users: users}
}

// Load is the initial fetch; it is FetchPosts under another name.
func (c *Content) Load(ctx context.Context) error {
	return c.FetchPosts(ctx)
}

func (c *Content) Snapshot() ContentSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ContentSnapshot{
		Posts:         clonePosts(c.posts),
		FeaturedPosts: clonePosts(c.featured),
		Loading:       c.inflight > 0,
		Error:         c.err,
	}
}

func (c *Content) begin() {
	c.mu.Lock()
	c.inflight++
	c.err = ""
	c.mu.Unlock()
}

// end must be called with c.mu held.
func (c *Content) end(msg string, err error) {
	c.inflight--
	if err != nil {
		c.err = msg
	}
}

// FetchPosts reloads both lists concurrently.
func (c *Content) FetchPosts(ctx context.Context) error {
	c.begin()
	var all, featured []models.Post
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = c.svc.AllPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		featured, err = c.svc.FeaturedPosts(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end("Failed to fetch posts", err)
	if err != nil {
		return err
	}
	c.posts, c.featured = all, featured
	return nil
}

// FetchPostByID reads through to the service without touching the cache.
func (c *Content) FetchPostByID(ctx context.Context, id string) (*models.Post, error) {
	c.begin()
	p, err := c.svc.PostByID(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end("Failed to fetch post", err)
	return p, err
}

// author returns the signed-in user's id, or records the error for verb.
func (c *Content) author(verb string) (string, error) {
	if u := c.users.User(); u != nil {
		return u.ID, nil
	}
	c.mu.Lock()
	c.err = "You must be logged in to " + verb + " a post"
	c.mu.Unlock()
	return "", models.ErrNotAuthenticated
}

func (c *Content) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	authorID, err := c.author("create")
	if err != nil {
		return nil, err
	}
	c.begin()
	p, err := c.svc.CreatePost(ctx, authorID, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end("Failed to create post", err)
	if err != nil {
		return nil, err
	}
	c.posts = append([]models.Post{p.Clone()}, c.posts...)
	return p, nil
}

func (c *Content) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	authorID, err := c.author("update")
	if err != nil {
		return nil, err
	}
	c.begin()
	p, err := c.svc.UpdatePost(ctx, id, authorID, patch)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end("Failed to update post", err)
	if err != nil {
		return nil, err
	}
	for i := range c.posts {
		if c.posts[i].ID == id {
			c.posts[i] = p.Clone()
		}
	}
	return p, nil
}

func (c *Content) DeletePost(ctx context.Context, id string) (bool, error) {
	authorID, err := c.author("delete")
	if err != nil {
		return false, err
	}
	c.begin()
	ok, err := c.svc.DeletePost(ctx, id, authorID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end("Failed to delete post", err)
	if err != nil {
		return false, err
	}
	c.posts = removePost(c.posts, id)
	return ok, nil
}

// LikePost likes the post and writes the count the service reports into
// both cached lists.
func (c *Content) LikePost(ctx context.Context, id string) error {
	c.mu.Lock()
	c.err = ""
	c.mu.Unlock()

	n, err := c.svc.LikePost(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = "Failed to like post"
		return err
	}
	setLikes(c.posts, id, n)
	setLikes(c.featured, id, n)
	return nil
}

func setLikes(posts []models.Post, id string, n int) {
	for i := range posts {
		if posts[i].ID == id {
			posts[i].Likes = n
		}
	}
}

func removePost(posts []models.Post, id string) []models.Post {
	out := posts[:0:0]
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func clonePosts(posts []models.Post) []models.Post {
	if posts == nil {
		return nil
	}
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
