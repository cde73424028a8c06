// Package store holds the authoritative collection of users, posts and
// comments. Services reach it only through the Store interface.
package store

import (
	"context"
	"time"

	"inkflow/internal/models"
)

// Store is the record-level API the services are written against. Reads
// return author-populated copies; lookups of absent records return nil, nil.
type Store interface {
	// Users
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Posts
	Posts(ctx context.Context) ([]models.Post, error)
	FindPosts(ctx context.Context, match func(models.Post) bool) ([]models.Post, error)
	PostByID(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, authorID string, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id, authorID string, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id, authorID string) error
	LikePost(ctx context.Context, id string) (int, error)

	// Comments
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	AddComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error)
}

type Option func(*Memory)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}
