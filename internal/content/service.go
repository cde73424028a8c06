// Package content implements post and comment operations over a store.
package content

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"inkflow/internal/latency"
	"inkflow/internal/logging"
	"inkflow/internal/models"
	"inkflow/internal/store"
)

// FeaturedCount is how many posts FeaturedPosts returns.
const FeaturedCount = 3

// Base delays per operation, before latency scaling.
const (
	delayAllPosts      = 800 * time.Millisecond
	delayFeatured      = 600 * time.Millisecond
	delayPostByID      = 500 * time.Millisecond
	delayCreatePost    = 1000 * time.Millisecond
	delayUpdatePost    = 800 * time.Millisecond
	delayDeletePost    = 700 * time.Millisecond
	delayLikePost      = 300 * time.Millisecond
	delayPostComments  = 600 * time.Millisecond
	delayAddComment    = 700 * time.Millisecond
	delaySearch        = 600 * time.Millisecond
	delayPostsByTag    = 500 * time.Millisecond
	delayPostsByAuthor = 500 * time.Millisecond
)

type Service struct {
	store   store.Store
	latency *latency.Simulator
	log     *zap.Logger
}

func NewService(st store.Store, lat *latency.Simulator, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		latency: lat,
		log:     logging.OrNop(logger).Named("content"),
	}
}

func (s *Service) AllPosts(ctx context.Context) ([]models.Post, error) {
	if err := s.latency.Wait(ctx, delayAllPosts); err != nil {
		return nil, err
	}
	return s.store.Posts(ctx)
}

// FeaturedPosts returns the most liked posts; ties keep collection order.
func (s *Service) FeaturedPosts(ctx context.Context) ([]models.Post, error) {
	if err := s.latency.Wait(ctx, delayFeatured); err != nil {
		return nil, err
	}
	posts, err := s.store.Posts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Likes > posts[j].Likes })
	if len(posts) > FeaturedCount {
		posts = posts[:FeaturedCount]
	}
	return posts, nil
}

// PostByID returns nil, nil when the post does not exist.
func (s *Service) PostByID(ctx context.Context, id string) (*models.Post, error) {
	if err := s.latency.Wait(ctx, delayPostByID); err != nil {
		return nil, err
	}
	return s.store.PostByID(ctx, id)
}

func (s *Service) CreatePost(ctx context.Context, authorID string, in models.PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if err := s.latency.Wait(ctx, delayCreatePost); err != nil {
		return nil, err
	}
	p, err := s.store.CreatePost(ctx, authorID, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("post created", zap.String("post_id", p.ID), zap.String("author_id", authorID))
	return p, nil
}

func (s *Service) UpdatePost(ctx context.Context, id, authorID string, patch models.PostPatch) (*models.Post, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if err := s.latency.Wait(ctx, delayUpdatePost); err != nil {
		return nil, err
	}
	p, err := s.store.UpdatePost(ctx, id, authorID, patch)
	if err != nil {
		s.log.Info("post update rejected", zap.String("post_id", id), zap.String("author_id", authorID), zap.Error(err))
		return nil, err
	}
	s.log.Info("post updated", zap.String("post_id", id))
	return p, nil
}

// DeletePost removes the post and its comments. It reports true on success.
func (s *Service) DeletePost(ctx context.Context, id, authorID string) (bool, error) {
	if err := s.latency.Wait(ctx, delayDeletePost); err != nil {
		return false, err
	}
	if err := s.store.DeletePost(ctx, id, authorID); err != nil {
		s.log.Info("post delete rejected", zap.String("post_id", id), zap.String("author_id", authorID), zap.Error(err))
		return false, err
	}
	s.log.Info("post deleted", zap.String("post_id", id))
	return true, nil
}

// LikePost adds one like and returns the stored like count.
func (s *Service) LikePost(ctx context.Context, id string) (int, error) {
	if err := s.latency.Wait(ctx, delayLikePost); err != nil {
		return 0, err
	}
	n, err := s.store.LikePost(ctx, id)
	if err != nil {
		return 0, err
	}
	s.log.Debug("post liked", zap.String("post_id", id), zap.Int("likes", n))
	return n, nil
}

// PostComments returns the comments of a post, oldest first.
func (s *Service) PostComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := s.latency.Wait(ctx, delayPostComments); err != nil {
		return nil, err
	}
	return s.store.Comments(ctx, postID)
}

func (s *Service) AddComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if err := s.latency.Wait(ctx, delayAddComment); err != nil {
		return nil, err
	}
	c, err := s.store.AddComment(ctx, postID, authorID, content)
	if err != nil {
		return nil, err
	}
	s.log.Info("comment added", zap.String("comment_id", c.ID), zap.String("post_id", postID))
	return c, nil
}

// SearchPosts matches query case-insensitively against title, content,
// excerpt and tags. The query is used as given, so "" matches every post.
func (s *Service) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	q := strings.ToLower(query)
	if err := s.latency.Wait(ctx, delaySearch); err != nil {
		return nil, err
	}
	posts, err := s.store.FindPosts(ctx, func(p models.Post) bool { return matches(p, q) })
	if err != nil {
		return nil, err
	}
	s.log.Debug("search", zap.String("query", query), zap.Int("results", len(posts)))
	return posts, nil
}

func matches(p models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (s *Service) PostsByTag(ctx context.Context, tag string) ([]models.Post, error) {
	if err := s.latency.Wait(ctx, delayPostsByTag); err != nil {
		return nil, err
	}
	return s.store.FindPosts(ctx, func(p models.Post) bool {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

func (s *Service) PostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	if err := s.latency.Wait(ctx, delayPostsByAuthor); err != nil {
		return nil, err
	}
	return s.store.FindPosts(ctx, func(p models.Post) bool { return p.AuthorID == authorID })
}
