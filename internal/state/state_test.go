package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"inkflow/internal/auth"
	"inkflow/internal/content"
	"inkflow/internal/db"
	"inkflow/internal/kv"
	"inkflow/internal/models"
	"inkflow/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// sessionStub is a stub for SessionService.
type sessionStub struct {
	loginFn   func(context.Context, string, string) (*models.User, error)
	signupFn  func(context.Context, string, string, string) (*models.User, error)
	logoutFn  func(context.Context) error
	currentFn func(context.Context) (*models.User, error)
}

func (s *sessionStub) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.loginFn(ctx, email, password)
}
func (s *sessionStub) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.signupFn(ctx, name, email, password)
}
func (s *sessionStub) Logout(ctx context.Context) error { return s.logoutFn(ctx) }
func (s *sessionStub) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.currentFn(ctx)
}

func noopSession() *sessionStub {
	return &sessionStub{
		loginFn:   func(context.Context, string, string) (*models.User, error) { return &models.User{ID: "1"}, nil },
		signupFn:  func(context.Context, string, string, string) (*models.User, error) { return &models.User{ID: "9"}, nil },
		logoutFn:  func(context.Context) error { return nil },
		currentFn: func(context.Context) (*models.User, error) { return nil, nil },
	}
}

type fixedUser struct{ u *models.User }

func (f fixedUser) User() *models.User { return f.u }

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func newContent(t *testing.T, user *models.User) (*Content, *content.Service) {
	t.Helper()
	st, err := store.NewDefault()
	require.NoError(t, err)
	svc := content.NewService(st, nil, nil)
	c := NewContent(svc, fixedUser{user})
	require.NoError(t, c.Load(context.Background()))
	return c, svc
}

// -------- Session

func TestNewSession_RestoresUser(t *testing.T) {
	stub := noopSession()
	stub.currentFn = func(context.Context) (*models.User, error) { return &models.User{ID: "2", Name: "Devon"}, nil }

	s, err := NewSession(context.Background(), stub)
	require.NoError(t, err)
	snap := s.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "2", snap.User.ID)
	assert.False(t, snap.Loading)
}

func TestSession_LoginFailureSetsErrorAndReturnsIt(t *testing.T) {
	stub := noopSession()
	stub.loginFn = func(context.Context, string, string) (*models.User, error) {
		return nil, models.ErrInvalidCredentials
	}
	s, err := NewSession(context.Background(), stub)
	require.NoError(t, err)

	err = s.Login(context.Background(), "x@example.com", "pw")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	snap := s.Snapshot()
	assert.Equal(t, "Invalid email or password", snap.Error)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
}

func TestSession_LoadingOnlyWhileInFlight(t *testing.T) {
	stub := noopSession()
	entered := make(chan struct{})
	release := make(chan struct{})
	stub.signupFn = func(context.Context, string, string, string) (*models.User, error) {
		close(entered)
		<-release
		return &models.User{ID: "4", Name: "Ada"}, nil
	}
	s, err := NewSession(context.Background(), stub)
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- s.Signup(context.Background(), "Ada", "ada@example.com", "pw") }()

	<-entered
	assert.True(t, s.Snapshot().Loading)
	close(release)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "4", snap.User.ID)
	assert.Empty(t, snap.Error)
}

func TestSession_LogoutClearsUser(t *testing.T) {
	s, err := NewSession(context.Background(), noopSession())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	require.NotNil(t, s.User())

	require.NoError(t, s.Logout(context.Background()))
	assert.Nil(t, s.User())
}

func TestSession_UserIsACopy(t *testing.T) {
	s, err := NewSession(context.Background(), noopSession())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "a", "b"))

	u := s.User()
	u.Name = "mutated"
	assert.NotEqual(t, "mutated", s.User().Name)
}

// -------- Content

func TestContent_Load(t *testing.T) {
	c, _ := newContent(t, nil)
	snap := c.Snapshot()
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(snap.Posts))
	assert.Equal(t, []string{"4", "5", "3"}, ids(snap.FeaturedPosts))
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestContent_MutationsRequireAuthentication(t *testing.T) {
	c, svc := newContent(t, nil)
	ctx := context.Background()
	title := "x"

	_, err := c.CreatePost(ctx, models.PostInput{Title: "t"})
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))
	assert.Equal(t, "You must be logged in to create a post", c.Snapshot().Error)

	_, err = c.UpdatePost(ctx, "1", models.PostPatch{Title: &title})
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))
	assert.Equal(t, "You must be logged in to update a post", c.Snapshot().Error)

	_, err = c.DeletePost(ctx, "1")
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))
	assert.Equal(t, "You must be logged in to delete a post", c.Snapshot().Error)

	// the service was never reached
	all, err := svc.AllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	p, _ := svc.PostByID(ctx, "1")
	assert.NotEqual(t, title, p.Title)
}

func TestContent_CreateUpdateDeleteReconcileCache(t *testing.T) {
	c, _ := newContent(t, &models.User{ID: "2"})
	ctx := context.Background()

	p, err := c.CreatePost(ctx, models.PostInput{Title: "Go generics", Tags: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, p.ID, c.Snapshot().Posts[0].ID)

	title := "Go generics, revisited"
	updated, err := c.UpdatePost(ctx, p.ID, models.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, title, c.Snapshot().Posts[0].Title)

	ok, err := c.DeletePost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(c.Snapshot().Posts))
}

func TestContent_UpdateByNonOwnerFails(t *testing.T) {
	c, _ := newContent(t, &models.User{ID: "1"})
	title := "hijack"

	_, err := c.UpdatePost(context.Background(), "4", models.PostPatch{Title: &title})
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	snap := c.Snapshot()
	assert.Equal(t, "Failed to update post", snap.Error)
	assert.Equal(t, "Understanding Modern JavaScript: From ES6 to ES2025", snap.Posts[3].Title)
}

func TestContent_LikeReconcilesBothCaches(t *testing.T) {
	c, svc := newContent(t, nil)
	ctx := context.Background()

	require.NoError(t, c.LikePost(ctx, "4"))
	require.NoError(t, c.LikePost(ctx, "4"))

	snap := c.Snapshot()
	assert.Equal(t, 212, snap.Posts[3].Likes)
	assert.Equal(t, 212, snap.FeaturedPosts[0].Likes)

	stored, _ := svc.PostByID(ctx, "4")
	assert.Equal(t, 212, stored.Likes)

	err := c.LikePost(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrPostNotFound))
	assert.Equal(t, "Failed to like post", c.Snapshot().Error)
}

func TestContent_ConcurrentLikesConverge(t *testing.T) {
	c, svc := newContent(t, nil)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.LikePost(ctx, "5"))
		}()
	}
	wg.Wait()

	stored, _ := svc.PostByID(ctx, "5")
	assert.Equal(t, 178+n, stored.Likes)

	require.NoError(t, c.FetchPosts(ctx))
	assert.Equal(t, 178+n, c.Snapshot().FeaturedPosts[1].Likes)
}

func TestContent_FetchPostByIDLeavesCache(t *testing.T) {
	c, _ := newContent(t, nil)

	p, err := c.FetchPostByID(context.Background(), "3")
	require.NoError(t, err)
	require.NotNil(t, p)
	p.Title = "local edit"
	assert.NotEqual(t, "local edit", c.Snapshot().Posts[2].Title)

	missing, err := c.FetchPostByID(context.Background(), "77")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// contentStub lets a test fail individual service calls.
type contentStub struct {
	ContentService
	allFn func(context.Context) ([]models.Post, error)
}

func (s contentStub) AllPosts(ctx context.Context) ([]models.Post, error) { return s.allFn(ctx) }
func (s contentStub) FeaturedPosts(ctx context.Context) ([]models.Post, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestContent_FetchFailureKeepsOldLists(t *testing.T) {
	boom := errors.New("backend down")
	c := NewContent(contentStub{allFn: func(context.Context) ([]models.Post, error) { return nil, boom }}, fixedUser{})
	c.posts = []models.Post{{ID: "old"}}

	err := c.FetchPosts(context.Background())
	assert.ErrorIs(t, err, boom)
	snap := c.Snapshot()
	assert.Equal(t, "Failed to fetch posts", snap.Error)
	assert.Equal(t, []string{"old"}, ids(snap.Posts))
	assert.False(t, snap.Loading)
}

// -------- wired together

func TestProviders_EndToEnd(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewDefault()
	require.NoError(t, err)
	storage, err := kv.OpenSQLite(ctx, db.MemoryPath)
	require.NoError(t, err)
	defer storage.Close()

	mgr := auth.NewManager(st, storage, auth.Options{})
	session, err := NewSession(ctx, mgr)
	require.NoError(t, err)
	posts := NewContent(content.NewService(st, nil, nil), session)
	require.NoError(t, posts.Load(ctx))

	_, err = posts.CreatePost(ctx, models.PostInput{Title: "anon"})
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))

	require.NoError(t, session.Login(ctx, "esther@example.com", "pw"))
	p, err := posts.CreatePost(ctx, models.PostInput{Title: "Lisbon by tram"})
	require.NoError(t, err)
	assert.Equal(t, "3", p.AuthorID)

	// a fresh provider over the same storage sees the persisted session
	restored, err := NewSession(ctx, mgr)
	require.NoError(t, err)
	require.NotNil(t, restored.User())
	assert.Equal(t, "3", restored.User().ID)

	require.NoError(t, session.Logout(ctx))
	_, err = posts.DeletePost(ctx, p.ID)
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))
}
