package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inkflow/internal/kv"
	"inkflow/internal/latency"
	"inkflow/internal/logging"
	"inkflow/internal/models"
	"inkflow/internal/store"
)

const (
	TokenKey = "inkflow_auth_token"
	UserKey  = "inkflow_auth_user"
)

const (
	loginDelay  = 800 * time.Millisecond
	signupDelay = 1000 * time.Millisecond
)

type Options struct {
	Latency *latency.Simulator
	// VerifyPasswords turns on bcrypt checks for users that have a hash.
	VerifyPasswords bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *zap.Logger
	Now        func() time.Time
}

// Manager issues sessions against the user records in a store and keeps the
// current one in durable storage.
type Manager struct {
	users   store.Store
	storage kv.Storage
	opts    Options
	log     *zap.Logger
}

func NewManager(users store.Store, storage kv.Storage, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		users:   users,
		storage: storage,
		opts:    opts,
		log:     logging.OrNop(opts.Logger).Named("auth"),
	}
}

func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := m.opts.Latency.Wait(ctx, loginDelay); err != nil {
		return nil, err
	}
	u, err := m.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		m.log.Info("login rejected", zap.String("reason", "unknown email"))
		return nil, models.ErrInvalidCredentials
	}
	if m.opts.VerifyPasswords && u.PasswordHash != "" && !CheckPassword(password, u.PasswordHash) {
		m.log.Info("login rejected", zap.String("reason", "password mismatch"), zap.String("user_id", u.ID))
		return nil, models.ErrInvalidCredentials
	}
	if err := m.persist(ctx, *u); err != nil {
		return nil, err
	}
	m.log.Info("user logged in", zap.String("user_id", u.ID))
	return u, nil
}

func (m *Manager) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, models.NewValidationError("Name and email are required")
	}
	if err := m.opts.Latency.Wait(ctx, signupDelay); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password, m.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := m.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		CreatedAt:    m.opts.Now().UTC(),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	if err := m.persist(ctx, *u); err != nil {
		return nil, err
	}
	m.log.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// Logout clears the stored session. It is safe to call without one.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.log.Info("user logged out")
	return nil
}

// CurrentUser returns the stored user snapshot, or nil when there is none
// or it cannot be decoded.
func (m *Manager) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := m.storage.Get(ctx, UserKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read session user: %w", err)
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.log.Warn("discarding unreadable session user", zap.Error(err))
		return nil, nil
	}
	return &u, nil
}

// Token returns the stored session token, or "" when there is none.
func (m *Manager) Token(ctx context.Context) (string, error) {
	tok, err := m.storage.Get(ctx, TokenKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return tok, nil
}

func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	tok, err := m.Token(ctx)
	return tok != "", err
}

// Session returns the stored token and user together, or nil if either is
// missing.
func (m *Manager) Session(ctx context.Context) (*models.Session, error) {
	tok, err := m.Token(ctx)
	if err != nil || tok == "" {
		return nil, err
	}
	u, err := m.CurrentUser(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return &models.Session{Token: tok, User: *u}, nil
}

func (m *Manager) newToken(userID string) string {
	return fmt.Sprintf("token-%s-%d-%s", userID, m.opts.Now().UnixMilli(), uuid.NewString())
}

func (m *Manager) persist(ctx context.Context, u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := m.storage.Set(ctx, TokenKey, m.newToken(u.ID)); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	if err := m.storage.Set(ctx, UserKey, string(b)); err != nil {
		_ = m.storage.Delete(ctx, TokenKey)
		return fmt.Errorf("store session user: %w", err)
	}
	return nil
}
