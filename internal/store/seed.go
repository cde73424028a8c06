package store

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"inkflow/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the on-disk shape of the initial store contents.
type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Posts    []SeedPost    `yaml:"posts"`
	Comments []SeedComment `yaml:"comments"`
}

type SeedUser struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Bio       string `yaml:"bio"`
	Avatar    string `yaml:"avatar"`
	CreatedAt string `yaml:"created_at"`
}

type SeedPost struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Excerpt    string   `yaml:"excerpt"`
	Content    string   `yaml:"content"`
	CoverImage string   `yaml:"cover_image"`
	AuthorID   string   `yaml:"author_id"`
	CreatedAt  string   `yaml:"created_at"`
	UpdatedAt  string   `yaml:"updated_at"`
	Tags       []string `yaml:"tags"`
	Likes      int      `yaml:"likes"`
}

type SeedComment struct {
	ID        string `yaml:"id"`
	PostID    string `yaml:"post_id"`
	AuthorID  string `yaml:"author_id"`
	Content   string `yaml:"content"`
	CreatedAt string `yaml:"created_at"`
}

// DefaultSeed returns the fixture compiled into the binary.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeedFile reads a seed from path, or the embedded one when path is empty.
func LoadSeedFile(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func (s Seed) validate() error {
	users := make(map[string]bool, len(s.Users))
	for _, u := range s.Users {
		if u.ID == "" || users[u.ID] {
			return fmt.Errorf("seed: missing or duplicate user id %q", u.ID)
		}
		users[u.ID] = true
	}
	posts := make(map[string]bool, len(s.Posts))
	for _, p := range s.Posts {
		if p.ID == "" || posts[p.ID] {
			return fmt.Errorf("seed: missing or duplicate post id %q", p.ID)
		}
		if !users[p.AuthorID] {
			return fmt.Errorf("seed: post %s references unknown author %q", p.ID, p.AuthorID)
		}
		posts[p.ID] = true
	}
	comments := make(map[string]bool, len(s.Comments))
	for _, c := range s.Comments {
		if c.ID == "" || comments[c.ID] {
			return fmt.Errorf("seed: missing or duplicate comment id %q", c.ID)
		}
		if !posts[c.PostID] {
			return fmt.Errorf("seed: comment %s references unknown post %q", c.ID, c.PostID)
		}
		comments[c.ID] = true
	}
	return nil
}

func parseTime(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("seed: %s: %w", field, err)
	}
	return t, nil
}

func (u SeedUser) model() (models.User, error) {
	created, err := parseTime("user "+u.ID+" created_at", u.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		CreatedAt: created,
	}, nil
}

func (p SeedPost) model() (models.Post, error) {
	created, err := parseTime("post "+p.ID+" created_at", p.CreatedAt)
	if err != nil {
		return models.Post{}, err
	}
	updated, err := parseTime("post "+p.ID+" updated_at", p.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	return models.Post{
		ID:         p.ID,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		AuthorID:   p.AuthorID,
		CreatedAt:  created,
		UpdatedAt:  updated,
		Tags:       p.Tags,
		Likes:      p.Likes,
	}, nil
}

func (c SeedComment) model() (models.Comment, error) {
	created, err := parseTime("comment "+c.ID+" created_at", c.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}
	return models.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: created,
	}, nil
}
