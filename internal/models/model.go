package models

import (
	"slices"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash string    `json:"-"`
}

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	CoverImage    string    `json:"coverImage,omitempty"`
	AuthorID      string    `json:"authorId"`
	Author        *User     `json:"author,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Tags          []string  `json:"tags,omitempty"`
	Likes         int       `json:"likes"`
	CommentsCount int       `json:"commentsCount"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Author    *User     `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session pairs the opaque token with the user snapshot it was issued for.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PostInput carries the caller-supplied fields of a new post.
type PostInput struct {
	Title      string
	Excerpt    string
	Content    string
	CoverImage string
	Tags       []string
}

// PostPatch is a partial update. Nil fields are left untouched.
type PostPatch struct {
	Title      *string
	Excerpt    *string
	Content    *string
	CoverImage *string
	Tags       *[]string
}

// Apply merges the non-nil fields of the patch into p.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Excerpt != nil {
		p.Excerpt = *pp.Excerpt
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.CoverImage != nil {
		p.CoverImage = *pp.CoverImage
	}
	if pp.Tags != nil {
		p.Tags = slices.Clone(*pp.Tags)
	}
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Post) Clone() Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Author != nil {
		a := *p.Author
		p.Author = &a
	}
	return p
}
