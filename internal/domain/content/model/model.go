package model

import (
	"io"
	"time"
)

type Post struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	AuthorID  int64  `gorm:"not null;index"`
	Title     string `gorm:"size:255;not null"`
	Body      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }

type PostImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	PostID    int64  `gorm:"not null;index"`
	URL       string `gorm:"not null"`
	Position  int    `gorm:"not null"`
	CreatedAt time.Time
}

func (PostImage) TableName() string { return "post_images" }

type Comment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	PostID    int64  `gorm:"not null;index"`
	AuthorID  int64  `gorm:"not null;index"`
	Body      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

// PostView is a post as shown in the public feed.
type PostView struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"autor_id"`
	Author         string    `json:"author"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	ImageURL       *string   `json:"imageUrl"`
	ExtraImageURLs []string  `json:"imagenes_adicionales_urls"`
	CommentCount   int64     `json:"cantidad_comentarios"`
}

type CommentView struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"publicacion_id"`
	AuthorID  int64     `json:"autor_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is an incoming image file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

