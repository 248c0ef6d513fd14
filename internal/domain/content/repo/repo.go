package repo

import (
	"context"
	"io"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/model"
)

type ContentRepo interface {
	ListPosts(ctx context.Context) ([]model.PostView, error)

	GetPost(ctx context.Context, id int64) (model.Post, error)

	CreatePost(ctx context.Context, p *model.Post) error

	UpdatePost(ctx context.Context, id int64, title, body string) error

	// DeletePost removes the post with its images and comments.
	DeletePost(ctx context.Context, id int64) error

	ListPostImages(ctx context.Context, postID int64) ([]model.PostImage, error)

	// AddPostImage appends img after the post's last image.
	AddPostImage(ctx context.Context, img *model.PostImage) error

	ListComments(ctx context.Context, postID int64) ([]model.CommentView, error)

	GetComment(ctx context.Context, id int64) (model.Comment, error)

	CreateComment(ctx context.Context, c *model.Comment) error

	UpdateComment(ctx context.Context, id int64, body string) error

	DeleteComment(ctx context.Context, id int64) error
}

// FeedCache holds the rendered public feed.
type FeedCache interface {
	Get(ctx context.Context) ([]model.PostView, bool, error)
	Set(ctx context.Context, posts []model.PostView) error
	Invalidate(ctx context.Context) error
}

// BlobStore keeps uploaded image bytes outside the database.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (key string, ok bool)
}
