package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentRepo struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

var _ repo.ContentRepo = (*ContentRepo)(nil)

type postRow struct {
	ID           int64
	AuthorID     int64
	Author       string
	Title        string
	Content      string
	CreatedAt    time.Time
	CommentCount int64
}

// ListPosts returns the feed newest first. The first image of a post becomes
// its cover, the rest keep their upload order.
func (p *ContentRepo) ListPosts(ctx context.Context) ([]model.PostView, error) {
	var rows []postRow
	err := p.db.WithContext(ctx).
		Table("posts AS p").
		Select(`p.id, p.author_id, u.username AS author, p.title, p.body AS content, p.created_at,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count`).
		Joins("JOIN users u ON u.id = p.author_id").
		Order("p.created_at DESC, p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListPosts")
	}

	out := make([]model.PostView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	var images []model.PostImage
	err = p.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("post_id, position, id").
		Find(&images).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListPosts")
	}
	urls := make(map[int64][]string, len(rows))
	for _, img := range images {
		urls[img.PostID] = append(urls[img.PostID], img.URL)
	}

	for _, r := range rows {
		v := model.PostView{
			ID:             r.ID,
			AuthorID:       r.AuthorID,
			Author:         r.Author,
			Title:          r.Title,
			Content:        r.Content,
			CreatedAt:      r.CreatedAt,
			CommentCount:   r.CommentCount,
			ExtraImageURLs: []string{},
		}
		if u := urls[r.ID]; len(u) > 0 {
			cover := u[0]
			v.ImageURL = &cover
			v.ExtraImageURLs = append(v.ExtraImageURLs, u[1:]...)
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *ContentRepo) GetPost(ctx context.Context, id int64) (model.Post, error) {
	var post model.Post
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&post)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Post{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Post{}, customErrors.WrapInternal(err, "GetPost")
	}
	return post, nil
}

func (p *ContentRepo) CreatePost(ctx context.Context, post *model.Post) error {
	if err := p.db.WithContext(ctx).Create(post).Error; err != nil {
		return customErrors.WrapInternal(err, "CreatePost")
	}
	return nil
}

func (p *ContentRepo) UpdatePost(ctx context.Context, id int64, title, body string) error {
	res := p.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "body": body})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdatePost")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *ContentRepo) DeletePost(ctx context.Context, id int64) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return customErrors.WrapInternal(err, "DeletePost")
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostImage{}).Error; err != nil {
			return customErrors.WrapInternal(err, "DeletePost")
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if err := res.Error; err != nil {
			return customErrors.WrapInternal(err, "DeletePost")
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
}

func (p *ContentRepo) ListPostImages(ctx context.Context, postID int64) ([]model.PostImage, error) {
	var images []model.PostImage
	err := p.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("position, id").
		Find(&images).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListPostImages")
	}
	return images, nil
}

func (p *ContentRepo) AddPostImage(ctx context.Context, img *model.PostImage) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", img.PostID).First(&post)
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return customErrors.ErrNotFound
		}
		if err := res.Error; err != nil {
			return customErrors.WrapInternal(err, "AddPostImage")
		}

		var last int
		err := tx.Model(&model.PostImage{}).
			Where("post_id = ?", img.PostID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error
		if err != nil {
			return customErrors.WrapInternal(err, "AddPostImage")
		}
		img.Position = last + 1
		if err := tx.Create(img).Error; err != nil {
			return customErrors.WrapInternal(err, "AddPostImage")
		}
		return nil
	})
}

func (p *ContentRepo) ListComments(ctx context.Context, postID int64) ([]model.CommentView, error) {
	out := []model.CommentView{}
	err := p.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.post_id, c.author_id, u.username AS author, c.body AS text, c.created_at").
		Joins("JOIN users u ON u.id = c.author_id").
		Where("c.post_id = ?", postID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListComments")
	}
	return out, nil
}

func (p *ContentRepo) GetComment(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Comment{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Comment{}, customErrors.WrapInternal(err, "GetComment")
	}
	return c, nil
}

func (p *ContentRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	if err := p.db.WithContext(ctx).Create(c).Error; err != nil {
		return customErrors.WrapInternal(err, "CreateComment")
	}
	return nil
}

func (p *ContentRepo) UpdateComment(ctx context.Context, id int64, body string) error {
	res := p.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("body", body)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateComment")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *ContentRepo) DeleteComment(ctx context.Context, id int64) error {
	res := p.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteComment")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}
