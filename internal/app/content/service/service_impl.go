package service

import (
	"context"
	"errors"
	"mime"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	accModel "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	accRepo "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/repo"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/repo"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/validate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

type Service interface {
	GetProfile(ctx context.Context, accountID int64) (accModel.Account, error)
	UpdateProfile(ctx context.Context, accountID int64, in dto.ProfileUpdateDTO) error
	SetProfilePicture(ctx context.Context, accountID int64, up model.Upload) (string, error)

	ListPosts(ctx context.Context) ([]model.PostView, error)
	CreatePost(ctx context.Context, authorID int64, in dto.PostDTO) (int64, error)
	UpdatePost(ctx context.Context, authorID, postID int64, in dto.PostDTO) error
	DeletePost(ctx context.Context, authorID, postID int64) error
	AddPostImage(ctx context.Context, authorID, postID int64, up model.Upload) (string, error)

	ListComments(ctx context.Context, postID int64) ([]model.CommentView, error)
	CreateComment(ctx context.Context, authorID int64, in dto.CommentCreateDTO) (int64, error)
	UpdateComment(ctx context.Context, authorID, commentID int64, in dto.CommentUpdateDTO) error
	DeleteComment(ctx context.Context, authorID, commentID int64) error
}

type contentService struct {
	accounts accRepo.AccountRepo
	content  repo.ContentRepo
	feed     repo.FeedCache
	blobs    repo.BlobStore
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger
}

func New(
	ar accRepo.AccountRepo,
	cr repo.ContentRepo,
	fc repo.FeedCache,
	bs repo.BlobStore,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &contentService{
		accounts: ar, content: cr, feed: fc, blobs: bs, cfg: cfg, v: v, log: log,
	}
}

func (s *contentService) GetProfile(ctx context.Context, accountID int64) (accModel.Account, error) {
	return s.accounts.GetAccountByID(ctx, accountID)
}

func (s *contentService) UpdateProfile(ctx context.Context, accountID int64, in dto.ProfileUpdateDTO) error {
	if err := validate.Struct(s.v, in); err != nil {
		return err
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return customErrors.NewInvalidArgument("username is blank")
	}

	taken, err := s.accounts.UsernameTakenByOther(ctx, username, accountID)
	if err != nil {
		return err
	}
	if taken {
		return customErrors.ErrAlreadyExists
	}
	if err := s.accounts.UpdateProfile(ctx, accountID, username, in.Bio); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// SetProfilePicture stores the new picture before switching the account to
// it. The previous blob is removed only after the switch succeeds.
func (s *contentService) SetProfilePicture(ctx context.Context, accountID int64, up model.Upload) (string, error) {
	acc, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return "", err
	}

	url, key, err := s.store(ctx, path.Join("fotos_perfil", strconv.FormatInt(accountID, 10)), up)
	if err != nil {
		return "", err
	}
	if err := s.accounts.SetProfilePicture(ctx, accountID, url); err != nil {
		s.dropBlob(ctx, key)
		return "", err
	}

	if acc.ProfilePictureURL != "" {
		if old, ok := s.blobs.KeyFromURL(acc.ProfilePictureURL); ok {
			s.dropBlob(ctx, old)
		}
	}
	return url, nil
}

func (s *contentService) ListPosts(ctx context.Context) ([]model.PostView, error) {
	posts, hit, err := s.feed.Get(ctx)
	if err != nil {
		s.log.Warn("feed cache read failed", zap.Error(err))
	}
	if hit {
		return posts, nil
	}

	posts, err = s.content.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.feed.Set(ctx, posts); err != nil {
		s.log.Warn("feed cache write failed", zap.Error(err))
	}
	return posts, nil
}

func (s *contentService) CreatePost(ctx context.Context, authorID int64, in dto.PostDTO) (int64, error) {
	if err := validate.Struct(s.v, in); err != nil {
		return 0, err
	}
	p := &model.Post{AuthorID: authorID, Title: in.Title, Body: in.Body}
	if err := s.content.CreatePost(ctx, p); err != nil {
		return 0, err
	}
	s.invalidateFeed(ctx)
	return p.ID, nil
}

func (s *contentService) UpdatePost(ctx context.Context, authorID, postID int64, in dto.PostDTO) error {
	if err := validate.Struct(s.v, in); err != nil {
		return err
	}
	if _, err := s.ownPost(ctx, authorID, postID); err != nil {
		return err
	}
	if err := s.content.UpdatePost(ctx, postID, in.Title, in.Body); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *contentService) DeletePost(ctx context.Context, authorID, postID int64) error {
	if _, err := s.ownPost(ctx, authorID, postID); err != nil {
		return err
	}
	images, err := s.content.ListPostImages(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.content.DeletePost(ctx, postID); err != nil {
		return err
	}
	for _, img := range images {
		if key, ok := s.blobs.KeyFromURL(img.URL); ok {
			s.dropBlob(ctx, key)
		}
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *contentService) AddPostImage(ctx context.Context, authorID, postID int64, up model.Upload) (string, error) {
	if _, err := s.ownPost(ctx, authorID, postID); err != nil {
		return "", err
	}

	url, key, err := s.store(ctx, path.Join("publicaciones", strconv.FormatInt(postID, 10)), up)
	if err != nil {
		return "", err
	}
	if err := s.content.AddPostImage(ctx, &model.PostImage{PostID: postID, URL: url}); err != nil {
		s.dropBlob(ctx, key)
		return "", err
	}
	s.invalidateFeed(ctx)
	return url, nil
}

func (s *contentService) ListComments(ctx context.Context, postID int64) ([]model.CommentView, error) {
	if _, err := s.content.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.content.ListComments(ctx, postID)
}

func (s *contentService) CreateComment(ctx context.Context, authorID int64, in dto.CommentCreateDTO) (int64, error) {
	if err := validate.Struct(s.v, in); err != nil {
		return 0, err
	}
	if _, err := s.content.GetPost(ctx, in.PostID); err != nil {
		return 0, err
	}
	c := &model.Comment{PostID: in.PostID, AuthorID: authorID, Body: in.Body}
	if err := s.content.CreateComment(ctx, c); err != nil {
		return 0, err
	}
	s.invalidateFeed(ctx)
	return c.ID, nil
}

func (s *contentService) UpdateComment(ctx context.Context, authorID, commentID int64, in dto.CommentUpdateDTO) error {
	if err := validate.Struct(s.v, in); err != nil {
		return err
	}
	if err := s.ownComment(ctx, authorID, commentID); err != nil {
		return err
	}
	return s.content.UpdateComment(ctx, commentID, in.Body)
}

func (s *contentService) DeleteComment(ctx context.Context, authorID, commentID int64) error {
	if err := s.ownComment(ctx, authorID, commentID); err != nil {
		return err
	}
	if err := s.content.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *contentService) ownPost(ctx context.Context, authorID, postID int64) (model.Post, error) {
	p, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return model.Post{}, err
	}
	if p.AuthorID != authorID {
		return model.Post{}, customErrors.ErrForbidden
	}
	return p, nil
}

func (s *contentService) ownComment(ctx context.Context, authorID, commentID int64) error {
	c, err := s.content.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != authorID {
		return customErrors.ErrForbidden
	}
	return nil
}

// store checks the upload and writes it under dir with a fresh name.
func (s *contentService) store(ctx context.Context, dir string, up model.Upload) (url, key string, err error) {
	ext, err := s.checkUpload(up)
	if err != nil {
		return "", "", err
	}

	rc, err := up.Open()
	if err != nil {
		return "", "", customErrors.WrapInternal(err, "open upload")
	}
	defer rc.Close()

	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(ext)
	}

	key = path.Join(dir, uuid.NewString()+ext)
	url, err = s.blobs.Put(ctx, key, rc, up.Size, contentType)
	if err != nil {
		return "", "", customErrors.WrapInternal(err, "store upload")
	}
	return url, key, nil
}

func (s *contentService) checkUpload(up model.Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", customErrors.NewInvalidArgument("file type not allowed, use png, jpg, jpeg or gif")
	}
	if up.Size <= 0 {
		return "", customErrors.NewInvalidArgument("file is empty")
	}
	if up.Size > s.cfg.MaxUploadBytes {
		return "", customErrors.NewInvalidArgument("file exceeds " + strconv.FormatInt(s.cfg.MaxUploadBytes, 10) + " bytes")
	}
	if up.Open == nil {
		return "", customErrors.NewInvalidArgument("file is missing")
	}
	return ext, nil
}

func (s *contentService) dropBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, customErrors.ErrNotFound) {
		s.log.Warn("blob cleanup failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *contentService) invalidateFeed(ctx context.Context) {
	if err := s.feed.Invalidate(ctx); err != nil {
		s.log.Warn("feed cache invalidation failed", zap.Error(err))
	}
}
