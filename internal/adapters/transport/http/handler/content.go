package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/dto"
	httpmw "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/middleware"
	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/model"
	"github.com/gin-gonic/gin"
)

const (
	profilePictureField = "profile_picture"
	postImageField      = "imagen_publicacion"
)

func (h *Handler) getProfile(c *gin.Context) {
	claims, _ := httpmw.Session(c)
	acc, err := h.content.GetProfile(c.Request.Context(), claims.AccountID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{
		ID:          acc.ID,
		Username:    acc.Username,
		Email:       acc.Email,
		Bio:         acc.Bio,
		PictureURL:  acc.ProfilePictureURL,
		Verified:    acc.Verified,
		MemberSince: acc.CreatedAt.Unix(),
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var body dto.ProfileUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	claims, _ := httpmw.Session(c)
	if err := h.content.UpdateProfile(c.Request.Context(), claims.AccountID, body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Perfil actualizado."})
}

func (h *Handler) setProfilePicture(c *gin.Context) {
	up, ok := h.upload(c, profilePictureField)
	if !ok {
		return
	}
	claims, _ := httpmw.Session(c)
	url, err := h.content.SetProfilePicture(c.Request.Context(), claims.AccountID, up)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Foto de perfil actualizada.", "foto_perfil": url})
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.content.ListPosts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) createPost(c *gin.Context) {
	var body dto.PostDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	claims, _ := httpmw.Session(c)
	id, err := h.content.CreatePost(c.Request.Context(), claims.AccountID, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Publicación creada.", "id": id})
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.PostDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	claims, _ := httpmw.Session(c)
	if err := h.content.UpdatePost(c.Request.Context(), claims.AccountID, id, body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publicación actualizada."})
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	claims, _ := httpmw.Session(c)
	if err := h.content.DeletePost(c.Request.Context(), claims.AccountID, id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publicación eliminada."})
}

func (h *Handler) addPostImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	up, ok := h.upload(c, postImageField)
	if !ok {
		return
	}
	claims, _ := httpmw.Session(c)
	url, err := h.content.AddPostImage(c.Request.Context(), claims.AccountID, id, up)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Imagen agregada.", "url": url})
}

func (h *Handler) listComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	comments, err := h.content.ListComments(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) createComment(c *gin.Context) {
	var body dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	claims, _ := httpmw.Session(c)
	id, err := h.content.CreateComment(c.Request.Context(), claims.AccountID, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comentario publicado.", "id": id})
}

func (h *Handler) updateComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.CommentUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	claims, _ := httpmw.Session(c)
	if err := h.content.UpdateComment(c.Request.Context(), claims.AccountID, id, body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comentario actualizado."})
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	claims, _ := httpmw.Session(c)
	if err := h.content.DeleteComment(c.Request.Context(), claims.AccountID, id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comentario eliminado."})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, customErrors.NewInvalidArgument("id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// upload reads one multipart file. The body is capped a little above the
// file limit so the service can report oversize files itself.
func (h *Handler) upload(c *gin.Context, field string) (model.Upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	fh, err := c.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			badRequest(c, customErrors.NewInvalidArgument("file too large"))
			return model.Upload{}, false
		}
		badRequest(c, customErrors.NewInvalidArgument("missing file field "+field))
		return model.Upload{}, false
	}
	return fileUpload(fh), true
}

func fileUpload(fh *multipart.FileHeader) model.Upload {
	return model.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
