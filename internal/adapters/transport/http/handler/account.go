package handler

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/dto"
	httpmw "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	id, err := h.accounts.Register(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuario registrado. Revisa tu correo para verificar la cuenta.",
		"user_id": id,
	})
}

func (h *Handler) verify(c *gin.Context) {
	var body dto.VerifyDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	if err := h.accounts.Verify(c.Request.Context(), body); err != nil {
		handleVerifyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cuenta verificada correctamente."})
}

func (h *Handler) resendVerification(c *gin.Context) {
	var body dto.ResendVerificationDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	if err := h.accounts.ResendVerification(c.Request.Context(), body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Si la cuenta existe y no está verificada, se envió un nuevo código."})
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	sess, err := h.accounts.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		Message: "Inicio de sesión exitoso",
		User: dto.UserSummary{
			ID:       sess.Account.ID,
			Username: sess.Account.Username,
			Email:    sess.Account.Email,
		},
		AccessToken: sess.Token,
		ExpiresAt:   sess.ExpiresAt.Unix(),
	})
}

// requestPasswordReset answers the same way whether or not the email exists.
func (h *Handler) requestPasswordReset(c *gin.Context) {
	var body dto.ResetRequestDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	if err := h.accounts.RequestPasswordReset(c.Request.Context(), body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Si el correo está registrado, recibirás un código para restablecer tu contraseña."})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contraseña restablecida correctamente."})
}

func (h *Handler) loggedIn(c *gin.Context) {
	claims, _ := httpmw.Session(c)
	c.JSON(http.StatusOK, gin.H{
		"logeado":  1,
		"user_id":  claims.AccountID,
		"username": claims.Username,
	})
}
