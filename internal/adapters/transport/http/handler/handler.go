package handler

import (
	"net/http"
	"strings"
	"time"

	httpmw "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/middleware"
	accountService "github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/service"
	contentService "github.com/Miraines/MoonyAndStarry/community-service/internal/app/content/service"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	accounts  accountService.Service
	content   contentService.Service
	maxUpload int64
}

func New(accounts accountService.Service, content contentService.Service, maxUpload int64) *Handler {
	return &Handler{accounts: accounts, content: content, maxUpload: maxUpload}
}

// NewRouter wires every route. Static uploads are served only for the local
// storage backend.
func NewRouter(h *Handler, cfg *config.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(log))
	router.Use(httpmw.Metrics())
	router.MaxMultipartMemory = 8 << 20

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	session := httpmw.RequireSession(h.accounts, log)

	router.POST("/register", h.register)
	router.POST("/verificar", h.verify)
	router.POST("/resend-verification", h.resendVerification)
	router.POST("/login", h.login)
	router.POST("/request-password-reset", h.requestPasswordReset)
	router.POST("/reset-password", h.resetPassword)
	router.GET("/logeado", session, h.loggedIn)

	router.GET("/perfil", session, h.getProfile)
	router.PUT("/perfil", session, h.updateProfile)
	router.PUT("/perfil/foto", session, h.setProfilePicture)

	router.GET("/publicaciones", h.listPosts)
	router.GET("/publicaciones/:id/comentarios", h.listComments)
	router.POST("/crear-publicacion", session, h.createPost)
	router.PUT("/editar-publicacion/:id", session, h.updatePost)
	router.DELETE("/eliminar-publicacion/:id", session, h.deletePost)
	router.POST("/publicaciones/:id/upload_imagen", session, h.addPostImage)

	router.POST("/comentar-publicacion", session, h.createComment)
	router.PUT("/editar-comentario/:id", session, h.updateComment)
	router.DELETE("/eliminar-comentario/:id", session, h.deleteComment)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if strings.EqualFold(cfg.StorageBackend, "local") && cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}
	return router
}
