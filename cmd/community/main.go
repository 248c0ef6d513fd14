package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	myPostgresRepo "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/notify"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/storage/local"
	s3store "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/storage/s3"
	myGrpc "github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/grpc"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/handler"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/code"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/jwt"
	accountService "github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/service"
	contentService "github.com/Miraines/MoonyAndStarry/community-service/internal/app/content/service"
	notifyDomain "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/repo"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/community-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/server"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/validate"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must(config.LogConfig{Level: "info"}).Fatal("failed to load config", zap.Error(err))
	}
	zapLog := lg.Must(cfg.Log)
	defer zapLog.Sync()

	if cfg.JWTSecret == "" {
		zapLog.Error("JWT_SECRET is not set, login and session checks will fail")
	}
	if zapLog.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	probes := []myGrpc.Probe{myGrpc.DBProbe(sqlDB)}
	var feed repo.FeedCache = myRedisRepo.NoopFeedCache{}
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		feed = myRedisRepo.NewRedisFeedCache(redisCli, cfg.FeedCacheTTL)
		probes = append(probes, myGrpc.RedisProbe(redisCli))
	} else {
		zapLog.Info("REDIS_ADDRESS is empty, feed cache disabled")
	}

	var notifier notifyDomain.Notifier
	if cfg.SMTP.Enabled() {
		smtpNotifier, pool, err := notify.NewSMTPNotifier(cfg.SMTP)
		if err != nil {
			zapLog.Fatal("smtp", zap.Error(err))
		}
		defer pool.Close()
		notifier = smtpNotifier
	} else {
		zapLog.Warn("SMTP_HOST is empty, codes will not be emailed")
		notifier = notify.NewLogNotifier(zapLog)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := newBlobStore(rootCtx, cfg)
	if err != nil {
		zapLog.Fatal("blob storage", zap.Error(err))
	}

	v := validate.New()
	accountRepo := myPostgresRepo.NewAccountRepo(db)
	contentRepo := myPostgresRepo.NewContentRepo(db)

	accounts := accountService.New(
		accountRepo,
		jwt.NewJWTUtil(cfg),
		code.NewEngine(cfg.VerificationCodeTTL, cfg.ResetCodeTTL),
		notifier,
		cfg,
		v,
		zapLog,
	)
	content := contentService.New(accountRepo, contentRepo, feed, blobs, cfg, v, zapLog)

	router := handler.NewRouter(handler.New(accounts, content, cfg.MaxUploadBytes), cfg, zapLog)
	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := myGrpc.NewHealthReporter(zapLog, probes...)
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return health.Run(ctx, healthInterval)
	})
	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, health.Server(), zapLog)
	})
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress))
		var err error
		if cfg.HTTPSCertFile != "" && cfg.HTTPSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
		os.Exit(1)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (repo.BlobStore, error) {
	if cfg.StorageBackend == "s3" {
		return s3store.New(ctx, cfg.S3)
	}
	return local.New(cfg.UploadDir, cfg.APIBaseURL+"/uploads")
}
