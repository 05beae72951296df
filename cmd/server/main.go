package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/database"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/handler"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/logging"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/middleware"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/router"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/service"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Env)
	debug := !cfg.IsProduction()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Document store for users and products
	client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	if err := products.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("product indexes")
	}

	// Redis is optional: without it there is no rate limiting and logout
	// cannot revoke tokens.
	rdb := config.NewRedisClient(cfg.Redis)
	var (
		revoker service.TokenRevoker
		checker middleware.RevocationChecker
	)
	if rdb != nil {
		defer rdb.Close()
		tokens := repository.NewTokenRepo(rdb, "")
		revoker, checker = tokens, tokens
		log.Info().Str("addr", cfg.Redis.Address()).Msg("redis connected")
	} else {
		log.Warn().Msg("redis unavailable; rate limiting and token revocation disabled")
	}

	store, err := newImageStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("image store")
	}
	uploads := upload.New(store, cfg.Upload, &log)

	var pub service.EventPublisher
	if cfg.AMQP.URL != "" {
		pub = service.NewAuditPublisher(cfg.AMQP)
	}
	auditor := service.NewAuditRecorder(pub, &log)

	signer := utils.NewTokenSigner(cfg)
	v := service.NewValidator()
	auth := service.NewAuthService(cfg, users, signer, revoker, v, &log)
	catalog := service.NewCatalogService(products, uploads, v, cfg.DBTimeout, &log)
	authn := middleware.NewAuthenticator(signer, checker, debug, &log)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(debug)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(&log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.AdminSecretHeader},
		AllowCredentials: true,
	}))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, debug), authn, middleware.NewTokenBucket(cfg.RateLimit, rdb, debug, &log))
	router.RegisterProducts(e, handler.NewProductHandler(catalog, uploads, debug), authn, cfg.AdminSecret, auditor, cfg.Upload.MaxBytes)
	router.RegisterUploads(e, handler.NewUploadsHandler(uploads, debug), cfg.Upload.PublicPrefix)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}

func newImageStore(ctx context.Context, cfg config.Config) (upload.Store, error) {
	if cfg.Upload.Backend == "s3" {
		return upload.NewS3Store(ctx, cfg.S3)
	}
	return upload.NewDiskStore(cfg.Upload.Dir)
}
