package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/app/engine"
	"github.com/ivankudzin/matchcore/internal/config"
	"github.com/ivankudzin/matchcore/internal/infra/httpclient"
	s3infra "github.com/ivankudzin/matchcore/internal/infra/s3"
	"github.com/ivankudzin/matchcore/internal/metrics"
	pgrepo "github.com/ivankudzin/matchcore/internal/repo/postgres"
	redrepo "github.com/ivankudzin/matchcore/internal/repo/redis"
	accountsvc "github.com/ivankudzin/matchcore/internal/services/accounts"
	authsvc "github.com/ivankudzin/matchcore/internal/services/auth"
	mediasvc "github.com/ivankudzin/matchcore/internal/services/media"
	ratesvc "github.com/ivankudzin/matchcore/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	stores     *engine.Stores
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	stores, err := engine.OpenStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	e := engine.New(stores.Profiles, stores.Groups, cfg.Engine, log)

	metrics.RegisterEngineMetrics()
	e.Moderation.AttachObserver(metrics.Engine{})

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, complaint audit disabled", zap.Error(err))
	} else {
		pool = p
		audit := pgrepo.NewComplaintAuditRepo(pool)
		if err := audit.EnsureSchema(ctx); err != nil {
			log.Warn("complaint audit schema unavailable, audit disabled", zap.Error(err))
		} else {
			e.Moderation.AttachAudit(audit)
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient)).
		Add(ratesvc.ActionLike, cfg.Limits.LikesPerMinute, time.Minute).
		Add(ratesvc.ActionComplaint, cfg.Limits.ComplaintsPerHour, time.Hour)
	e.Profiles.AttachActivity(redrepo.NewActivityRepo(redisClient), cfg.Limits.ActivityWriteWindow)

	if cfg.Accounts.BaseURL != "" {
		e.Profiles.AttachAccounts(accountsvc.NewClient(httpclient.New(cfg.Accounts.Timeout), cfg.Accounts.BaseURL))
	} else {
		log.Warn("accounts base url is empty, account checks disabled")
	}

	var media *mediasvc.Service
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing without avatars", zap.Error(err))
	} else {
		media = mediasvc.NewService(mediasvc.NewS3Storage(c, cfg.S3.Bucket, cfg.S3.Region), cfg.S3.PresignTTL, log.Named("media"))
		e.Profiles.AttachAvatars(media)
	}

	tokens := authsvc.NewJWTManager(cfg.Auth.JWTSecret, 0,
		authsvc.WithIssuer(cfg.Auth.Issuer),
		authsvc.WithLeeway(cfg.Auth.Leeway),
	)

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)
	RegisterRoutes(r, Dependencies{
		Engine:  e,
		Media:   media,
		Limiter: limiter,
		Tokens:  tokens,
		Logger:  log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		stores:     stores,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if err := a.stores.Close(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
