package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/config"
	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
	s3infra "github.com/RCDNC/swipedeck/internal/infra/s3"
	telegraminfra "github.com/RCDNC/swipedeck/internal/infra/telegram"
	"github.com/RCDNC/swipedeck/internal/jobs/cleanup"
	"github.com/RCDNC/swipedeck/internal/repo/apihttp"
	pgrepo "github.com/RCDNC/swipedeck/internal/repo/postgres"
	redrepo "github.com/RCDNC/swipedeck/internal/repo/redis"
	authsvc "github.com/RCDNC/swipedeck/internal/services/auth"
	demosvc "github.com/RCDNC/swipedeck/internal/services/demo"
	mediasvc "github.com/RCDNC/swipedeck/internal/services/media"
	metricssvc "github.com/RCDNC/swipedeck/internal/services/metrics"
	notifysvc "github.com/RCDNC/swipedeck/internal/services/notify"
	ratesvc "github.com/RCDNC/swipedeck/internal/services/rate"
	"github.com/RCDNC/swipedeck/internal/services/sessions"
	swipesvc "github.com/RCDNC/swipedeck/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	cleanup    *cleanup.Job
	jobsCtx    context.Context
	stopJobs   context.CancelFunc
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load session timezone: %w", err)
	}
	var demoPattern *regexp.Regexp
	if strings.TrimSpace(cfg.Demo.UserPattern) != "" {
		demoPattern, err = regexp.Compile(cfg.Demo.UserPattern)
		if err != nil {
			return nil, fmt.Errorf("compile demo user pattern: %w", err)
		}
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.HTTP, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	}); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	redisUp := true
	if err := redrepo.Ping(ctx, redisClient); err != nil {
		redisUp = false
		log.Warn("redis ping failed, quota cache falls back to memory and throttling is degraded", zap.Error(err))
	}

	limits := rules.Limits{
		FreeLikesPerDay:      cfg.Limits.FreeLikesPerDay,
		PlusLikesPerDay:      cfg.Limits.PlusLikesPerDay,
		FreeSuperLikesPerDay: cfg.Limits.FreeSuperLikesPerDay,
		PlusSuperLikesPerDay: cfg.Limits.PlusSuperLikesPerDay,
		FreeRewindsPerDay:    cfg.Limits.FreeRewindsPerDay,
		PlusRewindsPerDay:    cfg.Limits.PlusRewindsPerDay,
	}

	var quotaCache metricssvc.Store = redrepo.NewMetricsRepo(redisClient)
	if !redisUp {
		quotaCache = metricssvc.NewMemoryStore()
	}
	rateRepo := redrepo.NewRateRepo(redisClient)
	quotaRepo := pgrepo.NewQuotaRepo(pool, loc)
	outcomeRepo := pgrepo.NewOutcomeRepo(pool)

	live := swipesvc.Backend{}
	remote, err := apihttp.NewClient(apihttp.Config{
		BaseURL:  cfg.RemoteAPI.BaseURL,
		Timeout:  cfg.RemoteAPI.Timeout,
		PageSize: cfg.RemoteAPI.PageSize,
		Limits:   limits,
	})
	if err != nil {
		log.Warn("remote api client init failed, only demo sessions will work", zap.Error(err))
	}

	fallback := func(string) model.QuotaState {
		return limits.Quota(false, rules.NextResetAt(time.Now().UTC(), loc))
	}
	layered := metricssvc.LayeredDependencies{Fallback: fallback, Logger: log}
	switch cfg.Metrics.Backend {
	case "redis":
		layered.Source = quotaCache
		if pool != nil {
			layered.Durable = quotaRepo
		}
	case "postgres":
		layered.Source = quotaRepo
		layered.Cache = quotaCache
	default:
		if remote != nil {
			layered.Source = remote
		}
		layered.Cache = quotaCache
		if pool != nil {
			layered.Durable = quotaRepo
		}
	}
	if remote != nil {
		live = swipesvc.Backend{
			Candidates: remote,
			Actions:    remote,
			Metrics:    metricssvc.NewLayered(layered),
		}
	}

	demoService := demosvc.NewService(demosvc.Config{Timezone: loc})

	deps := swipesvc.Dependencies{
		Live: live,
		Demo: demoService.Backend(),
		RateLimiter: ratesvc.NewLimiter(rateRepo, ratesvc.Config{
			PerMinute: cfg.Limits.PlusRatePerMinute,
			Per10Sec:  cfg.Limits.PlusRatePer10Seconds,
		}),
		Logger: log,
	}
	if pool != nil {
		deps.Journal = outcomeRepo
	}

	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, photo references are passed through", zap.Error(err))
	} else {
		storage := mediasvc.NewS3Storage(c, cfg.S3.Bucket)
		if err := storage.BucketExists(ctx); err != nil {
			log.Warn("s3 bucket check failed", zap.String("bucket", cfg.S3.Bucket), zap.Error(err))
		}
		deps.Photos = mediasvc.NewResolver(storage, cfg.S3.SignTTL, log)
	}

	if token := strings.TrimSpace(cfg.Telegram.BotToken); token != "" {
		if bot, err := telegraminfra.NewBot(token); err != nil {
			log.Warn("telegram init failed, match notifications disabled", zap.Error(err))
		} else {
			deps.Notifier = notifysvc.NewTelegramNotifier(bot, log)
		}
	}

	registry := sessions.NewRegistry(sessions.Dependencies{
		Swipes: deps,
		SwipesConfig: swipesvc.Config{
			LowWaterMark:          cfg.Session.LowWaterMark,
			PageSize:              cfg.RemoteAPI.PageSize,
			NoticeTTL:             cfg.Session.NoticeTTL,
			KeepProgressOnFailure: !cfg.Session.RollbackOnFailure,
			RejectWhenBusy:        cfg.Session.RejectWhenBusy,
			DemoUserPattern:       demoPattern,
			Limits:                limits,
			DefaultFilters: model.CandidateFilters{
				MinAge:        cfg.Filters.AgeMin,
				MaxAge:        cfg.Filters.AgeMax,
				MaxDistanceKM: cfg.Filters.RadiusDefaultKM,
				Gender:        enums.GenderPreferenceAll,
			},
			MaxDistanceKM: cfg.Filters.RadiusMaxKM,
			Timezone:      cfg.Session.Timezone,
		},
		Logger: log,
	}, sessions.Config{
		IdleTTL:    cfg.Session.IdleTTL,
		MaxPerUser: cfg.Session.MaxPerUser,
	})

	RegisterRoutes(r, Dependencies{
		Sessions:        registry,
		History:         outcomeRepo,
		Tokens:          authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAccessTTL),
		DemoUserPattern: demoPattern,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		cleanup:    cleanup.New(registry, cfg.Session.CleanupInterval, log),
		jobsCtx:    jobsCtx,
		stopJobs:   stopJobs,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	go a.cleanup.Loop(a.jobsCtx)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	a.stopJobs()
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

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
