package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	useradmin "github.com/stillwater-app/go-useradmin"
	"github.com/stillwater-app/go-useradmin/adapters/redisrevoke"
	"github.com/stillwater-app/go-useradmin/provider/local"
	"github.com/stillwater-app/go-useradmin/repository"
)

type App struct {
	config *gconfig.Container[*useradmin.BaseConfig]
	logger *glog.BaseLogger

	bunDB      *bun.DB
	provider   useradmin.IdentityProvider
	docs       useradmin.DocumentStore
	tombstones useradmin.RevocationStore
	storage    useradmin.Pinger
	srv        router.Server[*fiber.App]
}

func (a *App) Config() *useradmin.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("useradmind"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&useradmin.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.Config().GetDSN())
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrationsFS, err := fs.Sub(useradmin.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if !group.IsZero() {
		app.GetLogger("persistence").Info("migrated database", "group", group.String())
	}

	tombstones := repository.NewTombstoneRepository(db)

	app.bunDB = db
	app.provider = local.NewIdentityProvider(db)
	app.docs = repository.NewProfileRepository(db)
	app.tombstones = tombstones
	app.storage = tombstones

	if app.Config().GetRevocationBackend() == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     app.Config().GetRedisAddr(),
			Password: app.Config().GetRedisPassword(),
			DB:       app.Config().GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		store := redisrevoke.NewStore(client)
		app.tombstones = store
		app.storage = store
	}

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	cfg := app.Config()

	verifier := useradmin.NewTokenVerifier(cfg, app.provider, app.GetLogger("verifier"))
	policy := useradmin.NewAdminPolicy(cfg.GetAdminEmails())

	gate := useradmin.NewAuthGate(verifier, policy,
		useradmin.WithGateLogger(app.GetLogger("gate")),
		useradmin.WithGateAuthScheme(cfg.GetAuthScheme()),
	)

	manager := useradmin.NewLifecycleManager(app.provider, app.tombstones, app.docs,
		useradmin.WithLifecycleLogger(app.GetLogger("lifecycle")),
		useradmin.WithRetryPolicy(useradmin.RetryPolicy{
			MaxAttempts:     cfg.GetRetryMaxAttempts(),
			InitialInterval: cfg.GetRetryInitialInterval(),
		}),
	)

	bulk := useradmin.NewBulkExecutor(manager,
		useradmin.WithWorkers(cfg.GetBulkWorkers()),
		useradmin.WithBulkLogger(app.GetLogger("bulk")),
	)

	probe := useradmin.NewRevocationProbe(verifier, app.tombstones, app.provider,
		useradmin.WithProbeLogger(app.GetLogger("probe")),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	useradmin.RegisterAdminRoutes(srv.Router(),
		func(c *useradmin.AdminController) *useradmin.AdminController {
			c.Logger = app.GetLogger("admin")
			c.Gate = gate
			c.Manager = manager
			c.Bulk = bulk
			c.Probe = probe
			c.Provider = app.provider
			c.Docs = app.docs
			c.Tombstones = app.tombstones
			c.Storage = app.storage
			return c
		},
	)

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
