package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-vault/internal/generation"
	"resume-vault/internal/queue"
	"resume-vault/internal/resumes"
	"resume-vault/internal/shared/config"
	"resume-vault/internal/shared/metrics"
	"resume-vault/internal/shared/server"
	"resume-vault/internal/shared/server/respond"
	"resume-vault/internal/shared/storage/db"
	"resume-vault/internal/shared/storage/object"
	localstore "resume-vault/internal/shared/storage/object/local"
	s3store "resume-vault/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the fully wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	ResumesRepo    resumes.Repo
	GenerationRepo generation.Repo

	ResumesService    *resumes.Service
	Rollbacks         *resumes.RollbackCoordinator
	Snapshots         *resumes.SnapshotResolver
	GenerationService *generation.Service

	ResumesHandler    *resumes.Handler
	GenerationHandler *generation.Handler
}

// Build prepares shared dependencies and wires routes. A missing or
// unreachable database degrades to in-memory repositories so the API stays
// usable for local development and tests.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB := buildDB(ctx, cfg)

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient := buildQueue(ctx, cfg)

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if sqlDB != nil {
		app.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
		app.GenerationRepo = &generation.PGRepo{DB: sqlDB}
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.GenerationRepo = generation.NewMemoryRepo()
	}

	app.ResumesService = &resumes.Service{Repo: app.ResumesRepo}
	app.Rollbacks = &resumes.RollbackCoordinator{Repo: app.ResumesRepo}
	app.Snapshots = &resumes.SnapshotResolver{Repo: app.ResumesRepo}
	app.GenerationService = &generation.Service{
		Repo:      app.GenerationRepo,
		Snapshots: app.Snapshots,
		Queue:     queueClient,
		Store:     store,
	}

	app.ResumesHandler = resumes.NewHandler(app.ResumesService, app.Rollbacks, app.Snapshots)
	app.GenerationHandler = generation.NewHandler(app.GenerationService)

	app.Router = buildRouter(cfg, app)
	return app, nil
}

func buildRouter(cfg config.Config, app *App) *gin.Engine {
	r := server.NewEngine(cfg)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	app.ResumesHandler.RegisterRoutes(api)
	app.GenerationHandler.RegisterRoutes(api)

	return r
}

func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		conn.Close()
		return nil
	}
	return conn
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "s3" {
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	}
	dir := cfg.LocalStoreDir
	if dir == "" {
		dir = "./data"
	}
	return localstore.New(dir), nil
}

func buildQueue(ctx context.Context, cfg config.Config) queue.Client {
	if cfg.QueueURL == "" {
		return queue.NewMemoryClient()
	}
	client, err := queue.NewSQSClient(ctx)
	if err != nil {
		log.Printf("failed to build sqs client, falling back to memory queue: %v", err)
		return queue.NewMemoryClient()
	}
	return client
}
