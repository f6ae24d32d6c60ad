package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/khadmahq/khadma/config"
	"github.com/khadmahq/khadma/internal/api/handlers"
	"github.com/khadmahq/khadma/internal/api/middleware"
	"github.com/khadmahq/khadma/internal/api/routes"
	"github.com/khadmahq/khadma/internal/cache"
	"github.com/khadmahq/khadma/internal/demostore"
	"github.com/khadmahq/khadma/internal/logger"
	"github.com/khadmahq/khadma/internal/providers/feedback"
	"github.com/khadmahq/khadma/internal/providers/identity"
	"github.com/khadmahq/khadma/internal/providers/stt"
	"github.com/khadmahq/khadma/internal/reconciler"
	mongorepo "github.com/khadmahq/khadma/internal/repositories/mongo"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/storage"
	"github.com/khadmahq/khadma/internal/workers"
)

func main() {
	_ = godotenv.Load()

	lg := logger.New()

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migration error: %v", err)
	}
	lg.Info("PostgreSQL connected")

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	lg.Info("MongoDB connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	lg.Info("Redis connected")

	ctx := context.Background()

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "khadma"
	}

	// Repositories
	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	roleRepo := pgrepo.NewRoleRepo(config.PostgresDB)
	questRepo := pgrepo.NewQuestRepo(config.PostgresDB)
	taskRepo := pgrepo.NewTaskRepo(config.PostgresDB)
	badgeRepo := pgrepo.NewBadgeRepo(config.PostgresDB)
	interviewRepo := pgrepo.NewInterviewRepo(config.PostgresDB)
	fileRepo := pgrepo.NewFileRepo(config.PostgresDB)
	practiceRepo := mongorepo.NewPracticeRepo(config.MongoClient.Database(mongoDB))

	rcache := cache.NewRedisCache(config.RedisClient)

	// Identity providers and demo store
	demoStore := demostore.NewFileStore(demostore.DefaultPath())
	primary := identity.NewSupabase(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_ANON_KEY"))
	secondary := identity.NewFirebase(os.Getenv("FIREBASE_API_KEY"), os.Getenv("FIREBASE_AUTH_DOMAIN"), demoStore)

	// AI feedback provider: Vertex if a GCP project is configured,
	// otherwise the OpenAI-compatible endpoint.
	var ai feedback.Provider
	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		location := os.Getenv("GCP_LOCATION")
		if location == "" {
			location = "us-central1"
		}
		v, err := feedback.NewVertexGemini(ctx, project, location, os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		ai = v
	} else {
		ai = feedback.NewOpenAI(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	}
	defer ai.Close()

	// Speech-to-text is optional; without credentials voice pitches are
	// stored untranscribed.
	var speech stt.Provider
	if sp, err := stt.NewGoogleSpeech(ctx); err != nil {
		lg.WithError(err).Warn("speech provider unavailable; transcription disabled")
	} else {
		speech = sp
		defer sp.Close()
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		uploader = up
	} else {
		lg.Warn("GCS_BUCKET not set; profile uploads disabled")
	}

	// Services
	profileSvc := services.NewProfileService(profileRepo, roleRepo, lg)
	questSvc := services.NewQuestService(questRepo, rcache)
	taskSvc := services.NewTaskService(taskRepo, rcache)
	badgeSvc := services.NewBadgeService(badgeRepo)
	interviewSvc := services.NewInterviewService(interviewRepo, ai)
	practiceSvc := services.NewPracticeService(practiceRepo, 24*time.Hour)
	uploadSvc := services.NewUploadService(fileRepo, profileSvc, uploader, speech, lg)

	// Session reconciler
	rec := reconciler.New(primary, secondary, demoStore, profileSvc, lg)
	if err := rec.Init(ctx); err != nil {
		log.Fatalf("reconciler init error: %v", err)
	}
	defer rec.Close()

	// Coach workers
	pool := &workers.CoachWorkerPool{
		Redis:     config.RedisClient,
		Practices: practiceSvc,
		AI:        ai,
		Logger:    lg,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}

	// Gin server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(lg))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      handlers.NewAuthHandler(rec),
		Profile:   handlers.NewProfileHandler(profileSvc),
		Quest:     handlers.NewQuestHandler(questSvc),
		Task:      handlers.NewTaskHandler(taskSvc),
		Badge:     handlers.NewBadgeHandler(badgeSvc),
		Interview: handlers.NewInterviewHandler(interviewSvc),
		Practice:  handlers.NewPracticeHandler(practiceSvc),
		Upload:    handlers.NewUploadHandler(uploadSvc),
		WS:        handlers.NewWSHandler(practiceSvc, config.RedisClient, ""),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
