package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/barbaarintasan/bsa-bridge/internal/config"
	"github.com/barbaarintasan/bsa-bridge/internal/database"
	"github.com/barbaarintasan/bsa-bridge/internal/handlers"
	"github.com/barbaarintasan/bsa-bridge/internal/middleware"
	"github.com/barbaarintasan/bsa-bridge/internal/routes"
	"github.com/barbaarintasan/bsa-bridge/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.SyncAPIKey == "" {
		log.Println("⚠️  WARNING: SYNC_API_KEY not set. Inbound sync will reject all requests")
		log.Println("   and outbound sync to the app will be skipped.")
		log.Println("   Use the same key as WORDPRESS_API_KEY in the app.")
	}

	// Connect to PostgreSQL (identity store)
	log.Printf("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()

	// Connect to Redis (sessions + rate limiting)
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Connect to MongoDB (audit trail, optional)
	var audit *services.Audit
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		mdb, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.Printf("⚠️  WARNING: failed to connect to MongoDB: %v", err)
			log.Println("   Sync/import audit trail will not be recorded.")
		} else {
			defer mdb.Client().Disconnect(context.Background())
			audit = services.NewAudit(mdb)
			if err := audit.EnsureAuditIndexes(context.Background()); err != nil {
				log.Printf("⚠️  WARNING: failed to ensure audit indexes: %v", err)
			} else {
				log.Println("✅ MongoDB audit indexes ensured")
			}
		}
	} else {
		log.Println("MONGODB_URI not set - audit trail disabled")
	}

	// Wire services. The LMS capability is selected here, not probed at call
	// time: the importer gets a no-op when the course subsystem is disabled.
	users := services.NewPostgresUsers(db)
	var courses services.Courses = services.NoopCourses{}
	if cfg.LMSEnabled {
		courses = services.NewPostgresCourses(db, users)
	} else {
		log.Println("LMS disabled - enrollment import will be skipped")
	}
	legacy := services.NewLegacyAuthenticator(users)
	importer := services.NewImporter(users, courses)
	appSync := services.NewAppSync(users, audit, cfg.SyncAPIKey, cfg.AppBaseURL, cfg.SyncTimeout)
	sessions := services.NewSessions(rdb)

	h := handlers.New(cfg, users, legacy, importer, appSync, sessions, audit)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.RateLimit(rdb))
		log.Println("✅ Production rate limiting enabled (per-IP, Redis)")
	}

	// Health check (no rate limit concerns; fixed response)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h, cfg)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  POST /bsa/v1/sync-user")
	log.Println("  POST /api/admin/import")
	log.Println("  GET  /api/admin/sync-events")

	log.Printf("🚀 BSA bridge running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
