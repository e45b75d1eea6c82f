package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/measurelab/scaletab/internal/api/http"
	auth "github.com/measurelab/scaletab/internal/auth/middleware"
	"github.com/measurelab/scaletab/internal/config"
	"github.com/measurelab/scaletab/internal/db"
	"github.com/measurelab/scaletab/internal/scaling"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := scaling.NewSQLStore(dbh, cfg.DBDriver)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	users := auth.LocalUsers{AdminUser: cfg.AdminUser, AdminPassHash: cfg.AdminPassHash}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, users))

	// Protected API (JWT; table writes are analyst-only)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(auth.RequireRole("analyst")).
			Post("/tables", api.BuildTableHandler(store))
		pr.With(auth.RequireRole("analyst")).
			Post("/tables/import", api.ImportCSVHandler(store))
		pr.With(auth.RequireRole("analyst")).
			Delete("/tables/{tableID}", api.DeleteTableHandler(store))

		pr.Get("/tables", api.ListTablesHandler(store))
		pr.Get("/tables/{tableID}", api.GetTableHandler(store))
		pr.Get("/tables/{tableID}/export", api.ExportCSVHandler(store))
		pr.Get("/tables/{tableID}/impact", api.ImpactHandler(store))
		pr.Get("/tables/{tableID}/charts/impact", api.ImpactChartHandler(store))
		pr.Get("/tables/{tableID}/charts/scale", api.ScaleChartHandler(store))
		pr.Post("/tables/{tableID}/targets", api.TargetsHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
