package httpapi

import (
	"context"
	"net/http"
	"time"

	"medsosmon-backend-go/internal/config"
	"medsosmon-backend-go/internal/services"
	"medsosmon-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
	Store      *store.Postgres
	UnitTypes  *services.UnitTypeCache
	Engine     *services.Engine
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	pg := store.New(db)
	unitTypes := services.NewUnitTypeCache(cfg.UnitTypeCacheSize, 10*time.Minute)
	engine := &services.Engine{
		Units:       pg,
		Persons:     pg,
		Posts:       pg,
		Engagements: pg,
		Cache:       services.NewMemoryCacheStore(),
		UnitTypes:   unitTypes,
		Workers:     cfg.AggregatorWorkers,
		CacheTTL:    time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
		Store:      pg,
		UnitTypes:  unitTypes,
		Engine:     engine,
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)

		api.Route("/me", func(me chi.Router) {
			me.Use(WithAuth(s.Tokens))
			me.Get("/", s.Me)
			me.Delete("/", s.DeleteAccount)
			me.Put("/password", s.ChangePassword)
			me.Post("/ping", s.Ping)
		})

		api.Route("/compliance", func(compliance chi.Router) {
			compliance.Use(WithAuth(s.Tokens))
			compliance.Use(RequireAnyRole("OPERATOR", "ADMIN"))
			compliance.Get("/summary", s.ComplianceSummary)
			compliance.Get("/report-text", s.ComplianceReportText)
		})

		api.Route("/directory", func(directory chi.Router) {
			directory.Use(WithAuth(s.Tokens))
			directory.Use(RequireAnyRole("OPERATOR", "ADMIN"))
			directory.Get("/units", s.ListUnits)
			directory.Get("/units/{unitId}", s.GetUnit)
			directory.Get("/personnel", s.ListPersonnel)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole("ADMIN"))
			admin.Get("/metrics/history", s.MetricsHistory)
			admin.Route("/users", func(users chi.Router) {
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
				users.Post("/{userId}/roles", s.AssignRole)
				users.Delete("/{userId}/roles/{role}", s.RemoveRole)
			})
			admin.Route("/personnel/{personId}/roles", func(roles chi.Router) {
				roles.Get("/", s.ListPersonRoles)
				roles.Post("/", s.AssignPersonRole)
				roles.Delete("/{role}", s.RemovePersonRole)
			})
		})

		api.Route("/public", func(pub chi.Router) {
			pub.Get("/health", s.Health)
			pub.Post("/visits", s.TrackVisit)
			pub.Get("/visits/count", s.VisitCount)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
