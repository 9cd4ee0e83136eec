package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/handlers"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
)

type routerDeps struct {
	CORSOrigins []string
	Auth        *middleware.Authenticator
	Intake      *middleware.RateLimiter

	Health    *handlers.HealthHandler
	Leads     *handlers.LeadHandler
	Callbacks *handlers.CallbackHandler
	Admin     *handlers.AdminLeadHandler
	Sales     *handlers.AdminSaleHandler
	Users     *handlers.AdminUserHandler
	AdLinks   *handlers.AdLinkHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// Callback endpoints answer their own preflight with a wildcard origin.
	r.HandleFunc("/updateLeadStatus", d.Callbacks.UpdateLeadStatus)
	r.HandleFunc("/updateLeadFromAgent", d.Callbacks.UpdateLeadFromAgent)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(chimw.Timeout(30 * time.Second))

		r.With(d.Intake.Limit).Post("/leads", d.Leads.CaptureLead)
		r.Get("/leads/countries", d.Leads.Countries)
		r.Get("/go/{slug}", d.AdLinks.Redirect)
		r.With(d.Intake.Limit).Post("/auth/login", d.Users.Login)

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Auth.Authenticate)

			r.Get("/me", d.Users.Me)

			r.With(middleware.RequirePermission(entity.PermLeadsRead)).Get("/leads", d.Admin.List)
			r.With(middleware.RequirePermission(entity.PermLeadsRead)).Get("/leads/{id}", d.Admin.Get)
			r.With(middleware.RequirePermission(entity.PermLeadsWrite)).Patch("/leads/{id}", d.Admin.Patch)
			r.With(middleware.RequirePermission(entity.PermSalesWrite)).Post("/leads/{id}/sale", d.Admin.CreateSale)

			r.Route("/sales", func(r chi.Router) {
				r.With(middleware.RequirePermission(entity.PermSalesRead)).Get("/", d.Sales.List)
				r.With(middleware.RequirePermission(entity.PermSalesRead)).Get("/{id}", d.Sales.Get)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(entity.PermSalesWrite))
					r.Post("/{id}/payments", d.Sales.AddPayment)
					r.Post("/{id}/receipts", d.Sales.UploadReceipt)
					r.Post("/{id}/exemption", d.Sales.GrantExemption)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(entity.PermAccessWrite))
					r.Post("/{id}/access", d.Sales.GrantAccess)
					r.Put("/{id}/access", d.Sales.UpdateAccess)
					r.Delete("/{id}/access", d.Sales.RevokeAccess)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequirePermission(entity.PermUsersRead)).Get("/", d.Users.List)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(entity.PermUsersWrite))
					r.Post("/", d.Users.Create)
					r.Patch("/{uid}", d.Users.Update)
					r.Delete("/{uid}", d.Users.Delete)
				})
			})
			r.With(middleware.RequirePermission(entity.PermUsersRead)).Get("/roles", d.Users.Roles)

			r.With(middleware.RequirePermission(entity.PermAdLinksRead)).Get("/adlinks", d.AdLinks.List)
			r.With(middleware.RequirePermission(entity.PermAdLinksWrite)).Post("/adlinks", d.AdLinks.Create)
		})
	})

	return r
}
