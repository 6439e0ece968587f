// Package httptransport assembles the HTTP surface: middleware chain, public
// confirmation endpoint, token-guarded admin endpoints, and operational
// routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	guesthandler "guestlist/internal/guest/handler"
	"guestlist/pkg/platform/httputil"
	"guestlist/pkg/platform/middleware/admin"
	request "guestlist/pkg/platform/middleware/request"
	"guestlist/pkg/platform/middleware/requesttime"
)

// NewRouter wires all endpoints. Admin routes sit behind the shared-token
// middleware; everything else is public.
func NewRouter(guests *guesthandler.Handler, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	guests.RegisterPublic(r)

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdminToken(adminToken, logger))
		guests.RegisterAdmin(ar)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
