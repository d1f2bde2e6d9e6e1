package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/packtally/packtally-backend/api/controllers"
	"github.com/packtally/packtally-backend/api/middleware"
	"github.com/packtally/packtally-backend/internal/categories"
	"github.com/packtally/packtally-backend/internal/couriers"
	"github.com/packtally/packtally-backend/internal/dashboard"
	"github.com/packtally/packtally-backend/internal/ledger"
	"github.com/packtally/packtally-backend/internal/shops"
	"github.com/packtally/packtally-backend/pkg/config"
	"github.com/packtally/packtally-backend/pkg/db"
	"github.com/packtally/packtally-backend/pkg/logger"
	"github.com/packtally/packtally-backend/pkg/metrics"
	pkgredis "github.com/packtally/packtally-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	promReg *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	ledgerService ledger.Service,
	dashboardService dashboard.Service,
	shopService shops.Service,
	courierService couriers.Service,
	categoryService categories.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisP, logg))
	})

	if promReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/ledger/entries", func(r chi.Router) {
			r.Post("/", controllers.LedgerAdd(ledgerService, logg))
			r.Post("/subtract", controllers.LedgerSubtract(ledgerService, logg))
			r.Post("/merge", controllers.LedgerMerge(ledgerService, logg))
			r.Get("/", controllers.LedgerList(ledgerService, logg))
			r.Get("/{entryId}", controllers.LedgerGet(ledgerService, logg))
			r.Patch("/{entryId}", controllers.LedgerEdit(ledgerService, logg))
			r.Delete("/{entryId}", controllers.LedgerRemove(ledgerService, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/daily", controllers.DashboardDaily(dashboardService, logg))
			r.Get("/trend", controllers.DashboardTrend(dashboardService, logg))
			r.Get("/summary", controllers.DashboardSummary(dashboardService, logg))
			r.Get("/operations", controllers.DashboardOperations(dashboardService, logg))
			r.Get("/couriers/{courierId}/hierarchy", controllers.DashboardCourierHierarchy(dashboardService, logg))
			r.Post("/cache/flush", controllers.DashboardCacheFlush(dashboardService, logg))
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", controllers.ShopList(shopService, logg))
			r.Post("/", controllers.ShopCreate(shopService, logg))
			r.Post("/reorder", controllers.ShopReorder(shopService, logg))
			r.Get("/{shopId}", controllers.ShopGet(shopService, logg))
			r.Patch("/{shopId}", controllers.ShopUpdate(shopService, logg))
			r.Delete("/{shopId}", controllers.ShopDelete(shopService, logg))
		})

		r.Route("/couriers", func(r chi.Router) {
			r.Get("/", controllers.CourierList(courierService, logg))
			r.Post("/", controllers.CourierCreate(courierService, logg))
			r.Post("/reorder", controllers.CourierReorder(courierService, logg))
			r.Get("/{courierId}", controllers.CourierGet(courierService, logg))
			r.Get("/{courierId}/children", controllers.CourierChildren(courierService, logg))
			r.Patch("/{courierId}", controllers.CourierUpdate(courierService, logg))
			r.Delete("/{courierId}", controllers.CourierDelete(courierService, logg))
		})

		r.Route("/shop-categories", func(r chi.Router) {
			r.Get("/", controllers.ShopCategoryList(categoryService, logg))
			r.Post("/", controllers.ShopCategoryCreate(categoryService, logg))
			r.Post("/reorder", controllers.ShopCategoryReorder(categoryService, logg))
			r.Patch("/{categoryId}", controllers.ShopCategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.ShopCategoryDelete(categoryService, logg))
		})

		r.Route("/courier-categories", func(r chi.Router) {
			r.Get("/", controllers.CourierCategoryList(categoryService, logg))
			r.Post("/", controllers.CourierCategoryCreate(categoryService, logg))
			r.Post("/reorder", controllers.CourierCategoryReorder(categoryService, logg))
			r.Patch("/{categoryId}", controllers.CourierCategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.CourierCategoryDelete(categoryService, logg))
		})
	})

	return r
}
