package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cozycup/internal/httpx"
	"cozycup/internal/menu"
	"cozycup/internal/middleware"
	notificationctrl "cozycup/internal/notification/controller"
	orderctrl "cozycup/internal/order/controller"
	"cozycup/internal/payment"
	reviewctrl "cozycup/internal/review/controller"
)

type Handlers struct {
	Menu          *menu.Controller
	Orders        *orderctrl.OrderController
	Payments      *payment.Module
	Reviews       *reviewctrl.ReviewController
	Notifications *notificationctrl.NotificationController
}

func NewRouter(h Handlers, auth *middleware.Authenticator, limiter *middleware.RateLimiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Trace(logger))
	r.Use(middleware.RequestLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Get("/categories", h.Menu.ListCategories)
		r.Get("/categories/{id}", h.Menu.GetCategory)
		r.Get("/menu-items", h.Menu.ListMenuItems)
		r.Get("/menu-items/{id}", h.Menu.GetMenuItem)
		r.Get("/menu-items/category/{categoryId}", h.Menu.ListMenuItemsByCategory)
		r.Get("/reviews/menu-item/{menuItemId}", h.Reviews.ListForMenuItem)

		r.Post("/midtrans/webhook", h.Payments.Webhook.Notify)
	})

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/checkout", h.Orders.Checkout)
		r.Post("/orders", h.Orders.Create)
		r.Get("/orders", h.Orders.List)
		r.Get("/orders/{id}", h.Orders.Show)

		r.Get("/payments", h.Payments.Payments.List)
		r.Post("/payments", h.Payments.Payments.Create)
		r.Get("/payments/{id}", h.Payments.Payments.Get)
		r.Get("/payments/order/{orderId}", h.Payments.Payments.GetByOrder)
		r.Post("/payment/update-status", h.Payments.Payments.UpdateFromClient)

		r.Post("/reviews", h.Reviews.Upsert)
		r.Put("/reviews/{id}", h.Reviews.Update)
		r.Delete("/reviews/{id}", h.Reviews.Delete)
		r.Get("/reviews/user/me", h.Reviews.ListMine)

		r.Get("/notifications", h.Notifications.List)
		r.Post("/notifications/read/{id}", h.Notifications.MarkRead)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Patch("/orders/{id}/status", h.Orders.UpdateStatus)
			r.Patch("/payments/{id}/status", h.Payments.Payments.UpdateStatus)

			r.Post("/categories", h.Menu.CreateCategory)
			r.Put("/categories/{id}", h.Menu.UpdateCategory)
			r.Delete("/categories/{id}", h.Menu.DeleteCategory)

			r.Get("/admin/menu-items", h.Menu.AdminListMenuItems)
			r.Post("/admin/menu-items", h.Menu.CreateMenuItem)
			r.Put("/admin/menu-items/{id}", h.Menu.UpdateMenuItem)
			r.Delete("/admin/menu-items/{id}", h.Menu.DeleteMenuItem)

			r.Get("/reviews", h.Reviews.ListAll)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.Envelope{
			Success: false,
			Message: "route not found",
			TraceID: httpx.TraceID(r.Context()),
		})
	})

	return r
}
