package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Bessima/quicksms/internal/handlers"
	middleware "github.com/Bessima/quicksms/internal/middlewares"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Routes groups every handler the router mounts.
type Routes struct {
	Auth     *handlers.AuthHandler
	Orders   *handlers.OrdersHandler
	Accounts *handlers.AccountsHandler
	Admin    *handlers.AdminHandler
	Payments *handlers.PaymentHandler
	Metrics  http.Handler
	APIToken string
}

type ServerService struct {
	Server *http.Server
}

func NewServerService(rootContext context.Context, address string) ServerService {
	server := &http.Server{
		Addr: address,
		BaseContext: func(_ net.Listener) context.Context {
			return rootContext
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ServerService{Server: server}
}

func (serverService *ServerService) SetRouter(routes Routes) {
	serverService.Server.Handler = NewRouter(routes)
}

func NewRouter(routes Routes) chi.Router {
	router := chi.NewRouter()

	router.Use(logger.RequestLogger)
	router.Use(chimiddleware.Recoverer)

	if routes.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", routes.Metrics)
	}
	router.Post("/webhook/payment", routes.Payments.Webhook)

	router.Group(func(r chi.Router) {
		r.Use(middleware.ServiceTokenMiddleware(routes.APIToken))

		r.Post("/api/orders", routes.Orders.Create)
		r.Post("/api/orders/{orderID}/{action}", routes.Orders.Act)
		r.Get("/api/packs/{pack}", routes.Orders.QuotePack)
		r.Post("/api/packs/{pack}/confirm", routes.Orders.ConfirmPack)
		r.Get("/api/catalog", routes.Orders.Catalog)
		r.Get("/api/accounts/{accountID}/balance", routes.Accounts.GetBalance)
	})

	router.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", routes.Auth.LoginHandler)
		r.Post("/refresh", routes.Auth.RefreshHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(routes.Auth))

			r.Post("/logout", routes.Auth.LogoutHandler)
			r.Post("/deposit", routes.Admin.Deposit)
			r.Get("/stats", routes.Admin.Stats)
		})
	})

	return router
}

func (serverService *ServerService) RunServer(serverErr chan<- error) {
	if err := serverService.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		serverErr <- err
	} else {
		serverErr <- nil
	}
}

func (serverService *ServerService) Shutdown() error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return serverService.Server.Shutdown(shutdownCtx)
}
