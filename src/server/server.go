package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/louisinayinde/dashboard-finance/src/handler"
)

// NewRouter builds the API router with all routes and middleware.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Metrics)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/search", handler.DefaultSearchStocksHandler())
			r.Get("/{symbol}", handler.DefaultGetStockHandler())
			r.Get("/{symbol}/history", handler.DefaultStockHistoryHandler())
			r.Get("/{symbol}/price", handler.DefaultLatestPriceHandler())
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/", handler.DefaultListPositionsHandler())
				r.Post("/positions", handler.DefaultAddPositionHandler())
				r.Put("/positions/{stockID}", handler.DefaultUpdatePositionHandler())
				r.Delete("/positions/{stockID}", handler.DefaultClosePositionHandler())
				r.Get("/summary", handler.DefaultPortfolioSummaryHandler())
				r.Get("/by-sector", handler.DefaultPortfolioBySectorHandler())
			})

			r.Get("/watchlists", handler.DefaultListWatchlistsHandler())
			r.Post("/watchlists", handler.DefaultCreateWatchlistHandler())
		})

		r.Route("/watchlists/{watchlistID}/items", func(r chi.Router) {
			r.Get("/", handler.DefaultWatchlistItemsHandler())
			r.Post("/", handler.DefaultAddWatchlistItemHandler())
			r.Delete("/{stockID}", handler.DefaultRemoveWatchlistItemHandler())
		})
	})

	return r
}

// StartServer runs the HTTP API until SIGINT/SIGTERM, then shuts down
// gracefully.
func StartServer(port string) {
	config := GetConfig()
	if port == "" {
		port = config.Port
	}

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(),
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
