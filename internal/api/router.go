package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/api/handlers"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/metrics"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/middleware"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/monitoring"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/websocket"
)

// HealthMessage is the body served on the root path.
const HealthMessage = "LumixPay backend (Horizon) ✅"

// Deps are the collaborators the router wires into handlers. Hub, Stats, Metrics and
// CreateAccountLimiter are optional.
type Deps struct {
	Wallet     services.WalletServiceProvider
	Conversion services.ConversionServiceProvider
	Events     services.EventServiceProvider

	Hub                  *websocket.Hub
	Stats                monitoring.StatsProvider
	Metrics              *metrics.Metrics
	CreateAccountLimiter *middleware.RateLimiter
	StartedAt            time.Time
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Metrics))
	r.Use(chimw.Recoverer)

	// Browser clients may be served from any origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	accountHandler := handlers.NewAccountHandler(d.Wallet, d.Events)
	paymentHandler := handlers.NewPaymentHandler(d.Wallet, d.Events)
	conversionHandler := handlers.NewConversionHandler(d.Conversion, d.Events)
	eventHandler := handlers.NewEventHandler(d.Events)
	statusHandler := handlers.NewStatusHandler(d.Events, d.Stats, d.StartedAt)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(HealthMessage))
	})

	r.Group(func(r chi.Router) {
		if d.CreateAccountLimiter != nil {
			r.Use(d.CreateAccountLimiter.Handler)
		}
		r.Post("/create-account", accountHandler.Create)
	})
	r.Get("/balance/{pub}", accountHandler.Balance)
	r.Post("/send", paymentHandler.Send)
	r.Post("/convert", conversionHandler.Convert)
	r.Get("/rates", conversionHandler.Rates)
	r.Get("/history", eventHandler.History)
	r.Get("/status", statusHandler.Status)

	if d.Hub != nil {
		r.Get("/ws/history", handlers.NewWebSocketHandler(d.Hub).Serve)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	return r
}
