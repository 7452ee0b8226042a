package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/scotow/buzzer/internal/app"
	"github.com/scotow/buzzer/pkg/ratelimit"
)

type Middleware struct {
	cors   *cors.Cors
	rlimit *ratelimit.Limiter
	log    *slog.Logger
	server string
}

// NewMiddleware builds the shared middleware stack from config
func NewMiddleware(cfg app.Config, logger *slog.Logger) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins(),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}),
		rlimit: ratelimit.New(cfg.ReserveRateLimit, cfg.ReserveRateWindow),
		log:    logger,
		server: "Buzzer v" + app.Version,
	}
}

// Wrap applies the Server header, access log, panic recovery and CORS to a handler
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return m.serverHeader(m.accessLog(m.recoverer(m.cors.Handler(h))))
}

// RateLimit throttles a handler per client IP
func (m *Middleware) RateLimit(h http.Handler) http.Handler {
	return m.rlimit.Middleware(h)
}

func (m *Middleware) serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", m.server)
		next.ServeHTTP(w, r)
	})
}

// accessLog leaves the ResponseWriter untouched so upgrades can still hijack it
func (m *Middleware) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		m.log.Debug("http.request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "took", time.Since(start))
	})
}

// recoverer turns a panic in one request into a 500 for that request only
func (m *Middleware) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				m.log.Error("http.panic", "method", r.Method, "path", r.URL.Path, "err", v)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
