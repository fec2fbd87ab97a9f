package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strct-org/ytblocker/internal/errs"
)

const opServe errs.Op = "metrics.Server.Start"

// Server exposes /metrics and /debug/pprof. Bind it to loopback; reach it
// over an SSH tunnel.
type Server struct {
	addr    string
	handler http.Handler
}

// NewServer builds the mux for gatherer. addr is host:port.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	return &Server{addr: addr, handler: mux}
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start implements agent.Service. It returns when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errs.E(opServe, errs.KindSystem, err, "listen "+s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve runs on an existing listener; tests pass one bound to port 0.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Warn("metrics: shutdown error", "err", err)
		}
	}()

	slog.Info("metrics: listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return errs.E(opServe, errs.KindSystem, err)
	}
	return nil
}
