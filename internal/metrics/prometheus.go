package metrics

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/your-org/gen-gateway/internal/security"
)

// PrometheusRecorder reports gateway metrics using Prometheus primitives.
type PrometheusRecorder struct {
	attempts  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gen_gateway_provider_attempts_total",
			Help: "Total number of provider attempts by outcome",
		}, []string{"provider", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gen_gateway_provider_attempt_duration_seconds",
			Help:    "Provider attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gen_gateway_results_total",
			Help: "Total number of generate calls by result status",
		}, []string{"status"}),
	}

	for _, collector := range []prometheus.Collector{r.attempts, r.durations, r.results} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveAttempt(provider string, outcome string, duration time.Duration) {
	r.attempts.WithLabelValues(provider, outcome).Inc()
	r.durations.WithLabelValues(provider).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveResult(status string) {
	r.results.WithLabelValues(status).Inc()
}

// StartPrometheusServer serves /metrics from registry on addr (default :2112).
func StartPrometheusServer(addr string, registry *prometheus.Registry) (*http.Server, error) {
	ln, err := listen(addr, registry)
	if err != nil {
		return nil, err
	}
	return serve(ln, ln.Addr().String(), registry), nil
}

// StartPrometheusServerTLS is StartPrometheusServer behind TLS, with client
// certificates enforced when files require them.
func StartPrometheusServerTLS(addr string, registry *prometheus.Registry, files security.TLSFiles) (*http.Server, error) {
	tlsCfg, err := files.ServerConfig()
	if err != nil {
		return nil, err
	}
	ln, err := listen(addr, registry)
	if err != nil {
		return nil, err
	}
	return serve(tls.NewListener(ln, tlsCfg), ln.Addr().String(), registry), nil
}

func StopServer(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func listen(addr string, registry *prometheus.Registry) (net.Listener, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}
	if addr == "" {
		addr = ":2112"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %q: %w", addr, err)
	}
	return ln, nil
}

func serve(ln net.Listener, addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv
}
