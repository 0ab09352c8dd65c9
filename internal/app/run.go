package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/your-org/gen-gateway/internal/audit"
	"github.com/your-org/gen-gateway/internal/config"
	"github.com/your-org/gen-gateway/internal/gateway"
	"github.com/your-org/gen-gateway/internal/metrics"
	"github.com/your-org/gen-gateway/internal/policy"
	"github.com/your-org/gen-gateway/internal/registry"
	"github.com/your-org/gen-gateway/internal/trace"
	"github.com/your-org/gen-gateway/internal/version"
	"github.com/your-org/gen-gateway/pkg/adapters"
	"github.com/your-org/gen-gateway/pkg/logger"
)

// Request is the caller-facing generate input. Nil pointers take the tier default.
type Request struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	JSONMode    *bool    `json:"json_mode,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// Runtime is the gateway process assembled from Config.
type Runtime struct {
	Config   config.Config
	Registry *registry.Registry
	Gateway  *gateway.Gateway
	Policy   *policy.Static
	Logger   *zap.Logger
	Audit    *audit.Logger
	Metrics  *metrics.InMemoryRecorder

	closers []func(context.Context) error
}

type runtimeOptions struct {
	httpClient *http.Client
	gwOpts     []gateway.Option
}

type RuntimeOption func(*runtimeOptions)

// WithHTTPClient sets the client shared by every provider adapter.
func WithHTTPClient(hc *http.Client) RuntimeOption {
	return func(o *runtimeOptions) { o.httpClient = hc }
}

// WithGatewayOptions appends gateway options after the config-derived ones.
func WithGatewayOptions(opts ...gateway.Option) RuntimeOption {
	return func(o *runtimeOptions) { o.gwOpts = append(o.gwOpts, opts...) }
}

func NewRuntime(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...RuntimeOption) (_ *Runtime, retErr error) {
	log = logger.OrNop(log)
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}

	rt := &Runtime{
		Config:  cfg,
		Logger:  log,
		Audit:   audit.NewLogger(cfg.AuditLogPath),
		Metrics: metrics.NewInMemoryRecorder(),
	}
	defer func() {
		if retErr != nil {
			_ = rt.Close(context.Background())
		}
	}()

	pol, err := policy.NewStatic(cfg.Tiers, cfg.DefaultTier)
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}
	rt.Policy = pol

	reg, err := registry.FromConfig(ctx, cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	rt.Registry = reg

	otelRuntime, err := trace.SetupOTel(ctx, trace.OTelConfig{Enabled: cfg.TraceEnabled, Endpoint: cfg.TraceEndpoint})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	rt.closers = append(rt.closers, otelRuntime.Shutdown)

	activeRecorder := metrics.Recorder(rt.Metrics)
	if cfg.MetricsEnabled {
		promRegistry := prometheus.NewRegistry()
		promRecorder, err := metrics.NewPrometheusRecorder(promRegistry)
		if err != nil {
			return nil, fmt.Errorf("setup prometheus recorder: %w", err)
		}
		activeRecorder = metrics.NewMultiRecorder(rt.Metrics, promRecorder)
		var metricsServer *http.Server
		if cfg.TLS.Enabled {
			metricsServer, err = metrics.StartPrometheusServerTLS(cfg.MetricsAddr, promRegistry, cfg.TLS.TLSFiles)
		} else {
			metricsServer, err = metrics.StartPrometheusServer(cfg.MetricsAddr, promRegistry)
		}
		if err != nil {
			return nil, fmt.Errorf("start metrics endpoint: %w", err)
		}
		rt.closers = append(rt.closers, func(ctx context.Context) error { return metrics.StopServer(ctx, metricsServer) })
	}

	gwOpts := []gateway.Option{
		gateway.WithTimeout(cfg.ProviderTimeout),
		gateway.WithLogger(log.Named("gateway")),
		gateway.WithMetrics(activeRecorder),
		gateway.WithTracer(otelRuntime.Tracer),
	}
	if cfg.TraceOutput != "" {
		dir := cfg.TraceOutput
		gwOpts = append(gwOpts, gateway.WithTraceSink(func(ct trace.CallTrace) {
			if _, err := trace.SaveToDir(dir, ct); err != nil {
				log.Warn("persist trace failed", zap.String("request_id", ct.RequestID), zap.Error(err))
			}
		}))
	}
	rt.Gateway = gateway.New(reg, append(gwOpts, o.gwOpts...)...)

	names := make([]string, 0, len(reg.Configured()))
	for _, d := range reg.Configured() {
		names = append(names, d.Name)
	}
	log.Info("gateway runtime ready",
		zap.String("version", version.Version),
		zap.Strings("providers", names),
		zap.Duration("provider_timeout", rt.Gateway.Timeout()),
		zap.Bool("metrics", cfg.MetricsEnabled),
		zap.Bool("tracing", cfg.TraceEnabled),
	)
	return rt, nil
}

// BuildRequest resolves tier defaults into a provider request.
func (rt *Runtime) BuildRequest(in Request) adapters.GenerateRequest {
	return rt.Policy.Params(in.Tier).Apply(in.Prompt, policy.Overrides{
		Model:       in.Model,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
		JSONMode:    in.JSONMode,
	})
}

// Generate runs one gateway call and records it in the audit log.
func (rt *Runtime) Generate(ctx context.Context, actor string, in Request) gateway.Result {
	res, ct := rt.Gateway.GenerateTraced(ctx, rt.BuildRequest(in))
	if err := rt.Audit.Write(audit.FromTrace(actor, in.Tier, res.Status(), ct)); err != nil {
		rt.Logger.Warn("audit write failed", zap.String("request_id", res.RequestID), zap.Error(err))
	}
	return res
}

func (rt *Runtime) Close(ctx context.Context) error {
	var err error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, rt.closers[i](ctx))
	}
	rt.closers = nil
	return err
}

// RunGenerate executes one request and writes the text, or the error, to out.
func RunGenerate(ctx context.Context, rt *Runtime, in Request, out io.Writer) error {
	res := rt.Generate(ctx, "cli", in)
	if !res.OK() {
		return res.Err
	}
	_, _ = fmt.Fprintln(out, res.Text)
	return nil
}

// WriteSummary prints the in-process attempt counters.
func WriteSummary(rt *Runtime, out io.Writer) {
	snap := rt.Metrics.Snapshot()
	_, _ = fmt.Fprintf(out, "metrics attempts=%d results_ok=%d total_attempt_time=%s\n",
		snap.Attempts,
		snap.Results["ok"],
		snap.TotalAttemptTime,
	)
}
