// Package gateway sequences generation requests through an ordered provider
// list, bounding each attempt by a timeout and repairing JSON output.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/gen-gateway/internal/metrics"
	"github.com/your-org/gen-gateway/internal/registry"
	"github.com/your-org/gen-gateway/internal/repair"
	"github.com/your-org/gen-gateway/internal/trace"
	"github.com/your-org/gen-gateway/pkg/adapters"
	"github.com/your-org/gen-gateway/pkg/logger"
)

const DefaultTimeout = 25 * time.Second

// Gateway coordinates provider fallback. It holds no per-call state and is
// safe for concurrent use.
type Gateway struct {
	registry *registry.Registry
	timeout  time.Duration
	logger   *zap.Logger
	metrics  metrics.Recorder
	tracer   oteltrace.Tracer
	sink     func(trace.CallTrace)
	newID    func() string
}

type Option func(*Gateway)

// WithTimeout sets the per-attempt deadline applied to every provider.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the call logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger.OrNop(l)
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(g *Gateway) {
		if m != nil {
			g.metrics = m
		}
	}
}

func WithTracer(t oteltrace.Tracer) Option {
	return func(g *Gateway) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithTraceSink receives the attempt log of every call once it completes.
func WithTraceSink(fn func(trace.CallTrace)) Option {
	return func(g *Gateway) {
		g.sink = fn
	}
}

func withIDs(fn func() string) Option {
	return func(g *Gateway) {
		g.newID = fn
	}
}

func New(reg *registry.Registry, opts ...Option) *Gateway {
	g := &Gateway{
		registry: reg,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		metrics:  metrics.NoopRecorder{},
		tracer:   otel.Tracer("gen-gateway"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Generate tries configured providers in priority order and returns the first
// usable response. It never panics and never returns a Go error: every failure
// is reported through Result.Err.
func (g *Gateway) Generate(ctx context.Context, req adapters.GenerateRequest) Result {
	res, _ := g.GenerateTraced(ctx, req)
	return res
}

// GenerateTraced is Generate that also returns the call's attempt log.
func (g *Gateway) GenerateTraced(ctx context.Context, req adapters.GenerateRequest) (Result, trace.CallTrace) {
	requestID := g.newID()
	start := time.Now()
	rec := trace.NewRecorder(requestID, start)

	ctx, span := g.tracer.Start(ctx, "gateway.generate", oteltrace.WithAttributes(
		attribute.String("gateway.request_id", requestID),
		attribute.Bool("gateway.json_mode", req.JSONMode),
	))
	defer span.End()

	res := g.generate(ctx, requestID, req, rec)

	var callErr error
	if res.Err != nil {
		callErr = res.Err
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, string(res.Err.Kind))
	} else {
		span.SetAttributes(attribute.String("gateway.provider", res.Provider))
	}
	g.metrics.ObserveResult(res.Status())
	ct := rec.Finalize(time.Now(), res.Provider, callErr)
	if g.sink != nil {
		g.sink(ct)
	}
	return res, ct
}

func (g *Gateway) generate(ctx context.Context, requestID string, req adapters.GenerateRequest, rec *trace.Recorder) Result {
	log := g.logger.With(zap.String("request_id", requestID))

	if err := req.Validate(); err != nil {
		return failed(requestID, &Error{
			Kind:    KindInvalidRequest,
			Message: fmt.Sprintf("%s: %v", ErrInvalidRequest, err),
			cause:   err,
		})
	}

	providers := g.registry.Configured()
	if len(providers) == 0 {
		log.Warn("no providers configured")
		return failed(requestID, &Error{Kind: KindNotConfigured, Message: ErrNoProviders.Error(), cause: ErrNoProviders})
	}

	var errs []error
	for _, d := range providers {
		if err := ctx.Err(); err != nil {
			rec.Add(trace.Attempt{Provider: d.Name, Outcome: trace.OutcomeCancelled, Message: err.Error()})
			errs = append(errs, err)
			break
		}

		resp, err := g.attempt(ctx, d, req)
		if err == nil && strings.TrimSpace(resp.Text) == "" {
			err = adapters.ErrEmptyResponse
		}
		if err != nil {
			kind := classify(ctx, err)
			a := trace.Attempt{Provider: d.Name, Outcome: outcomes[kind], Message: err.Error(), Elapsed: resp.elapsed}
			rec.Add(a)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, err))
			g.metrics.ObserveAttempt(d.Name, string(a.Outcome), a.Elapsed)
			log.Warn("provider attempt failed",
				zap.String("provider", d.Name),
				zap.String("outcome", string(a.Outcome)),
				zap.Int64("elapsed_ms", a.ElapsedMs()),
				zap.Error(err),
			)
			if kind == kindCancelled {
				break
			}
			continue
		}

		a := trace.Attempt{Provider: d.Name, Outcome: trace.OutcomeSuccess, Elapsed: resp.elapsed}
		rec.Add(a)
		g.metrics.ObserveAttempt(d.Name, string(a.Outcome), a.Elapsed)
		log.Debug("provider attempt succeeded",
			zap.String("provider", d.Name),
			zap.Int64("elapsed_ms", a.ElapsedMs()),
			zap.Int("output_tokens", resp.OutputTokens),
		)

		text := resp.Text
		if req.JSONMode {
			repaired := repair.Normalize(text)
			if !repair.Valid(repaired) {
				log.Warn("response repair failed", zap.String("provider", d.Name), zap.Int("length", len(text)))
				return failed(requestID, &Error{
					Kind:     KindRepairFailure,
					Provider: d.Name,
					Message:  fmt.Sprintf("%s: %s: output is not valid JSON", ErrRepairFailed, d.Name),
					cause:    repair.ErrUnparseable,
				})
			}
			text = repaired
		}
		return succeeded(requestID, d.Name, text)
	}

	return failed(requestID, &Error{
		Kind:    KindExhausted,
		Message: fmt.Sprintf("%s: %s", ErrAllProvidersFailed, rec.Reasons()),
		cause:   errors.Join(errs...),
	})
}

type timedResponse struct {
	adapters.GenerateResponse
	elapsed time.Duration
}

func (g *Gateway) attempt(ctx context.Context, d registry.Descriptor, req adapters.GenerateRequest) (timedResponse, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.attempt", oteltrace.WithAttributes(
		attribute.String("gateway.provider", d.Name),
	))
	defer span.End()

	started := time.Now()
	resp, err := invoke(ctx, g.timeout, d.Provider, req)
	out := timedResponse{GenerateResponse: resp, elapsed: time.Since(started)}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

// kindCancelled marks an attempt cut short by the caller's context.
const kindCancelled Kind = "cancelled"

var outcomes = map[Kind]trace.Outcome{
	KindTimeout:       trace.OutcomeTimeout,
	KindTransport:     trace.OutcomeTransportError,
	KindEmptyResponse: trace.OutcomeEmptyResponse,
	kindCancelled:     trace.OutcomeCancelled,
}

// classify maps an attempt failure onto its kind.
func classify(ctx context.Context, err error) Kind {
	var te *TimeoutError
	switch {
	case errors.As(err, &te):
		return KindTimeout
	case errors.Is(err, adapters.ErrEmptyResponse):
		return KindEmptyResponse
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return kindCancelled
	default:
		return KindTransport
	}
}
