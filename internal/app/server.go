package app

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/gen-gateway/internal/gateway"
	"github.com/your-org/gen-gateway/internal/security"
	"github.com/your-org/gen-gateway/internal/version"
)

const maxRequestBody = 1 << 20

type generateResponse struct {
	Text      string `json:"text,omitempty"`
	Provider  string `json:"provider,omitempty"`
	RequestID string `json:"request_id"`
	Error     string `json:"error,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

type providerView struct {
	Name       string `json:"name"`
	Priority   int    `json:"priority"`
	Configured bool   `json:"configured"`
}

func GatewayHandler(rt *Runtime) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": version.Get()})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if len(rt.Registry.Configured()) == 0 {
			http.Error(w, "no providers configured", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/v1/providers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		all := rt.Registry.All()
		views := make([]providerView, 0, len(all))
		for _, d := range all {
			views = append(views, providerView{Name: d.Name, Priority: d.Priority, Configured: d.Configured})
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": views})
	})
	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req Request
		dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, generateResponse{Error: fmt.Sprintf("decode request: %v", err), Kind: string(gateway.KindInvalidRequest)})
			return
		}

		res := rt.Generate(r.Context(), "http", req)
		if !res.OK() {
			writeJSON(w, StatusForKind(res.Err.Kind), generateResponse{
				RequestID: res.RequestID,
				Error:     res.Err.Error(),
				Kind:      string(res.Err.Kind),
			})
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{Text: res.Text, Provider: res.Provider, RequestID: res.RequestID})
	})
	return mux
}

// StatusForKind maps a gateway failure onto an HTTP status.
func StatusForKind(k gateway.Kind) int {
	switch k {
	case gateway.KindInvalidRequest:
		return http.StatusBadRequest
	case gateway.KindNotConfigured:
		return http.StatusServiceUnavailable
	case gateway.KindRepairFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func StartServer(ctx context.Context, rt *Runtime, addr string) error {
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{Addr: addr, Handler: GatewayHandler(rt), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	rt.Logger.Info("gateway listening", zap.String("addr", addr))
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func StartServerTLS(ctx context.Context, rt *Runtime, addr string, files security.TLSFiles) error {
	if addr == "" {
		addr = ":8443"
	}
	cfg, err := files.ServerConfig()
	if err != nil {
		return err
	}
	s := &http.Server{Addr: addr, Handler: GatewayHandler(rt), ReadHeaderTimeout: 5 * time.Second, TLSConfig: cfg}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return fmt.Errorf("gateway tls listen: %w", err)
	}
	rt.Logger.Info("gateway listening", zap.String("addr", addr), zap.Bool("tls", true))
	if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve starts the listener configured in rt.Config and blocks until ctx ends.
func Serve(ctx context.Context, rt *Runtime) error {
	if rt.Config.TLS.Enabled {
		return StartServerTLS(ctx, rt, rt.Config.ListenAddr, rt.Config.TLS.TLSFiles)
	}
	return StartServer(ctx, rt, rt.Config.ListenAddr)
}
