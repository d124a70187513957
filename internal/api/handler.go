package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enginemock/enginemock/internal/catalog"
	"github.com/enginemock/enginemock/internal/config"
	"github.com/enginemock/enginemock/internal/observability"
	"github.com/enginemock/enginemock/internal/query"
	"github.com/enginemock/enginemock/internal/query/sample"
)

// Version is reported by the identity endpoint of both services.
const Version = "1.0.0"

// DocumentStore holds a replaceable JSON document such as the manifest.
type DocumentStore interface {
	Get() catalog.Document
	Replace(doc catalog.Document)
}

type Dependencies struct {
	Logger         *slog.Logger
	QueryEngine    query.Engine
	Manifest       DocumentStore
	ConnectionInfo DocumentStore
}

type identity struct {
	Name        string
	Description string
}

var (
	connectorIdentity = identity{
		Name:        "Local Ibis Server",
		Description: "Docker-free replacement for wren-engine-ibis",
	}
	mdlIdentity = identity{
		Name:        "Local Wren Engine",
		Description: "Docker-free replacement for wren-engine",
	}
)

// NewConnectorHandler serves the connector API under /v3/connector.
func NewConnectorHandler(cfg config.Config, deps Dependencies) http.Handler {
	if deps.QueryEngine == nil {
		deps.QueryEngine = sample.NewConnectorEngine()
	}
	deps = withDefaultStores(deps)

	mux := http.NewServeMux()
	registerCommon(mux, cfg, connectorIdentity)

	mux.HandleFunc("POST /v3/connector/{data_source}/query", func(w http.ResponseWriter, r *http.Request) {
		handleConnectorQuery(deps, w, r)
	})
	mux.HandleFunc("POST /v3/connector/{data_source}/dry-plan", func(w http.ResponseWriter, r *http.Request) {
		handleDryPlan(deps, w, r)
	})
	mux.HandleFunc("GET /v3/connector/{data_source}/functions", func(w http.ResponseWriter, r *http.Request) {
		handleFunctions(deps, w, r)
	})
	mux.HandleFunc("GET /v3/connector/{data_source}/schema", func(w http.ResponseWriter, r *http.Request) {
		handleConnectorSchema(deps, w, r)
	})

	return wrap(mux, deps.Logger)
}

// NewMDLHandler serves the manifest API under /v1/mdl.
func NewMDLHandler(cfg config.Config, deps Dependencies) http.Handler {
	if deps.QueryEngine == nil {
		deps.QueryEngine = sample.NewPreviewEngine()
	}
	deps = withDefaultStores(deps)

	mux := http.NewServeMux()
	registerCommon(mux, cfg, mdlIdentity)

	dryRun := func(w http.ResponseWriter, r *http.Request) {
		handleMDLDryRun(deps, w, r)
	}
	preview := func(w http.ResponseWriter, r *http.Request) {
		handlePreview(deps, w, r)
	}
	mux.HandleFunc("GET /v1/mdl/dry-run", dryRun)
	mux.HandleFunc("POST /v1/mdl/dry-run", dryRun)
	mux.HandleFunc("GET /v1/mdl/preview", preview)
	mux.HandleFunc("POST /v1/mdl/preview", preview)
	mux.HandleFunc("GET /v1/mdl/manifest", func(w http.ResponseWriter, r *http.Request) {
		handleGetManifest(deps, w, r)
	})
	mux.HandleFunc("POST /v1/mdl/manifest", func(w http.ResponseWriter, r *http.Request) {
		handleReplaceManifest(deps, w, r)
	})
	mux.HandleFunc("GET /v1/mdl/schema", func(w http.ResponseWriter, r *http.Request) {
		handleMDLSchema(deps, w, r)
	})

	return wrap(mux, deps.Logger)
}

func registerCommon(mux *http.ServeMux, cfg config.Config, id identity) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":     id.Name,
			"status":      "running",
			"version":     Version,
			"description": id.Description,
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": cfg.Service.Name})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
}

func withDefaultStores(deps Dependencies) Dependencies {
	if deps.Manifest == nil {
		deps.Manifest = catalog.NewStore(nil)
	}
	if deps.ConnectionInfo == nil {
		deps.ConnectionInfo = catalog.NewStore(nil)
	}
	return deps
}

func wrap(mux http.Handler, logger *slog.Logger) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		CORSMiddleware,
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(logger))
	}
	middlewares = append(middlewares, recoverMiddleware(logger))
	return chain(mux, middlewares...)
}

// recoverMiddleware turns a handler panic into a 500 carrying the panic text.
func recoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				detail := fmt.Sprint(rec)
				if logger != nil {
					logger.ErrorContext(r.Context(), "handler panic",
						slog.String("path", r.URL.Path),
						slog.String("error", detail),
					)
				}
				writeDetail(r.Context(), w, http.StatusInternalServerError, detail)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDetail keeps the {"detail": ...} error body the engines' clients parse.
func writeDetail(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{
		"detail":   detail,
		"trace_id": observability.TraceIDFromContext(ctx),
	})
}

func logInfo(deps Dependencies, r *http.Request, msg string, attrs ...slog.Attr) {
	if deps.Logger == nil {
		return
	}
	deps.Logger.LogAttrs(r.Context(), slog.LevelInfo, msg, attrs...)
}

func logSQL(deps Dependencies, r *http.Request, sqlText string) {
	if deps.Logger == nil {
		return
	}
	deps.Logger.LogAttrs(r.Context(), slog.LevelDebug, "sql received", slog.String("sql", sqlText))
}
