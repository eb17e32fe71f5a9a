package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/algoinvest/internal/config"
	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/internal/harness"
	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	defaults      *config.Configuration
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the selection API.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = defaultConfig()
		if err := cfg.normalize(); err != nil {
			logger.Error("invalid default server configuration",
				zap.String("op", "server.NewHandler"),
				zap.Error(err),
			)
		}
	}

	maxUploadSize := cfg.UploadSizeBytes()
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		defaults:      cfg.Selection(),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.loggingMiddleware)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/select", h.handleSelect)
		r.Get("/version", h.handleVersion)
	})

	return r
}

type selectResponse struct {
	Report   *harness.Report `json:"report"`
	CSV      string          `json:"csv"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

func (h *handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSelect"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing dataset file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	conf, err := h.requestConfig(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	budget, err := conf.BudgetCents()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	assets, stats, err := dataset.Read(file, conf.Ingestion.ProfitScale)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, dataset.ErrMissingColumn) && !errors.Is(err, asset.ErrUnknownScale) {
			status = http.StatusUnprocessableEntity
		}
		h.respondError(w, status, fmt.Sprintf("error reading dataset, %v", err), op)
		return
	}

	solvers, err := conf.BuildSolvers()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	runner, err := harness.NewRunner(h.logger, solvers, harness.Options{
		Parallel:  conf.IsParallel(),
		WarnAfter: conf.Harness.WarnAfter,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" && header != nil {
		name = header.Filename
	}

	report, err := runner.Run(r.Context(), harness.Input{
		Dataset:   name,
		Assets:    assets,
		Budget:    budget,
		LoadStats: stats,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("selection failed: %v", err), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, []*harness.Report{report}); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	var warnings []string
	if stats.MixedScale {
		warnings = append(warnings, dataset.MixedScaleWarning)
	}
	for _, s := range report.Summaries {
		if s.Skipped {
			warnings = append(warnings, fmt.Sprintf("%s skipped: %s", s.Solver, strings.Join(s.Notes, "; ")))
		}
	}

	elapsed := time.Since(start)
	h.logger.Info("selection computed",
		zap.String("op", op),
		zap.String("dataset", name),
		zap.Int("assets", len(assets)),
		zap.Int("rejected", stats.Rejected),
		zap.Int("solvers", len(solvers)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, selectResponse{
		Report:   report,
		CSV:      csvBuf.String(),
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

// requestConfig applies form overrides to a copy of the server defaults.
func (h *handler) requestConfig(r *http.Request) (*config.Configuration, error) {
	conf := *h.defaults
	conf.Solvers = append([]string(nil), h.defaults.Solvers...)

	if raw := strings.TrimSpace(r.FormValue("budget")); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid budget %q", raw)
		}
		if budget <= 0 {
			return nil, fmt.Errorf("budget must be positive (got %s)", raw)
		}
		conf.Budget = budget
	}
	if raw := strings.TrimSpace(r.FormValue("solvers")); raw != "" {
		conf.Solvers = strings.Split(raw, ",")
	}
	if raw := strings.TrimSpace(r.FormValue("profitScale")); raw != "" {
		conf.Ingestion.ProfitScale = raw
	}

	conf.Normalize()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("request served",
			zap.String("op", "server.loggingMiddleware"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("selection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
