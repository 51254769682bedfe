// Package server implements the HTTP surface: overlay rendering through
// the reprojection cache and ice-extent statistics from the store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"repolar/internal/api"
	"repolar/internal/reproject"
	"repolar/internal/seaice"
	"repolar/internal/source"
	"repolar/pkg/projection"
)

// Config carries everything the handlers need. Extents and the archive
// template are configuration of the calling application, not of the
// reprojection core.
type Config struct {
	Version string

	// URLTemplate addresses the source archive; see source.BuildURL for
	// the recognized tokens.
	URLTemplate string

	NorthExtent projection.Extent
	SouthExtent projection.Extent

	// DefaultWidth is used when the request omits width; MaxWidth caps it.
	DefaultWidth int
	MaxWidth     int

	// Loader fetches and decodes source rasters.
	Loader reproject.Loader

	// DB enables /statistics when set.
	DB *gorm.DB
}

// Server implements api.ServerInterface.
type Server struct {
	startTime time.Time
	cfg       Config
	cache     *reproject.Cache
}

// NewServer builds the handler set around a fresh single-slot cache.
func NewServer(cfg Config) *Server {
	return &Server{
		startTime: time.Now(),
		cfg:       cfg,
		cache:     reproject.NewCache(),
	}
}

// Mount attaches the generated API routes to r. Parameter-binding
// failures come back in the same JSON error shape as handler-level
// validation.
func (s *Server) Mount(r chi.Router) {
	api.HandlerWithOptions(s, api.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
				err.Error(), middleware.GetReqID(r.Context()), nil)
		},
	})
}

// GetHealth implements the health check endpoint.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.cfg.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding health response", "error", err)
	}
}

// GetOverlay renders the equirectangular overlay for one observation day.
func (s *Server) GetOverlay(w http.ResponseWriter, r *http.Request, params api.GetOverlayParams) {
	requestID := middleware.GetReqID(r.Context())

	hemisphere := "north"
	if params.Hemisphere != nil {
		hemisphere = string(*params.Hemisphere)
	}
	variant, err := projection.ParseVariant(hemisphere)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID, nil)
		return
	}

	width := s.cfg.DefaultWidth
	if params.Width != nil {
		width = *params.Width
	}
	if width < 2 || width > s.cfg.MaxWidth {
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"width out of range", requestID, map[string]interface{}{
				"width": width,
				"min":   2,
				"max":   s.cfg.MaxWidth,
			})
		return
	}

	extent := s.cfg.NorthExtent
	if variant == projection.South {
		extent = s.cfg.SouthExtent
	}

	opts := reproject.Options{
		SourceRef:  source.BuildURL(s.cfg.URLTemplate, hemisphere, params.Date.Time),
		Extent:     extent,
		Hemisphere: variant,
		Width:      width,
	}

	out, err := s.cache.GetOrCompute(r.Context(), opts, s.cfg.Loader)
	if err != nil {
		s.handleOverlayError(w, err, requestID)
		return
	}

	data, err := out.EncodePNG()
	if err != nil {
		slog.Error("encoding overlay", "error", err, "request_id", requestID)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("writing overlay response", "error", err, "request_id", requestID)
	}
}

// GetStatistics returns the stored series and its summary.
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request, params api.GetStatisticsParams) {
	requestID := middleware.GetReqID(r.Context())

	if s.cfg.DB == nil {
		s.writeError(w, http.StatusServiceUnavailable, "STATISTICS_DISABLED",
			"No statistics store is configured", requestID, nil)
		return
	}

	hemisphere := "north"
	if params.Hemisphere != nil {
		hemisphere = string(*params.Hemisphere)
	}
	if _, err := projection.ParseVariant(hemisphere); err != nil {
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID, nil)
		return
	}

	var from, to time.Time
	if params.From != nil {
		from = params.From.Time
	}
	if params.To != nil {
		to = params.To.Time
	}

	recs, err := seaice.Series(r.Context(), s.cfg.DB, hemisphere, from, to)
	if err != nil {
		slog.Error("querying statistics", "error", err, "request_id", requestID)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
		return
	}

	response := api.StatisticsResponse{
		Hemisphere: hemisphere,
		Records:    make([]api.IceRecord, len(recs)),
	}
	for i, rec := range recs {
		response.Records[i] = api.IceRecord{
			Hemisphere:  rec.Hemisphere,
			Date:        rec.Date,
			IcePixels:   rec.IcePixels,
			TotalPixels: rec.TotalPixels,
		}
	}

	if len(recs) > 0 {
		summary, err := seaice.Summarize(recs)
		if err != nil {
			slog.Error("summarizing statistics", "error", err, "request_id", requestID)
			s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Internal server error", requestID, nil)
			return
		}
		response.Summary = &api.StatisticsSummary{
			Days:                  summary.Days,
			MeanIcePixels:         summary.MeanIce,
			MinIcePixels:          summary.MinIce,
			MaxIcePixels:          summary.MaxIce,
			TrendIcePixelsPerYear: summary.TrendPerYear,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding statistics response", "error", err, "request_id", requestID)
	}
}

// handleOverlayError maps the error taxonomy onto HTTP statuses.
func (s *Server) handleOverlayError(w http.ResponseWriter, err error, requestID string) {
	var cfgErr *reproject.ConfigError
	if errors.As(err, &cfgErr) {
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", cfgErr.Error(), requestID, nil)
		return
	}

	var unavailable *source.UnavailableError
	if errors.As(err, &unavailable) {
		details := map[string]interface{}{
			"source": unavailable.Ref,
		}
		if unavailable.StatusCode != 0 {
			details["upstream_status"] = unavailable.StatusCode
		}
		s.writeError(w, http.StatusBadGateway, "SOURCE_UNAVAILABLE",
			"Source raster is unavailable", requestID, details)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusGatewayTimeout, "TIMEOUT",
			"Source fetch or reprojection timed out", requestID, nil)
		return
	}

	slog.Error("overlay request failed", "error", err, "request_id", requestID)
	s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"Internal server error", requestID, nil)
}

// writeError writes a standard error response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, errorCode, message, requestID string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	if requestID != "" {
		response.RequestId = &requestID
	}
	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}
