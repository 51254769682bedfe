package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"repolar/internal/seaice"
	"repolar/internal/server"
	"repolar/internal/source"
	"repolar/pkg/projection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the overlay and statistics HTTP server",
	Long: `Start an HTTP server that renders equirectangular sea-ice overlays
on demand and, when a statistics database is configured, serves the
stored ice-extent series.

Endpoints:
  GET /api/v1/health
  GET /api/v1/overlay?date=YYYY-MM-DD&hemisphere=north|south&width=N
  GET /api/v1/statistics?hemisphere=north|south&from=...&to=...

Examples:
  # Start server on default port 8080
  repolar serve

  # Start server with the statistics endpoint enabled
  repolar serve --db seaice.db

  # Start server with custom bind address and a rotating JSON log
  repolar serve --bind 0.0.0.0 --port 8080 --log-file repolar.log`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 120*time.Second, "request timeout")
	serveCmd.Flags().Int("max-width", 8192, "largest accepted output width")
	serveCmd.Flags().String("db", "", "statistics database path (enables /statistics)")
	serveCmd.Flags().String("log-file", "", "rotating JSON log file (text still goes to stdout)")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.max-width", serveCmd.Flags().Lookup("max-width"))
	viper.BindPFlag("server.db", serveCmd.Flags().Lookup("db"))
	viper.BindPFlag("server.log-file", serveCmd.Flags().Lookup("log-file"))
}

// dualHandler writes every record to both destinations.
type dualHandler struct {
	text slog.Handler
	file slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if h.text.Enabled(ctx, r.Level) {
		if err := h.text.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{text: h.text.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{text: h.text.WithGroup(name), file: h.file.WithGroup(name)}
}

// initServeLogger installs the server logger: text to stdout, and when a
// log file is configured, JSON to a size-rotated file as well. Returns a
// cleanup function to close the log file.
func initServeLogger(logFile string) func() {
	text := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if logFile == "" {
		slog.SetDefault(slog.New(text))
		return func() {}
	}

	lj := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		LocalTime:  true,
	}
	file := slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: slog.LevelDebug})

	slog.SetDefault(slog.New(&dualHandler{text: text, file: file}))
	return func() {
		if err := lj.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")

	cleanup := initServeLogger(viper.GetString("server.log-file"))
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", bind, port)

	northExtent, err := projection.ParseExtent(viper.GetString("extent-north"))
	if err != nil {
		return fmt.Errorf("extent-north: %w", err)
	}
	southExtent, err := projection.ParseExtent(viper.GetString("extent-south"))
	if err != nil {
		return fmt.Errorf("extent-south: %w", err)
	}

	var db *gorm.DB
	if path := viper.GetString("server.db"); path != "" {
		db, err = seaice.Open(path, false)
		if err != nil {
			return err
		}
		slog.Info("statistics store opened", "path", path)
	}

	// Create Chi router
	r := chi.NewRouter()

	// Add middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	// CORS middleware for API access
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Create server implementation
	apiServer := server.NewServer(server.Config{
		Version:      version,
		URLTemplate:  viper.GetString("url"),
		NorthExtent:  northExtent,
		SouthExtent:  southExtent,
		DefaultWidth: viper.GetInt("width"),
		MaxWidth:     viper.GetInt("server.max-width"),
		Loader:       source.NewClient(viper.GetString("user-agent"), timeout),
		DB:           db,
	})

	// Mount API routes at /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		apiServer.Mount(r)
	})

	// Health endpoint without the /api/v1 prefix for probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("starting server", "addr", addr, "statistics", db != nil)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
