package cmd

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/topsongs/pkg/api"
	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/rubiojr/topsongs/pkg/log"
	"github.com/rubiojr/topsongs/pkg/query"
	"github.com/rubiojr/topsongs/pkg/realtime"
	"github.com/rubiojr/topsongs/pkg/render"
	"github.com/rubiojr/topsongs/pkg/search"
	"github.com/rubiojr/topsongs/pkg/version"
)

//go:embed web/static/*
var staticFS embed.FS

var webLogger = log.ForService("web")

// WebCommand creates the web command with both API and UI
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start web server with both API endpoints and HTML interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides web.port)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides web.host)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

// WebServer holds the server configuration and dependencies
type WebServer struct {
	config    *config.Config
	service   *search.Service
	renderer  *render.Renderer
	apiServer *api.Server
}

func NewWebServer(cfg *config.Config, service *search.Service, hub *realtime.Hub) (*WebServer, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	return &WebServer{
		config:    cfg,
		service:   service,
		renderer:  renderer,
		apiServer: api.NewServer(service, hub),
	}, nil
}

// Handler returns the full handler chain: routes, CORS, request logging and
// gzip. The event stream skips compression since it hijacks the connection.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	s.apiServer.RegisterRoutes(mux)

	// Web UI routes
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /search/detail", s.handleDetail)
	mux.HandleFunc("GET /search/image", s.handleImage)
	mux.HandleFunc("GET /search/advanced", s.handleAdvanced)
	mux.HandleFunc("GET /search/advanced/run", s.handleAdvancedRun)
	mux.HandleFunc("GET /search/bday", s.handleBirthday)

	// Static assets
	mux.HandleFunc("GET /static/", s.handleStatic)

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := requestLogger(api.CorsMiddleware(mux))
	compressed := gzhttp.GzipHandler(handler)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/events" {
			handler.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// startWebServer starts the web server with both API and UI
func startWebServer(ctx context.Context, configPath, host, port string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if host != "" {
		cfg.Web.Host = host
	}
	if port != "" {
		cfg.Web.Port = port
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			webLogger.Warnf("failed to close catalog: %v", err)
		}
	}()

	index, err := search.NewIndex(ctx, store, cfg.Web.PageLength)
	if err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	defer index.Close()

	var backend search.Backend = index
	var cached *search.CachedBackend
	if cfg.Web.CacheSize > 0 {
		cached, err = search.NewCachedBackend(index, cfg.Web.CacheSize)
		if err != nil {
			return err
		}
		backend = cached
	}

	hub := realtime.NewHub(0)
	webServer, err := NewWebServer(cfg, search.NewService(backend), hub)
	if err != nil {
		return err
	}

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	if cfg.Catalog.ImportDir != "" {
		watcher, err := catalog.NewWatcher(store, cfg.Catalog.ImportDir, func(path string, result catalog.ImportResult) {
			webLogger.Infof("imported %d songs from %s, reindexing", result.Songs, path)
			if err := index.Rebuild(watchCtx); err != nil {
				webLogger.Errorf("reindexing after import: %v", err)
				return
			}
			if cached != nil {
				cached.Purge()
			}
			indexed, err := store.Count(watchCtx)
			if err != nil {
				webLogger.Warnf("counting songs: %v", err)
			}
			hub.BroadcastCatalog(realtime.CatalogEvent{
				Path:    path,
				Songs:   result.Songs,
				Images:  result.Images,
				Indexed: indexed,
			})
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
		go func() {
			if err := watcher.Run(watchCtx); err != nil {
				webLogger.Errorf("catalog watcher stopped: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Web.Host, cfg.Web.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           webServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		webLogger.Infof("Starting web server on http://%s", addr)
		webLogger.Infof("  GET /search, /search/detail, /search/image, /search/advanced, /search/bday")
		webLogger.Infof("  GET /api/search, /api/song, /api/events, /health, /metrics")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("web server failed: %w", err)
	case <-sigCh:
	case <-ctx.Done():
	}

	webLogger.Infof("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout.Duration)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// Web UI Handlers

func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/search", http.StatusFound)
}

func (s *WebServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	in := search.ParseRawInput(r.URL.Query())

	page, err := s.service.Search(r.Context(), in)
	if err != nil {
		webLogger.Errorf("search: %v", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	data := s.pageData("Search - topsongs")
	data.Query = page.Query
	data.Search = page
	if page.Err != nil {
		data.Error = formatSearchError(page.Err)
	}
	s.render(w, render.PageSearch, data)
}

func (s *WebServer) handleDetail(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		http.Error(w, "Missing uri parameter", http.StatusBadRequest)
		return
	}

	detail, err := s.service.Detail(r.Context(), uri)
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		webLogger.Errorf("loading %s: %v", uri, err)
		http.Error(w, "Failed to load song", http.StatusInternalServerError)
		return
	}

	data := s.pageData(detail.Song.Title + " - topsongs")
	data.Query = query.DefaultQuery
	data.Detail = detail
	if detail.Err != nil {
		data.Error = formatSearchError(detail.Err)
	}
	s.render(w, render.PageDetail, data)
}

func (s *WebServer) handleImage(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		http.Error(w, "Missing uri parameter", http.StatusBadRequest)
		return
	}

	rc, contentType, err := s.service.Backend().Image(r.Context(), uri)
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		webLogger.Errorf("loading image %s: %v", uri, err)
		http.Error(w, "Failed to load image", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		webLogger.Warnf("writing image %s: %v", uri, err)
	}
}

func (s *WebServer) handleAdvanced(w http.ResponseWriter, r *http.Request) {
	data := s.pageData("Advanced search - topsongs")

	results, err := s.service.Backend().Search(r.Context(), query.DefaultQuery, 1, true)
	if err != nil {
		data.Error = formatSearchError(err)
	} else {
		data.Facets = results.Facets
	}
	s.render(w, render.PageAdvanced, data)
}

// handleAdvancedRun composes the advanced form into a query and hands it to
// the search page as a search button submission.
func (s *WebServer) handleAdvancedRun(w http.ResponseWriter, r *http.Request) {
	form, err := search.ParseAdvancedForm(r.URL.Query())
	if err != nil {
		webLogger.Debugf("advanced search form: %v", err)
		http.Error(w, "Invalid advanced search parameters", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, searchButtonURL(form.Query()), http.StatusFound)
}

func (s *WebServer) handleBirthday(w http.ResponseWriter, r *http.Request) {
	q, err := search.BirthdayQuery(r.URL.Query().Get("bday"))
	if err != nil {
		http.Error(w, "Invalid birthday, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, searchButtonURL(q), http.StatusFound)
}

// handleStatic serves static assets from embedded files
func (s *WebServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Remove /static/ prefix and add web/static/ prefix for embedded filesystem
	filePath := "web/static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(path, ".css") {
		w.Header().Set("Content-Type", "text/css")
	} else if strings.HasSuffix(path, ".js") {
		w.Header().Set("Content-Type", "application/javascript")
	} else if strings.HasSuffix(path, ".png") {
		w.Header().Set("Content-Type", "image/png")
	}

	// Set cache headers for static assets
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		webLogger.Warnf("writing static content: %v", err)
	}
}

// Helper methods

func (s *WebServer) pageData(title string) render.PageData {
	return render.PageData{
		Title:   title,
		Version: version.APIVersion(),
	}
}

func (s *WebServer) render(w http.ResponseWriter, page string, data render.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, page, data); err != nil {
		webLogger.Errorf("template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func searchButtonURL(q string) string {
	return "/search?" + url.Values{
		"q":         {q},
		"submitbtn": {"search"},
	}.Encode()
}

// requestLogger tags every request with an id and logs it at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.With("request_id", id).Debugf("%s %s %s", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}

// formatSearchError converts search errors into user-friendly messages
func formatSearchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "The search took too long. Please try again."
	}
	if errors.Is(err, search.ErrIndexClosed) {
		return "The search index is being rebuilt. Please try again in a moment."
	}

	errStr := err.Error()
	if strings.Contains(errStr, "syntax error") || strings.Contains(errStr, "parse error") {
		return "Invalid search syntax. Please check your query for unmatched quotes or invalid operators."
	}
	if strings.Contains(errStr, "database is locked") {
		return "Database is temporarily busy. Please try again in a moment."
	}

	// Fallback for unknown errors - show a generic message
	return "Search failed due to an unexpected error. Please try a simpler query."
}
