package ui

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"craftcheck/app"
	"craftcheck/internal/api"
)

// App is the root HTTP application: the JSON API under /api and a human
// readable status page
type App struct {
	router  *chi.Mux
	service *app.ValidationService
	page    *template.Template
}

// NewApp creates a new UI application
func NewApp(service *app.ValidationService) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		page:    template.Must(template.New("status").Parse(statusPage)),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/status", http.StatusFound)
	})
	a.router.Get("/status", a.handleStatus)
	a.router.Get("/status.md", a.handleStatusMarkdown)
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.router.Mount("/api", http.StripPrefix("/api", api.NewRouter(a.service)))
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled, then drains connections for up to grace
func (a *App) Start(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: a, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[UI] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		log.Printf("[UI] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := a.report(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.page.Execute(w, template.HTML(RenderHTML(report))); err != nil {
		log.Printf("[UI] Failed to render status page: %v", err)
	}
}

func (a *App) handleStatusMarkdown(w http.ResponseWriter, r *http.Request) {
	report, err := a.report(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(report))
}

func (a *App) report(ctx context.Context) (string, error) {
	summary, err := a.service.Summary(ctx)
	if err != nil {
		// a missing ledger only drops the summary table
		log.Printf("[UI] Summary unavailable: %v", err)
		summary = nil
	}
	return StatusReport(a.service.Manager().IsInitialized(), a.service.Status(), summary), nil
}

const statusPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>craftcheck status</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
</style>
</head>
<body>
{{.}}
</body>
</html>
`
