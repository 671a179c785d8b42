// Package server publishes the rendered feed over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lepinkainen/content-feed/pkg/database"
	"github.com/lepinkainen/content-feed/pkg/feed"
	"github.com/lepinkainen/content-feed/pkg/store"
)

const (
	feedCacheKey   = "feed.xml"
	rssType        = "application/rss+xml; charset=utf-8"
	xmlType        = "application/xml; charset=utf-8"
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

// ItemSource is the read side of the content store
type ItemSource interface {
	Item(id string) (*store.Item, error)
	RecentItems(limit int) ([]*store.Item, error)
	Stats() (store.Stats, error)
}

// Options configures a Server
type Options struct {
	BaseURL  string
	Limit    int
	Cache    *database.Cache // nil disables caching of /feed.xml
	CacheTTL time.Duration
}

// Server serves the feed, single items and a health check
type Server struct {
	items    ItemSource
	document *feed.Document
	renderer *feed.ItemRenderer
	opts     Options
	router   chi.Router
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a server and its routes
func New(items ItemSource, document *feed.Document, renderer *feed.ItemRenderer, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		items:    items,
		document: document,
		renderer: renderer,
		opts:     opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/feed.xml", s.handleFeed)
	r.Get("/items/{id}.xml", s.handleItem)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Feed server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down feed server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.items.Stats()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"items":  stats.Items,
		"images": stats.Images,
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	log := slog.With("request_id", middleware.GetReqID(r.Context()))

	if s.opts.Cache != nil {
		cached, ok, err := s.opts.Cache.Get(feedCacheKey)
		if err != nil {
			log.Warn("Feed cache read failed", "error", err)
		} else if ok {
			log.Debug("Serving cached feed")
			writeXML(w, rssType, cached)
			return
		}
	}

	items, err := s.items.RecentItems(s.opts.Limit)
	if err != nil {
		log.Error("Failed to load items", "error", err)
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return
	}

	out, err := s.document.Render(store.ContentItems(items))
	if err != nil {
		log.Error("Failed to render feed", "error", err)
		http.Error(w, "failed to render feed", http.StatusInternalServerError)
		return
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(feedCacheKey, out, s.opts.CacheTTL); err != nil {
			log.Warn("Feed cache write failed", "error", err)
		}
	}

	writeXML(w, rssType, out)
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.items.Item(id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("Failed to load item", "id", id, "error", err)
		http.Error(w, "failed to load item", http.StatusInternalServerError)
		return
	}

	out, err := s.renderer.Render(item, s.opts.BaseURL)
	if err != nil {
		slog.Error("Failed to render item", "id", id, "error", err)
		http.Error(w, "failed to render item", http.StatusInternalServerError)
		return
	}

	writeXML(w, xmlType, xmlDeclaration+out+"\n")
}

func writeXML(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("Failed to write JSON response", "error", err)
	}
}
