// Package server exposes the analysis pipeline over HTTP: a small web UI
// plus a JSON API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/andrianta/hoaxcheck/internal/analyze"
	"github.com/andrianta/hoaxcheck/internal/database"
	"github.com/andrianta/hoaxcheck/internal/detect"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

const historyLimit = 20

// Analyzer runs the verification pipeline for one claim.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analyze.Report, error)
}

// Server is the HTTP server for claim analysis.
type Server struct {
	analyzer Analyzer
	detector detect.Detector
	db       *database.DB
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server. db may be nil; history endpoints then return
// empty results.
func New(analyzer Analyzer, detector detect.Detector, db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "result.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{analyzer: analyzer, detector: detector, db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Web UI
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/analyze", s.handleAnalyzeForm)

	// JSON API
	s.mux.HandleFunc("/api/analyze", s.handleAPIAnalyze)
	s.mux.HandleFunc("/api/history", s.handleAPIHistory)
	s.mux.HandleFunc("/api/health", s.handleAPIHealth)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var history []database.Analysis
	if s.db != nil {
		history, _ = s.db.GetRecentAnalyses(10)
	}

	s.render(w, "index.html", map[string]any{
		"History": history,
	})
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	report, err := s.analyzer.Analyze(r.Context(), text)
	if err != nil {
		s.render(w, "result.html", map[string]any{
			"Text":  text,
			"Error": userMessage(err),
		})
		return
	}

	s.render(w, "result.html", map[string]any{
		"Text":   text,
		"Report": report,
	})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req.Text)
	switch {
	case errors.Is(err, analyze.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "no text provided")
		return
	case errors.Is(err, detect.ErrUnavailable):
		log.Printf("Analysis failed: %v", err)
		writeError(w, http.StatusBadGateway, "classification backend unavailable")
		return
	case err != nil:
		log.Printf("Analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	var (
		history []database.Analysis
		stats   *database.Stats
	)
	if s.db != nil {
		var err error
		history, err = s.db.GetRecentAnalyses(historyLimit)
		if err != nil {
			log.Printf("Could not read history: %v", err)
			writeError(w, http.StatusInternalServerError, "could not read history")
			return
		}
		stats, _ = s.db.GetStats()
	}
	if history == nil {
		history = []database.Analysis{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analyses": history,
		"stats":    stats,
	})
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"detector_configured": s.detector != nil && s.detector.IsConfigured(),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, analyze.ErrEmptyText):
		return "Masukkan teks klaim yang ingin diperiksa."
	case errors.Is(err, detect.ErrUnavailable):
		return "Layanan klasifikasi sedang tidak tersedia. Coba lagi nanti."
	default:
		return "Analisis gagal. Coba lagi nanti."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(analyzer Analyzer, detector detect.Detector, db *database.DB, port int) error {
	srv, err := New(analyzer, detector, db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
