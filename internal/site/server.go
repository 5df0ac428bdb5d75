package site

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/config"
	"github.com/yildizm/DocSum/internal/contact"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxContactBody bounds the contact request body
const maxContactBody = 64 << 10

// HealthChecker probes the Document Service
type HealthChecker interface {
	Health(ctx context.Context) (*docservice.Health, error)
}

// TokenVerifier turns a bearer token into a user confirmed by the identity
// provider. auth.IdentityClient.VerifyIDToken is the production verifier.
type TokenVerifier func(ctx context.Context, token string) (*auth.User, error)

// Server serves the landing page and accepts contact form submissions
type Server struct {
	config  config.ServerConfig
	contact *contact.Service
	health  HealthChecker
	verify  TokenVerifier
	log     *logger.Logger
	tmpl    *template.Template
	page    *Page
	now     func() time.Time
}

// NewServer creates the landing site server. contactSvc and health may be nil
// when those features are not configured. The contact endpoint also needs
// verify; without it the endpoint reports itself unavailable.
func NewServer(cfg config.ServerConfig, contactSvc *contact.Service, health HealthChecker, verify TokenVerifier, log *logger.Logger) (*Server, error) {
	tmpl, err := template.New("landing.html").Funcs(template.FuncMap{
		"sectionClass": sectionClass,
	}).ParseFS(templateFS, "templates/landing.html")
	if err != nil {
		return nil, fmt.Errorf("parsing landing template: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Server{
		config:  cfg,
		contact: contactSvc,
		health:  health,
		verify:  verify,
		log:     log.WithComponent("site"),
		tmpl:    tmpl,
		page:    Landing(),
		now:     time.Now,
	}, nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/", s.landingHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(s.corsMiddleware)
	api.HandleFunc("/contact", s.contactHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/api/landing", s.landingJSONHandler).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// ListenAndServe runs the server until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", logger.F("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) landingHandler(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Page             *Page
		Year             int
		MaxMessageLength int
	}{
		Page:             s.page,
		Year:             s.now().Year(),
		MaxMessageLength: contact.MaxMessageLength,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error("Failed to render landing page", logger.Error(err))
	}
}

func (s *Server) landingJSONHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.page)
}

// healthHandler reports the Document Service health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Unix(),
	}

	if s.health != nil {
		health, err := s.health.Health(r.Context())
		if err != nil {
			response["status"] = "degraded"
			response["document_service_error"] = docservice.MessageOf(err)
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		response["document_service"] = health
	}

	writeJSON(w, http.StatusOK, response)
}

type contactResponse struct {
	Status  contact.Status `json:"status,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Field   string         `json:"field,omitempty"`
}

func (s *Server) contactHandler(w http.ResponseWriter, r *http.Request) {
	if s.contact == nil || s.verify == nil {
		writeJSON(w, http.StatusServiceUnavailable, contactResponse{Error: "contact form is not configured"})
		return
	}

	user, err := s.authenticate(r)
	if err != nil {
		s.log.Info("Rejected contact submission", logger.Error(err))
		writeJSON(w, http.StatusUnauthorized, contactResponse{Error: "Please sign in to send a message"})
		return
	}

	form, err := decodeForm(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Error: "invalid request body"})
		return
	}

	status, err := s.contact.SubmitAs(r.Context(), user, form)
	if err != nil {
		if verr, ok := contact.AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, contactResponse{Error: verr.Message, Field: verr.Field})
			return
		}
		writeJSON(w, http.StatusBadGateway, contactResponse{Status: status, Error: status.Message()})
		return
	}

	writeJSON(w, http.StatusOK, contactResponse{Status: status, Message: status.Message()})
}

func (s *Server) authenticate(r *http.Request) (*auth.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, auth.ErrNotSignedIn
	}
	return s.verify(r.Context(), strings.TrimSpace(token))
}

func decodeForm(w http.ResponseWriter, r *http.Request) (contact.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	var form contact.Form
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&form)
		return form, err
	}

	if err := r.ParseForm(); err != nil {
		return form, err
	}
	form.Name = r.PostFormValue("name")
	form.Email = r.PostFormValue("email")
	form.Message = r.PostFormValue("message")
	return form, nil
}

// sectionClass themes a section the way the navigation bar expects
func sectionClass(id string) string {
	if Dark(id) {
		return "dark"
	}
	return "light"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.log.Info("HTTP request",
			logger.F("method", r.Method),
			logger.F("path", r.URL.Path),
			logger.F("status", wrapped.statusCode),
			logger.Duration(time.Since(start)))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
