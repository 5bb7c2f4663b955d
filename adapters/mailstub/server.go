// Package mailstub is a local stand-in for the email service: it renders
// templates with the built-in engine and records sent messages instead of
// delivering them.
package mailstub

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"
	"csvdash/internal/templating"
	"csvdash/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves POST /generate-email and POST /send-email
type Server struct {
	router *chi.Mux

	mu   sync.Mutex
	sent []ports.Email
}

// NewServer creates the stub with its routes and middleware
func NewServer() *Server {
	s := &Server{router: chi.NewRouter()}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Post("/generate-email", s.handleGenerate)
	s.router.Post("/send-email", s.handleSend)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sent returns a copy of the messages accepted so far
func (s *Server) Sent() []ports.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Email(nil), s.sent...)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string                 `json:"prompt"`
		Row    map[string]interface{} `json:"row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	rec := make(dataset.Record, len(req.Row))
	for k, v := range req.Row {
		rec[k] = toValue(v)
	}

	email, err := templating.Render(req.Prompt, rec)
	if err != nil {
		var mf *errors.MissingFieldError
		if stderrors.As(err, &mf) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": err.Error(),
				"code":  errors.CodeMissingField,
				"field": mf.Field,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var email ports.Email
	if err := json.NewDecoder(r.Body).Decode(&email); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if !strings.Contains(email.Recipient, "@") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid recipient %q", email.Recipient))
		return
	}

	s.mu.Lock()
	s.sent = append(s.sent, email)
	s.mu.Unlock()

	log.Printf("[MailStub] Accepted email to %s (subject %q, %d bytes)", email.Recipient, email.Subject, len(email.Body))
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func toValue(v interface{}) dataset.Value {
	switch t := v.(type) {
	case nil:
		return dataset.Missing()
	case float64:
		return dataset.Number(t, "")
	case string:
		return dataset.Text(t)
	default:
		return dataset.Text(fmt.Sprint(t))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[MailStub] Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
