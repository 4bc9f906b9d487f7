package mockprovider

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/checkout-orders/internal/auth"
	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
)

type event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type session struct {
	ID                string  `json:"id"`
	URL               string  `json:"url"`
	Amount            int64   `json:"-"`
	Currency          string  `json:"-"`
	MerchantReference string  `json:"-"`
	ReturnURL         string  `json:"-"`
	Events            []event `json:"events"`
}

// Server imitates the hosted checkout API: client-credentials tokens,
// session creation and session status with an event history. Sessions live
// in memory.
type Server struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg:      cfg,
		sessions: make(map[string]*session),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /v1/accounts/{account}/auth/token", s.issueToken)
	mux.Handle("POST /v1/sessions-profile", s.requireToken(http.HandlerFunc(s.createSession)))
	mux.Handle("GET /v1/sessions/{id}", s.requireToken(http.HandlerFunc(s.getSession)))
	mux.Handle("POST /v1/sessions/{id}/events", s.requireToken(http.HandlerFunc(s.appendEvent)))
	return withRequestLogger(mux)
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	Audience  string `json:"audience"`
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if r.PathValue("account") != s.cfg.Account {
		writeError(w, http.StatusNotFound, "unknown account")
		return
	}

	clientID, secret, ok := r.BasicAuth()
	if !ok || clientID != s.cfg.ClientID ||
		bcrypt.CompareHashAndPassword([]byte(s.cfg.ClientSecretHash), []byte(secret)) != nil {
		log.Warn("token request rejected", "client_id", clientID)
		writeError(w, http.StatusUnauthorized, "invalid client credentials")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GrantType != "client_credentials" {
		writeError(w, http.StatusBadRequest, "grant_type must be client_credentials")
		return
	}

	token, err := auth.GenerateToken(clientID, s.cfg.Account, req.Audience, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		log.Error("token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(s.cfg.TokenTTL.Seconds()),
	})
}

type sessionRequest struct {
	URL struct {
		ReturnURL string `json:"return_url"`
	} `json:"url"`
	Order struct {
		Amount            int64  `json:"amount"`
		Currency          string `json:"currency"`
		MerchantReference string `json:"merchant_reference"`
	} `json:"order"`
	ProfileID string `json:"profile_id"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session request")
		return
	}
	switch {
	case req.URL.ReturnURL == "":
		writeError(w, http.StatusBadRequest, "url.return_url is required")
		return
	case req.Order.Amount < 1:
		writeError(w, http.StatusBadRequest, "order.amount must be positive")
		return
	case !domain.Currency(req.Order.Currency).IsValid():
		writeError(w, http.StatusBadRequest, "order.currency is invalid")
		return
	case req.ProfileID == "":
		writeError(w, http.StatusBadRequest, "profile_id is required")
		return
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	id := fmt.Sprintf("%s.%s", claims.Account, strings.ReplaceAll(uuid.NewString(), "-", ""))
	sess := &session{
		ID:                id,
		URL:               fmt.Sprintf("%s/?sid=%s", strings.TrimSuffix(s.cfg.PublicURL, "/"), id),
		Amount:            req.Order.Amount,
		Currency:          req.Order.Currency,
		MerchantReference: req.Order.MerchantReference,
		ReturnURL:         req.URL.ReturnURL,
		Events:            []event{newEvent(domain.ProviderStatusInitialized)},
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	logging.FromContext(r.Context()).Info("session created", "session_id", id, "merchant_reference", sess.MerchantReference)
	writeJSON(w, http.StatusOK, map[string]string{"id": sess.ID, "url": sess.URL})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sess, ok := s.sessions[r.PathValue("id")]
	var snapshot session
	if ok {
		snapshot = *sess
		snapshot.Events = append([]event(nil), sess.Events...)
	}
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type eventRequest struct {
	Name string `json:"name"`
}

// appendEvent simulates the shopper progressing through checkout.
func (s *Server) appendEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[r.PathValue("id")]
	if ok {
		sess.Events = append(sess.Events, newEvent(req.Name))
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "bearer token required")
			return
		}

		claims, err := auth.ValidateToken(token, s.cfg.JWTSecret)
		if err != nil {
			logging.FromContext(r.Context()).Warn("invalid access token", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With("method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

func newEvent(name string) event {
	return event{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": message}})
}
