package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/usecase"
)

const sessionCookie = "heatmap_session"

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTimeframe),
		errors.Is(err, domain.ErrInvalidView),
		errors.Is(err, domain.ErrUnknownSymbol),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSimulatedOutage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// bearerToken reads the session token from the Authorization header, falling
// back to the session cookie the dashboard uses.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// optionalUser returns the signed-in user, or nil for anonymous and invalid sessions.
func (s *Server) optionalUser(r *http.Request) *domain.User {
	token := bearerToken(r)
	if token == "" || s.auth == nil {
		return nil
	}
	user, err := s.auth.CurrentUser(r.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, r, domain.ErrInvalidToken)
		return nil, false
	}
	user, err := s.auth.CurrentUser(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return user, true
}

func (s *Server) resolveSession(r *http.Request) (domain.Session, error) {
	q := r.URL.Query()
	return s.heatmaps.ResolveSession(s.optionalUser(r), q.Get("symbol"), q.Get("timeframe"), q.Get("view"))
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	sess, err := s.resolveSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.heatmaps.View(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var tf domain.Timeframe
	if raw := q.Get("timeframe"); raw != "" {
		parsed, err := domain.ParseTimeframe(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		tf = parsed
	}

	symbol := q.Get("symbol")
	if symbol == "" {
		if user := s.optionalUser(r); user != nil {
			symbol = user.FavoriteCrypto
		}
	}

	summary, err := s.heatmaps.Summary(r.Context(), symbol, tf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = s.heatmaps.Config().DefaultSymbol
	}
	pr, err := s.prices.Range(symbol)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"symbol": strings.ToUpper(symbol),
		"range":  pr,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = s.heatmaps.Config().DefaultSymbol
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := s.heatmaps.InsightHistory(r.Context(), symbol, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*domain.InsightRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req usecase.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	user, token, err := s.auth.Signup(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, token, s.auth.SessionTTL())
	s.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, token, s.auth.SessionTTL())
	s.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Tokens are stateless, so logging out only clears the dashboard cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -time.Second)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	updated, err := s.auth.SetFavorite(r.Context(), user.ID, req.Symbol)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	user := s.optionalUser(r)
	sess, err := s.resolveSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.heatmaps.View(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	first, err := json.Marshal(snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.hub.serve(w, r, sess, first, func(prev domain.Session, sel selection) (domain.Session, []byte, error) {
		// Fields left out of a selection keep the viewer's current value.
		if sel.Symbol == "" {
			sel.Symbol = prev.Symbol
		}
		if sel.Timeframe == "" {
			sel.Timeframe = string(prev.Timeframe)
		}
		if sel.View == "" {
			sel.View = string(prev.View)
		}
		next, err := s.heatmaps.ResolveSession(user, sel.Symbol, sel.Timeframe, sel.View)
		if err != nil {
			return domain.Session{}, nil, err
		}
		snap, err := s.heatmaps.Switch(r.Context(), prev, next)
		if err != nil {
			return domain.Session{}, nil, err
		}
		data, err := json.Marshal(snap)
		return next, data, err
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	viewers := 0
	if s.hub != nil {
		viewers = s.hub.Count()
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"symbols": s.prices.Symbols(),
		"viewers": viewers,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}
