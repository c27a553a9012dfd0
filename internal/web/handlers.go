package web

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type dashboardData struct {
	User       *domain.User
	Session    domain.Session
	Snapshot   *usecase.HeatmapSnapshot
	Symbols    []string
	Timeframes []domain.Timeframe
	Views      []domain.ViewMode
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := s.optionalUser(r)
	q := r.URL.Query()
	sess, err := s.heatmaps.ResolveSession(user, q.Get("symbol"), q.Get("timeframe"), q.Get("view"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	snap, err := s.heatmaps.View(r.Context(), sess)
	if err != nil {
		s.logger.Error("Failed to build heatmap", zap.String("session", sess.Key()), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		User:       user,
		Session:    sess,
		Snapshot:   snap,
		Symbols:    s.prices.Symbols(),
		Timeframes: []domain.Timeframe{domain.Timeframe15m, domain.Timeframe1h, domain.Timeframe4h, domain.Timeframe24h},
		Views:      []domain.ViewMode{domain.ViewCombined, domain.ViewLongs, domain.ViewShorts},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
