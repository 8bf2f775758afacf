package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/chateshreyas231/dineasy-sub000/internal/aggregator"
	"github.com/chateshreyas231/dineasy-sub000/internal/auth"
	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
	"github.com/chateshreyas231/dineasy-sub000/internal/scheduler"
	"github.com/chateshreyas231/dineasy-sub000/internal/store"
)

// Server is the JSON surface over the aggregation engine and the monitor
// scheduler. All framing concerns live here; the core packages only see
// value objects.
type Server struct {
	Auth     *auth.Store
	Engine   *aggregator.Engine
	Monitors *scheduler.Service
	Bookings *store.Bookings
	Log      zerolog.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireAuth)
		r.Post("/api/search", s.handleSearch)
		r.Post("/api/monitors", s.handleMonitorCreate)
		r.Get("/api/monitors", s.handleMonitorList)
		r.Delete("/api/monitors/{id}", s.handleMonitorStop)
		r.Get("/api/bookings", s.handleBookingList)
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	uid, err := s.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := s.Auth.SetSession(w, r, uid); err != nil {
		writeError(w, http.StatusInternalServerError, "session encode failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": uid})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.Auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	PartySize int      `json:"partySize"`
	DateTime  string   `json:"dateTime"`
	Cuisine   string   `json:"cuisine,omitempty"`
	Location  string   `json:"location"`
	Occasion  string   `json:"occasion,omitempty"`
	Vibes     []string `json:"vibes,omitempty"`
}

type optionResponse struct {
	Name         string   `json:"name"`
	Platform     string   `json:"platform"`
	DateTime     string   `json:"dateTime"`
	PartySize    int      `json:"partySize"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Location     string   `json:"location,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	VibeTags     []string `json:"vibeTags,omitempty"`
	BookingLink  string   `json:"bookingLink,omitempty"`
	RestaurantID string   `json:"restaurantId,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	when, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "dateTime must be RFC3339")
		return
	}
	if req.PartySize < 1 {
		writeError(w, http.StatusBadRequest, "partySize must be >= 1")
		return
	}

	intent := search.QueryIntent{
		PartySize: req.PartySize,
		DateTime:  when,
		Cuisine:   req.Cuisine,
		Location:  req.Location,
		Occasion:  req.Occasion,
		Vibes:     req.Vibes,
	}
	opts := s.Engine.SearchReservations(r.Context(), intent)

	out := make([]optionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionResponse{
			Name:         o.Name,
			Platform:     o.Platform,
			DateTime:     o.DateTime.Format(time.RFC3339),
			PartySize:    o.PartySize,
			Cuisine:      o.Cuisine,
			Location:     o.Location,
			Rating:       o.Rating,
			VibeTags:     o.VibeTags,
			BookingLink:  o.BookingLink,
			RestaurantID: o.RestaurantID,
			PriceRange:   o.PriceRange,
			Description:  o.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

type monitorCreateRequest struct {
	PlaceID         string `json:"placeId"`
	TimeWindowStart string `json:"timeWindowStart"`
	TimeWindowEnd   string `json:"timeWindowEnd"`
	PartySize       int    `json:"partySize"`
}

type monitorResponse struct {
	ID              string `json:"id"`
	PlaceID         string `json:"placeId"`
	TimeWindowStart string `json:"timeWindowStart"`
	TimeWindowEnd   string `json:"timeWindowEnd"`
	PartySize       int    `json:"partySize"`
	Status          string `json:"status"`
	LastCheckedAt   string `json:"lastCheckedAt,omitempty"`
}

func toMonitorResponse(j monitor.Job) monitorResponse {
	resp := monitorResponse{
		ID:              j.ID,
		PlaceID:         j.PlaceID,
		TimeWindowStart: j.TimeWindowStart.Format(time.RFC3339),
		TimeWindowEnd:   j.TimeWindowEnd.Format(time.RFC3339),
		PartySize:       j.PartySize,
		Status:          string(j.Status),
	}
	if j.LastCheckedAt != nil {
		resp.LastCheckedAt = j.LastCheckedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleMonitorCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req monitorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	start, err := time.Parse(time.RFC3339, req.TimeWindowStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "timeWindowStart must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, req.TimeWindowEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "timeWindowEnd must be RFC3339")
		return
	}

	j, err := s.Monitors.StartMonitorJob(r.Context(), monitor.Job{
		UserID:          uid,
		PlaceID:         req.PlaceID,
		TimeWindowStart: start,
		TimeWindowEnd:   end,
		PartySize:       req.PartySize,
	})
	switch {
	case errors.Is(err, scheduler.ErrMonitorExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.Log.Error().Err(err).Msg("monitor create failed")
		writeError(w, http.StatusInternalServerError, "could not start monitor")
		return
	}
	writeJSON(w, http.StatusCreated, toMonitorResponse(j))
}

func (s *Server) handleMonitorList(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	jobs, err := s.Monitors.ListMonitors(r.Context(), uid)
	if err != nil {
		s.Log.Error().Err(err).Msg("monitor list failed")
		writeError(w, http.StatusInternalServerError, "could not list monitors")
		return
	}
	out := make([]monitorResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toMonitorResponse(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"monitors": out})
}

func (s *Server) handleMonitorStop(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	j, err := s.Monitors.GetMonitor(r.Context(), id)
	if db.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.Log.Error().Err(err).Msg("monitor read failed")
		writeError(w, http.StatusInternalServerError, "could not stop monitor")
		return
	}
	if j.UserID != uid {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}

	if err := s.Monitors.StopMonitorJob(r.Context(), id); err != nil {
		s.Log.Error().Err(err).Msg("monitor stop failed")
		writeError(w, http.StatusInternalServerError, "could not stop monitor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBookingList(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	bookings, err := s.Bookings.ListBookingsByUser(r.Context(), uid)
	if err != nil {
		s.Log.Error().Err(err).Msg("booking list failed")
		writeError(w, http.StatusInternalServerError, "could not list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("http server listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
