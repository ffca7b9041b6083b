package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/drtz/PiThermServer/internal/sensor"
	"github.com/drtz/PiThermServer/internal/services/query"
	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

type Server struct {
	Log           *zap.Logger
	Sensor        sensor.Source
	Query         *query.Usecase
	Notifications notification.Repo
	DefaultNumObs int
}

type nowResponse struct {
	TemperatureRecord []reading.Reading `json:"temperature_record"`
}

type queryResponse struct {
	TemperatureRecord [][]reading.Reading `json:"temperature_record"`
}

type notificationsResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /temperature_now.json", s.temperatureNow)
	mux.HandleFunc("GET /temperature_query.json", s.temperatureQuery)
	mux.HandleFunc("GET /notifications.json", s.notifications)
	return mux
}

func (s *Server) temperatureNow(w http.ResponseWriter, r *http.Request) {
	rd, err := s.Sensor.Read(r.Context())
	if err != nil {
		obs.WithTrace(r.Context(), s.Log).Warn("live sensor read failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "sensor unavailable")
		return
	}
	writeJSON(w, http.StatusOK, nowResponse{TemperatureRecord: []reading.Reading{rd}})
}

func (s *Server) temperatureQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	numObs := s.DefaultNumObs
	if raw := q.Get("num_obs"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			numObs = n
		}
	}
	startDate := q.Get("start_date")

	obs.WithTrace(r.Context(), s.Log).Debug("temperature query",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("num_obs", numObs),
		zap.String("start_date", startDate),
	)

	rows, err := s.Query.QueryTemperatures(r.Context(), numObs, startDate)
	if err != nil {
		obs.WithTrace(r.Context(), s.Log).Error("temperature query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{TemperatureRecord: [][]reading.Reading{rows}})
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	list, err := s.Notifications.ListRecent(r.Context(), limit)
	if err != nil {
		obs.WithTrace(r.Context(), s.Log).Error("list notifications failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: list})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
