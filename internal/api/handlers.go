// Package api exposes the HTTP handlers of the carbontrackr backend.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/siyabuilds/carbontrackr-backend/internal/auth"
	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
)

// Handler coordinates HTTP requests with the analytics engine.
type Handler struct {
	service *domain.Service
	users   domain.UserRepository
	authCfg auth.Config
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, users domain.UserRepository, authCfg auth.Config) *Handler {
	return &Handler{service: service, users: users, authCfg: authCfg}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/auth/register", h.register)
	mux.HandleFunc("/v1/auth/login", h.login)
	mux.HandleFunc("/v1/auth/validate", h.validate)
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/dashboard", h.dashboard)
	mux.HandleFunc("/v1/summaries", h.listSummaries)
	mux.HandleFunc("/v1/summaries/", h.summaryByPath)
	mux.HandleFunc("/v1/leaderboard", h.leaderboard)
	mux.HandleFunc("/v1/targets", h.targets)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.LogActivity(r.Context(), domain.LogActivityInput{
		UserID:      claims.UserID,
		Category:    category,
		Label:       req.Label,
		EmissionsKg: req.EmissionsKg,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activities, err := h.service.ListActivities(r.Context(), claims.UserID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if err := h.service.DeleteActivity(r.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	totals, err := h.service.GetDashboardAggregates(r.Context(), claims.UserID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCategoryTotalsView(totals))
}

func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	summaries, err := h.service.ListSummaries(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]SummaryView, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, toSummaryView(s))
	}
	writeJSON(w, http.StatusOK, ListSummariesResponse{Items: items})
}

// summaryByPath multiplexes /v1/summaries/current, /v1/summaries/generate,
// and /v1/summaries/{weekStart}.
func (h *Handler) summaryByPath(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	suffix := strings.TrimPrefix(r.URL.Path, "/v1/summaries/")
	switch suffix {
	case "current":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.currentWeek(w, r, claims.UserID)
	case "generate":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.generate(w, r, claims.UserID)
	default:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.summaryByWeek(w, r, claims.UserID, suffix)
	}
}

func (h *Handler) currentWeek(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := h.service.GetCurrentWeekView(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(view))
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, userID string) {
	summary, err := h.service.GeneratePreviousWeekSummary(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidWeek):
			writeError(w, http.StatusBadRequest, "invalid_week", "cannot generate a summary for a future week")
		case errors.Is(err, domain.ErrSummaryExists):
			writeError(w, http.StatusConflict, "already_exists", "summary already generated for this week")
		case errors.Is(err, domain.ErrNoActivities):
			writeError(w, http.StatusUnprocessableEntity, "no_activities", "no activities recorded for this week")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, toSummaryView(summary))
}

func (h *Handler) summaryByWeek(w http.ResponseWriter, r *http.Request, userID, rawWeek string) {
	weekStart, err := time.ParseInLocation("2006-01-02", rawWeek, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "week start must be a YYYY-MM-DD date")
		return
	}
	if weekStart.Weekday() != time.Monday {
		writeError(w, http.StatusBadRequest, "validation_failed", "week start must be a Monday")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no summary generated for this week")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(summary))
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := auth.FromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var window domain.TimeWindow
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "weeks must be a positive integer")
			return
		}
		window.Start = domain.WeekStart(time.Now()).AddDate(0, 0, -7*(weeks-1))
	}

	entries, err := h.service.GetLeaderboard(r.Context(), window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]LeaderboardEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, LeaderboardEntryView{
			UserID:        e.UserID,
			Username:      e.Username,
			FullName:      e.FullName,
			TotalKg:       e.TotalKg,
			ActivityCount: e.ActivityCount,
			Rank:          e.Rank,
		})
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Items: items})
}

func (h *Handler) targets(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		target, err := h.service.GetReductionTarget(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "not_found", "no reduction target configured")
			return
		}
		writeJSON(w, http.StatusOK, toTargetView(*target))
	case http.MethodPut:
		var req SetTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		target, err := h.service.SetReductionTarget(r.Context(), claims.UserID, domain.TargetType(req.Type), req.Value)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toTargetView(*target))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// windowFromQuery parses optional from/to parameters into a half-open window.
func windowFromQuery(r *http.Request) (domain.TimeWindow, error) {
	var window domain.TimeWindow
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.TimeWindow{}, errors.New("from must be an RFC3339 timestamp")
		}
		window.Start = parsed.UTC()
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.TimeWindow{}, errors.New("to must be an RFC3339 timestamp")
		}
		window.End = parsed.UTC()
	}
	if !window.Start.IsZero() && !window.End.IsZero() && window.End.Before(window.Start) {
		return domain.TimeWindow{}, errors.New("to must not precede from")
	}
	return window, nil
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
