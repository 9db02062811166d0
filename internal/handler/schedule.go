package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/recurrence"
	"github.com/pawhaven/pawhaven/internal/schedule"
	"github.com/pawhaven/pawhaven/internal/store"
)

type ScheduleHandler struct {
	reminderStore *store.ReminderStore
	logger        *slog.Logger
}

func NewScheduleHandler(rs *store.ReminderStore, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{reminderStore: rs, logger: logger}
}

// Get handles GET /api/schedule. Query parameters:
//
//	view: day, week, or month (default day)
//	date: anchor date YYYY-MM-DD (default today)
//	type: filter to one reminder type
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	window, err := schedule.ParseWindow(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	anchor := recurrence.DateOnly(time.Now().UTC())
	if d := r.URL.Query().Get("date"); d != "" {
		if anchor, err = model.ParseDate(d); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	var typeFilter model.ReminderType
	if t := r.URL.Query().Get("type"); t != "" {
		if typeFilter, err = model.ParseReminderType(t); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	reminders, err := h.reminderStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list reminders for schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build schedule"})
		return
	}

	days := schedule.Generate(reminders, anchor, window, typeFilter)
	if days == nil {
		days = []schedule.Day{}
	}
	writeJSON(w, http.StatusOK, days)
}

// Stats handles GET /api/schedule/stats. Returns total and completed
// counts for a single date (default today).
func (h *ScheduleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	date := recurrence.DateOnly(time.Now().UTC())
	if d := r.URL.Query().Get("date"); d != "" {
		var err error
		if date, err = model.ParseDate(d); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	reminders, err := h.reminderStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list reminders for stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
		return
	}

	days := schedule.Generate(reminders, date, schedule.WindowDay, "")
	writeJSON(w, http.StatusOK, schedule.StatsForDate(days, date))
}
