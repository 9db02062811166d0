package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/recurrence"
	"github.com/pawhaven/pawhaven/internal/schedule"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

type ReminderHandler struct {
	reminderStore *store.ReminderStore
	petStore      *store.PetStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewReminderHandler(rs *store.ReminderStore, ps *store.PetStore, hub *websocket.Hub, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminderStore: rs, petStore: ps, hub: hub, logger: logger}
}

type reminderRequest struct {
	PetID       int64  `json:"pet_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TimeOfDay   string `json:"time_of_day"`
	Priority    string `json:"priority"`
}

func (req *reminderRequest) toModel(userID int64) (model.Reminder, error) {
	rem := model.Reminder{
		UserID:      userID,
		PetID:       req.PetID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TimeOfDay:   req.TimeOfDay,
		Enabled:     true,
	}

	var err error
	if rem.Type, err = model.ParseReminderType(req.Type); err != nil {
		return rem, err
	}
	if rem.Frequency, err = model.ParseFrequency(req.Frequency); err != nil {
		return rem, err
	}
	if req.Priority == "" {
		rem.Priority = model.PriorityMedium
	} else if rem.Priority, err = model.ParsePriority(req.Priority); err != nil {
		return rem, err
	}

	if rem.StartDate, err = model.ParseDate(req.StartDate); err != nil {
		return rem, errors.New("start_date must be YYYY-MM-DD")
	}
	if req.EndDate != "" {
		end, err := model.ParseDate(req.EndDate)
		if err != nil {
			return rem, errors.New("end_date must be YYYY-MM-DD")
		}
		rem.EndDate = &end
	}

	if err := schedule.Validate(rem); err != nil {
		return rem, err
	}
	return rem, nil
}

// List handles GET /api/reminders
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminderStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list reminders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// Get handles GET /api/reminders/{id}
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.ownedReminder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// Create handles POST /api/reminders
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rem, err := req.toModel(userID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pet, err := h.petStore.GetByID(rem.PetID)
	if err != nil {
		h.logger.Error("get pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create reminder"})
		return
	}
	if pet == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pet not found"})
		return
	}

	created, err := h.reminderStore.Create(rem)
	if err != nil {
		h.logger.Error("create reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create reminder"})
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("reminder", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/reminders/{id}
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedReminder(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rem, err := req.toModel(existing.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rem.ID = existing.ID
	rem.Enabled = existing.Enabled
	rem.CompletedDates = existing.CompletedDates

	// Changing the recurrence must not strand completions on dates that
	// are no longer occurrences.
	if err := schedule.Validate(rem); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.reminderStore.Update(rem)
	if err != nil {
		h.logger.Error("update reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update reminder"})
		return
	}

	h.hub.SendToUser(existing.UserID, websocket.NewMessage("reminder", "updated", rem.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/reminders/{id}
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.ownedReminder(w, r)
	if !ok {
		return
	}

	if err := h.reminderStore.Delete(rem.ID); err != nil {
		h.logger.Error("delete reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete reminder"})
		return
	}

	h.hub.SendToUser(rem.UserID, websocket.NewMessage("reminder", "deleted", rem.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	Date string `json:"date"`
}

// ToggleCompletion handles POST /api/reminders/{id}/toggle. The date
// defaults to today when omitted. Toggling a date the reminder is not
// scheduled for is rejected.
func (h *ReminderHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.ownedReminder(w, r)
	if !ok {
		return
	}

	// An empty body means toggle for today
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	date := recurrence.DateOnly(time.Now().UTC())
	if req.Date != "" {
		var err error
		if date, err = model.ParseDate(req.Date); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	updated, nowCompleted, err := schedule.ToggleCompletion(*rem, date)
	if err != nil {
		if errors.Is(err, schedule.ErrNotDue) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "reminder is not scheduled for that date"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if nowCompleted {
		err = h.reminderStore.MarkCompleted(rem.ID, date)
	} else {
		err = h.reminderStore.UnmarkCompleted(rem.ID, date)
	}
	if err != nil {
		h.logger.Error("toggle completion", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record completion"})
		return
	}

	action := "uncompleted"
	if nowCompleted {
		action = "completed"
	}
	h.hub.SendToUser(rem.UserID, websocket.NewMessage("reminder", action, rem.ID, map[string]any{
		"date": date.Format(model.DateFormat),
	}))
	writeJSON(w, http.StatusOK, updated)
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabled handles PATCH /api/reminders/{id}/enabled. Disabling keeps
// the completion history intact.
func (h *ReminderHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.ownedReminder(w, r)
	if !ok {
		return
	}

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.reminderStore.SetEnabled(rem.ID, req.Enabled); err != nil {
		h.logger.Error("set reminder enabled", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update reminder"})
		return
	}

	updated := schedule.SetEnabled(*rem, req.Enabled)
	h.hub.SendToUser(rem.UserID, websocket.NewMessage("reminder", "updated", rem.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// ownedReminder loads the reminder from the id path parameter and checks
// it belongs to the requesting user. It writes the error response itself
// when the lookup fails.
func (h *ReminderHandler) ownedReminder(w http.ResponseWriter, r *http.Request) (*model.Reminder, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	rem, err := h.reminderStore.GetByID(id)
	if err != nil {
		h.logger.Error("get reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get reminder"})
		return nil, false
	}
	if rem == nil || rem.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reminder not found"})
		return nil, false
	}
	return rem, true
}
