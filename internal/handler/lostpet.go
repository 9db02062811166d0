package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

type LostPetHandler struct {
	lostPetStore *store.LostPetStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewLostPetHandler(ls *store.LostPetStore, hub *websocket.Hub, logger *slog.Logger) *LostPetHandler {
	return &LostPetHandler{lostPetStore: ls, hub: hub, logger: logger}
}

type lostPetRequest struct {
	PetName          string `json:"pet_name"`
	Species          string `json:"species"`
	Description      string `json:"description"`
	LastSeenLocation string `json:"last_seen_location"`
	LastSeenAt       string `json:"last_seen_at"`
	PhotoURL         string `json:"photo_url"`
}

func (req *lostPetRequest) toModel(userID int64) (model.LostPetReport, error) {
	report := model.LostPetReport{
		UserID:           userID,
		PetName:          strings.TrimSpace(req.PetName),
		Species:          strings.TrimSpace(req.Species),
		Description:      req.Description,
		LastSeenLocation: strings.TrimSpace(req.LastSeenLocation),
		PhotoURL:         req.PhotoURL,
	}
	if report.PetName == "" {
		return report, errors.New("pet_name is required")
	}
	if report.LastSeenLocation == "" {
		return report, errors.New("last_seen_location is required")
	}

	var err error
	report.LastSeenAt, err = time.Parse(time.RFC3339, req.LastSeenAt)
	if err != nil {
		return report, errors.New("last_seen_at must be an RFC 3339 timestamp")
	}
	return report, nil
}

// List handles GET /api/lost-pets. Open reports come first, newest
// sightings within each group.
func (h *LostPetHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.lostPetStore.List()
	if err != nil {
		h.logger.Error("list lost pet reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reports"})
		return
	}
	if reports == nil {
		reports = []model.LostPetReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// Get handles GET /api/lost-pets/{id}
func (h *LostPetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	report, err := h.lostPetStore.GetByID(id)
	if err != nil {
		h.logger.Error("get lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
		return
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Create handles POST /api/lost-pets
func (h *LostPetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lostPetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	report, err := req.toModel(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	created, err := h.lostPetStore.Create(report)
	if err != nil {
		h.logger.Error("create lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("lost_pet", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/lost-pets/{id}. Only the reporter may update.
func (h *LostPetHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedReport(w, r)
	if !ok {
		return
	}

	var req lostPetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	report, err := req.toModel(existing.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	report.ID = existing.ID

	updated, err := h.lostPetStore.Update(report)
	if err != nil {
		h.logger.Error("update lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("lost_pet", "updated", report.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Resolve handles POST /api/lost-pets/{id}/resolve. Marks the pet found.
func (h *LostPetHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedReport(w, r)
	if !ok {
		return
	}
	if existing.Resolved() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "report is already resolved"})
		return
	}

	updated, err := h.lostPetStore.Resolve(existing.ID, time.Now().UTC())
	if err != nil {
		h.logger.Error("resolve lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("lost_pet", "resolved", existing.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/lost-pets/{id}. The reporter or staff may delete.
func (h *LostPetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	report, err := h.lostPetStore.GetByID(id)
	if err != nil {
		h.logger.Error("get lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
		return
	}
	if report == nil || (report.UserID != auth.UserID(r.Context()) && !auth.IsStaff(r.Context())) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}

	if err := h.lostPetStore.Delete(id); err != nil {
		h.logger.Error("delete lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("lost_pet", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *LostPetHandler) ownedReport(w http.ResponseWriter, r *http.Request) (*model.LostPetReport, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	report, err := h.lostPetStore.GetByID(id)
	if err != nil {
		h.logger.Error("get lost pet report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
		return nil, false
	}
	if report == nil || report.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return nil, false
	}
	return report, true
}
