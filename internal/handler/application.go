package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/push"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

type ApplicationHandler struct {
	applicationStore *store.ApplicationStore
	petStore         *store.PetStore
	hub              *websocket.Hub
	notifier         *push.Scheduler
	logger           *slog.Logger
}

func NewApplicationHandler(as *store.ApplicationStore, ps *store.PetStore, hub *websocket.Hub, notifier *push.Scheduler, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applicationStore: as,
		petStore:         ps,
		hub:              hub,
		notifier:         notifier,
		logger:           logger,
	}
}

type applicationRequest struct {
	PetID   int64  `json:"pet_id"`
	Message string `json:"message"`
}

// Create handles POST /api/applications. A user may have at most one
// pending application per pet, and only available pets accept new
// applications.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	pet, err := h.petStore.GetByID(req.PetID)
	if err != nil {
		h.logger.Error("get pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create application"})
		return
	}
	if pet == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pet not found"})
		return
	}
	if pet.Status == model.PetAdopted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "pet has already been adopted"})
		return
	}

	pending, err := h.applicationStore.HasPendingForPet(req.PetID, userID)
	if err != nil {
		h.logger.Error("check pending application", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create application"})
		return
	}
	if pending {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "you already have a pending application for this pet"})
		return
	}

	app, err := h.applicationStore.Create(req.PetID, userID, req.Message)
	if err != nil {
		h.logger.Error("create application", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create application"})
		return
	}

	if pet.Status == model.PetAvailable {
		if err := h.petStore.SetStatus(pet.ID, model.PetPending); err != nil {
			h.logger.Error("set pet pending", "error", err)
		} else {
			h.hub.Broadcast(websocket.NewMessage("pet", "updated", pet.ID, nil))
		}
	}

	writeJSON(w, http.StatusCreated, app)
}

// ListMine handles GET /api/applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applicationStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list applications", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list applications"})
		return
	}
	if apps == nil {
		apps = []model.AdoptionApplication{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// Get handles GET /api/applications/{id}. Applicants see their own
// applications; staff see all of them.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	app, err := h.applicationStore.GetByID(id)
	if err != nil {
		h.logger.Error("get application", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get application"})
		return
	}
	if app == nil || (app.UserID != auth.UserID(r.Context()) && !auth.IsStaff(r.Context())) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// ListPending handles GET /api/applications/pending (staff only)
func (h *ApplicationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applicationStore.ListPending()
	if err != nil {
		h.logger.Error("list pending applications", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list applications"})
		return
	}
	if apps == nil {
		apps = []model.AdoptionApplication{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// Approve handles POST /api/applications/{id}/approve (staff only).
// Approving marks the pet adopted.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.ApplicationApproved)
}

// Reject handles POST /api/applications/{id}/reject (staff only).
// Rejecting returns the pet to available if no other application holds it.
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.ApplicationRejected)
}

func (h *ApplicationHandler) decide(w http.ResponseWriter, r *http.Request, status model.ApplicationStatus) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	app, err := h.applicationStore.GetByID(id)
	if err != nil {
		h.logger.Error("get application", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get application"})
		return
	}
	if app == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
		return
	}
	if app.Status != model.ApplicationPending {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "application has already been decided"})
		return
	}

	updated, err := h.applicationStore.SetStatus(id, status)
	if err != nil {
		h.logger.Error("set application status", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update application"})
		return
	}

	petName := ""
	if pet, err := h.petStore.GetByID(app.PetID); err == nil && pet != nil {
		petName = pet.Name
	}

	switch status {
	case model.ApplicationApproved:
		if err := h.petStore.SetStatus(app.PetID, model.PetAdopted); err != nil {
			h.logger.Error("mark pet adopted", "error", err)
		}
	case model.ApplicationRejected:
		h.releasePetIfUnclaimed(app.PetID)
	}
	h.hub.Broadcast(websocket.NewMessage("pet", "updated", app.PetID, nil))

	h.hub.SendToUser(app.UserID, websocket.NewMessage("application", string(status), app.ID, nil))
	if h.notifier != nil {
		go h.notifier.SendApplicationUpdate(app.UserID, petName, status)
	}

	writeJSON(w, http.StatusOK, updated)
}

// releasePetIfUnclaimed returns a pet to available when no pending
// applications remain for it.
func (h *ApplicationHandler) releasePetIfUnclaimed(petID int64) {
	pet, err := h.petStore.GetByID(petID)
	if err != nil || pet == nil || pet.Status != model.PetPending {
		return
	}

	apps, err := h.applicationStore.ListByPet(petID)
	if err != nil {
		h.logger.Error("list applications for pet", "error", err)
		return
	}
	for _, a := range apps {
		if a.Status == model.ApplicationPending {
			return
		}
	}
	if err := h.petStore.SetStatus(petID, model.PetAvailable); err != nil {
		h.logger.Error("release pet", "error", err)
	}
}
