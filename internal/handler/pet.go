package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

type PetHandler struct {
	petStore *store.PetStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewPetHandler(ps *store.PetStore, hub *websocket.Hub, logger *slog.Logger) *PetHandler {
	return &PetHandler{petStore: ps, hub: hub, logger: logger}
}

// List handles GET /api/pets. An optional status query parameter filters
// by adoption status.
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	var status model.PetStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := model.ParsePetStatus(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		status = parsed
	}

	pets, err := h.petStore.List(status)
	if err != nil {
		h.logger.Error("list pets", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list pets"})
		return
	}
	if pets == nil {
		pets = []model.Pet{}
	}
	writeJSON(w, http.StatusOK, pets)
}

// Get handles GET /api/pets/{id}
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	pet, err := h.petStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get pet"})
		return
	}
	if pet == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pet not found"})
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

type petRequest struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Sex         string `json:"sex"`
	AgeMonths   int    `json:"age_months"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
	Status      string `json:"status"`
}

func (req *petRequest) toModel() (model.Pet, error) {
	p := model.Pet{
		Name:        strings.TrimSpace(req.Name),
		Species:     strings.TrimSpace(req.Species),
		Breed:       strings.TrimSpace(req.Breed),
		Sex:         req.Sex,
		AgeMonths:   req.AgeMonths,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Status:      model.PetAvailable,
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if p.Species == "" {
		return p, errors.New("species is required")
	}
	if req.AgeMonths < 0 {
		return p, errors.New("age_months must not be negative")
	}
	if req.Status != "" {
		status, err := model.ParsePetStatus(req.Status)
		if err != nil {
			return p, err
		}
		p.Status = status
	}
	return p, nil
}

// Create handles POST /api/pets (staff only)
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	p, err := req.toModel()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	created, err := h.petStore.Create(p)
	if err != nil {
		h.logger.Error("create pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create pet"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("pet", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/pets/{id} (staff only)
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.petStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get pet"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pet not found"})
		return
	}

	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	p, err := req.toModel()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p.ID = id

	updated, err := h.petStore.Update(p)
	if err != nil {
		h.logger.Error("update pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update pet"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("pet", "updated", id, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/pets/{id} (staff only)
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.petStore.Delete(id); err != nil {
		h.logger.Error("delete pet", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete pet"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("pet", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
