package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sockdemon/gutterbot/internal/api/middleware"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/services/cycle"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
	"github.com/sockdemon/gutterbot/internal/storage"
)

// RouterConfig holds dependencies for the admin API router
type RouterConfig struct {
	Logger      *slog.Logger
	Store       storage.PlayerStore
	Coordinator *cycle.Coordinator
	Registry    *mobs.Registry
}

// NewRouter creates the read-only admin/observability router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := &adminHandler{
		logger:      cfg.Logger,
		store:       cfg.Store,
		coordinator: cfg.Coordinator,
		registry:    cfg.Registry,
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/status", h.status).Methods(http.MethodGet)
	api.HandleFunc("/mobs", h.mobs).Methods(http.MethodGet)
	api.HandleFunc("/players", h.players).Methods(http.MethodGet)

	return r
}

type adminHandler struct {
	logger      *slog.Logger
	store       storage.PlayerStore
	coordinator *cycle.Coordinator
	registry    *mobs.Registry
}

func (h *adminHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Description string           `json:"description"`
	State       model.CycleState `json:"state"`
}

func (h *adminHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Description: h.coordinator.GetStatus(),
		State:       h.coordinator.GetState(),
	})
}

func (h *adminHandler) mobs(w http.ResponseWriter, r *http.Request) {
	listings := []model.MobListing{}
	for listing := range h.registry.ListActive() {
		listings = append(listings, listing)
	}
	writeJSON(w, http.StatusOK, listings)
}

type playerResponse struct {
	Handle    string `json:"handle"`
	HP        int    `json:"hp"`
	Scum      int    `json:"scum"`
	MobTarget string `json:"mob_target,omitempty"`
	MobKills  int    `json:"mob_kills,omitempty"`
}

func (h *adminHandler) players(w http.ResponseWriter, r *http.Request) {
	players, err := h.store.ListActivePlayers(r.Context())
	if err != nil {
		h.logger.Error("failed to list active players", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "try again later"})
		return
	}

	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, playerResponse{
			Handle:    p.Handle,
			HP:        p.HP,
			Scum:      p.Scum,
			MobTarget: p.MobTarget,
			MobKills:  p.MobKills,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
