package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/valuehound/valuehound/internal/monitor"
	"github.com/valuehound/valuehound/internal/movement"
	"github.com/valuehound/valuehound/internal/storage"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db       *storage.Postgres
	tracker  *movement.Tracker
	store    *movement.Store
	monitor  *monitor.Monitor
	steamPct float64
}

// NewHandler creates a new handler with dependencies
func NewHandler(db *storage.Postgres, tracker *movement.Tracker, store *movement.Store, mon *monitor.Monitor, steamPct float64) *Handler {
	return &Handler{
		db:       db,
		tracker:  tracker,
		store:    store,
		monitor:  mon,
		steamPct: steamPct,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "valuehound",
	})
}

// GetStatus returns the last scan cycle's view
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.monitor.Status())
}

// GetPendingAlerts lists alerts still awaiting settlement
func (h *Handler) GetPendingAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	alerts, err := h.db.PendingAlerts(ctx, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve pending alerts", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetUserStats returns one user's settled performance
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	stats, err := h.db.UserStats(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve user stats", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// GetMovement returns the in-memory snapshot history for an event
func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required", nil)
		return
	}

	snapshots := h.store.Snapshots(eventID)
	steamMoves := h.tracker.SteamMoves(eventID, h.steamPct)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_id":    eventID,
		"snapshots":   snapshots,
		"count":       len(snapshots),
		"steam_moves": steamMoves,
	})
}

// GetMovementSummary returns the line movement summary for one selection
// Query params: selection (required)
func (h *Handler) GetMovementSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	eventID := chi.URLParam(r, "eventID")
	selection := r.URL.Query().Get("selection")
	if eventID == "" || selection == "" {
		respondError(w, http.StatusBadRequest, "event_id and selection are required", nil)
		return
	}

	summary := h.tracker.Summary(ctx, eventID, selection)
	if summary == nil {
		respondError(w, http.StatusNotFound, "not enough snapshots for this selection", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"timing":  h.tracker.BestOddsTiming(ctx, eventID, selection),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("error encoding response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err != nil {
		fmt.Printf("error: %s - %v\n", message, err)
	}

	if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	}); encErr != nil {
		fmt.Printf("error encoding error response: %v\n", encErr)
	}
}
