package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/render"
)

// Engine is the slice of the sync pipeline the surface needs.
type Engine interface {
	Snapshot() model.Snapshot
	Refresh(ctx context.Context) error
}

// ProgressOps covers the paywall acknowledgement path.
type ProgressOps interface {
	AcknowledgePaywall(ctx context.Context) error
}

// EntitlementOps receives billing collaborator updates.
type EntitlementOps interface {
	SetPremium(ctx context.Context, active bool) error
}

// Handler serves the local render surface and collaborator endpoints.
type Handler struct {
	engine      Engine
	progress    ProgressOps
	entitlement EntitlementOps
	profiles    model.ProfileStore
	profileID   uuid.UUID
	bus         *render.Bus
	logger      *logger.Logger
}

func NewHandler(
	engine Engine,
	progress ProgressOps,
	entitlement EntitlementOps,
	profiles model.ProfileStore,
	profileID uuid.UUID,
	bus *render.Bus,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		engine:      engine,
		progress:    progress,
		entitlement: entitlement,
		profiles:    profiles,
		profileID:   profileID,
		bus:         bus,
		logger:      logger,
	}
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// StreamEvents pushes snapshots over SSE until the client goes away.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshots, cancel := h.bus.Subscribe()
	defer cancel()

	// Open with the current state so the surface renders immediately.
	h.writeEvent(w, flusher, h.engine.Snapshot())

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			h.writeEvent(w, flusher, snap)

		case <-r.Context().Done():
			return
		}
	}
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		h.logger.Error("HTTP: refresh failed", "error", err.Error())
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) AcknowledgePaywall(w http.ResponseWriter, r *http.Request) {
	if err := h.progress.AcknowledgePaywall(r.Context()); err != nil {
		h.logger.Error("HTTP: paywall ack failed", "error", err.Error())
		http.Error(w, "paywall ack failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type entitlementRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	var req entitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.entitlement.SetPremium(r.Context(), req.Active); err != nil {
		h.logger.Error("HTTP: entitlement update failed", "error", err.Error())
		http.Error(w, "entitlement update failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.SetOnboardingComplete(r.Context(), h.profileID); err != nil {
		h.logger.Error("HTTP: onboarding completion failed", "error", err.Error())
		http.Error(w, "onboarding completion failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("HTTP: failed to encode response", "error", err.Error())
	}
}

func (h *Handler) writeEvent(w http.ResponseWriter, flusher http.Flusher, snap model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("HTTP: failed to encode snapshot", "error", err.Error())
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}
