package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
	"github.com/mesabjorn/MoneyPrinter/internal/pipeline"
)

// Generator runs the full video pipeline for one request.
// Satisfied by *pipeline.Pipeline; narrowed to an interface so handler
// tests can substitute a fake.
type Generator interface {
	Run(ctx context.Context, cfg models.ProjectConfig) (*pipeline.Result, error)
}

type Handler struct {
	generator Generator

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewHandler(generator Generator) *Handler {
	return &Handler{
		generator: generator,
		active:    make(map[string]context.CancelFunc),
	}
}

// Generate handles POST /api/generate. The pipeline runs synchronously
// inside the request; /api/cancel can cancel it while it is in flight.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.VideoSubject == "" {
		respondError(w, http.StatusBadRequest, "videoSubject is required")
		return
	}

	cfg := models.NewProjectConfig(req)

	ctx, cancel := context.WithCancel(r.Context())
	id := h.register(cancel)
	defer h.unregister(id)

	result, err := h.generator.Run(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			respondError(w, http.StatusInternalServerError, "Video generation was cancelled")
			return
		}

		switch pipeline.KindOf(err) {
		case pipeline.KindNoFootage:
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case pipeline.KindStorage:
			respondError(w, http.StatusInternalServerError, err.Error())
		default:
			respondError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, models.GenerateResponse{
		Status:  "success",
		Message: fmt.Sprintf("Video generated for project %s", result.ProjectID),
		Data:    result.OutputPath,
	})
}

// Cancel handles POST /api/cancel. Best-effort: cancels every generation
// currently in flight and always reports success.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	for id, cancel := range h.active {
		cancel()
		delete(h.active, id)
	}
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, models.GenerateResponse{
		Status:  "success",
		Message: "Cancelled video generation",
	})
}

func (h *Handler) register(cancel context.CancelFunc) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.active[id] = cancel
	h.mu.Unlock()
	return id
}

func (h *Handler) unregister(id string) {
	h.mu.Lock()
	if cancel, ok := h.active[id]; ok {
		cancel()
		delete(h.active, id)
	}
	h.mu.Unlock()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Status: "error", Message: message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
