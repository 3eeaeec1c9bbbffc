package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"ticker/internal/adapter/surface"
	"ticker/internal/domain"
	"ticker/internal/worker"

	"github.com/samber/lo"
)

type headlinesGetter interface {
	GetHeadlines(limit int) []domain.Headline
}

type displayController interface {
	DisplayStatus() domain.DisplayStatus
	UpdateDisplay(settings domain.DisplaySettings) error
}

type fetchController interface {
	Trigger() bool
	Status() worker.Status
}

type frameGetter interface {
	Snapshot() surface.Frame
}

type Handler struct {
	log       *slog.Logger
	headlines headlinesGetter
	display   displayController
	fetcher   fetchController
	frames    frameGetter
}

// NewHandler создает обработчики API статуса. frames может быть nil,
// тогда /api/frame отвечает 404.
func NewHandler(log *slog.Logger, headlines headlinesGetter, display displayController, fetcher fetchController, frames frameGetter) *Handler {
	return &Handler{
		log:       log,
		headlines: headlines,
		display:   display,
		fetcher:   fetcher,
		frames:    frames,
	}
}

type headlineResponse struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

type statusResponse struct {
	Display domain.DisplayStatus `json:"display"`
	Feeds   worker.Status        `json:"feeds"`
}

// getHeadlines - хендлер для эндпоинта GET /api/headlines
func (h *Handler) getHeadlines(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getHeadlines"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}

	items := h.headlines.GetHeadlines(limit)
	resp := lo.Map(items, func(it domain.Headline, _ int) headlineResponse {
		return headlineResponse{Source: it.Source, Title: it.Text, Text: it.String()}
	})
	respondWithJSON(w, http.StatusOK, resp)
}

// getStatus - хендлер для эндпоинта GET /api/status
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, statusResponse{
		Display: h.display.DisplayStatus(),
		Feeds:   h.fetcher.Status(),
	})
}

// getFrame - хендлер для эндпоинта GET /api/frame
func (h *Handler) getFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if h.frames == nil {
		respondWithError(w, http.StatusNotFound, "No framebuffer attached")
		return
	}
	respondWithJSON(w, http.StatusOK, h.frames.Snapshot())
}

// triggerFetch - хендлер для эндпоинта POST /api/feeds/fetch
func (h *Handler) triggerFetch(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/triggerFetch"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodPost {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	status := "queued"
	if !h.fetcher.Trigger() {
		status = "already_pending"
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": status})
}

// updateDisplay - хендлер для эндпоинта POST /api/display
func (h *Handler) updateDisplay(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/updateDisplay"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodPost {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var settings domain.DisplaySettings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&settings); err != nil {
		log.Warn("invalid display settings body", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.display.UpdateDisplay(settings); err != nil {
		log.Warn("display settings rejected", slog.Any("error", err))
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
