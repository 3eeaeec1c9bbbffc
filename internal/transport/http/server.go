package http

import (
	"log/slog"
	"net/http"
)

// NewServer создает и настраивает HTTP-роутер API статуса.
// Добавляет middleware для идентификатора запроса, логирования и CORS.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.healthCheck)
	mux.HandleFunc("/api/headlines", h.getHeadlines)
	mux.HandleFunc("/api/status", h.getStatus)
	mux.HandleFunc("/api/frame", h.getFrame)
	mux.HandleFunc("/api/feeds/fetch", h.triggerFetch)
	mux.HandleFunc("/api/display", h.updateDisplay)
	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
