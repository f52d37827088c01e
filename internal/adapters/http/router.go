package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clipsense/retrieval/internal/core/domain"
	"github.com/clipsense/retrieval/internal/core/ports"
	"github.com/clipsense/retrieval/internal/observability/metrics"
)

// Router is the thin internal API surface around the retrieval
// engine. Authentication and quota live in front of it, elsewhere.
type Router struct {
	answerer    ports.QuestionAnswerer
	purger      ports.CachePurger
	queue       ports.PurgeQueue
	metricsPage http.Handler
	httpMetrics *metrics.HTTPMetrics
	logger      *slog.Logger
}

func NewRouter(
	answerer ports.QuestionAnswerer,
	purger ports.CachePurger,
	queue ports.PurgeQueue,
	m *metrics.RetrievalMetrics,
	logger *slog.Logger,
) *Router {
	rt := &Router{
		answerer: answerer,
		purger:   purger,
		queue:    queue,
		logger:   logger,
	}
	if m != nil {
		rt.metricsPage = m.Handler()
		rt.httpMetrics = metrics.NewHTTPMetrics(m.Registry(), "api")
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", rt.route("/healthz", http.HandlerFunc(rt.healthz)))
	mux.Handle("/v1/chat", rt.route("/v1/chat", http.HandlerFunc(rt.chat)))
	mux.Handle("/v1/cache/", rt.route("/v1/cache", http.HandlerFunc(rt.purgeCache)))
	if rt.metricsPage != nil {
		mux.Handle("/metrics", rt.metricsPage)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) route(name string, next http.Handler) http.Handler {
	if rt.httpMetrics == nil {
		return next
	}
	return rt.httpMetrics.Middleware(name, next)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	VideoID    string               `json:"video_id"`
	Transcript string               `json:"transcript"`
	Question   string               `json:"question"`
	History    []domain.ChatMessage `json:"history"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	Method string `json:"method"`
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.VideoID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "video_id is required"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	answer, err := rt.answerer.AnswerQuestion(r.Context(), req.VideoID, req.Transcript, req.Question, req.History)
	if err != nil {
		rt.logger.Warn("chat_failed",
			"request_id", requestIDFromContext(r.Context()),
			"video_id", req.VideoID,
			"error", err,
		)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": userFacingError(err)})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer: answer.Text,
		Method: string(answer.Method),
	})
}

func (rt *Router) purgeCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	videoID := strings.TrimPrefix(r.URL.Path, "/v1/cache/")
	if videoID == "" || strings.Contains(videoID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "video id is required"})
		return
	}

	if err := rt.purger.Purge(r.Context(), videoID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "purge failed"})
		return
	}

	// Best effort: other processes drop their entries when the event
	// arrives; local state is already consistent.
	if rt.queue != nil {
		if err := rt.queue.PublishCachePurge(r.Context(), videoID); err != nil {
			rt.logger.Warn("purge_publish_failed", "video_id", videoID, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
