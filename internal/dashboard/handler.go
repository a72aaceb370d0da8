package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler wires dashboard endpoints to the read service.
type Handler struct {
	service       *Service
	topPagesLimit int
	logger        *slog.Logger
}

// NewHandler constructs a dashboard handler. topPagesLimit is the default
// page count when the request does not supply one.
func NewHandler(service *Service, topPagesLimit int, logger *slog.Logger) *Handler {
	return &Handler{service: service, topPagesLimit: topPagesLimit, logger: logger}
}

// Register mounts dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/active-users", h.HandleActiveUsers)
	r.Get("/dashboard/top-pages", h.HandleTopPages)
}

// HandleActiveUsers handles GET /dashboard/active-users.
func (h *Handler) HandleActiveUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.service.ActiveUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "active users read failed", "error", err)
		writeError(w, http.StatusBadGateway, "aggregate store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTopPages handles GET /dashboard/top-pages?limit=N.
func (h *Handler) HandleTopPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := h.topPagesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resp, err := h.service.TopPages(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "top pages read failed", "error", err)
		writeError(w, http.StatusBadGateway, "aggregate store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
