package transaction

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/transport"
	"github.com/ctrlfund/ctrlfund/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// List serves the caller's transactions. ?archived=true selects the
// archive, anything else the active set, ?archived=all everything.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	rows, err := h.Service.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	archived := r.URL.Query().Get("archived")
	if archived != "all" {
		want := archived == "true"
		filtered := rows[:0]
		for _, tx := range rows {
			if tx.IsArchived == want {
				filtered = append(filtered, tx)
			}
		}
		rows = filtered
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": rows})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.Service.Create(userID, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, tx)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var dto UpdateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.Service.Update(userID, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tx)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(userID, id); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var dto BulkCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.BulkCreate(userID, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if result.FailedIndex != nil {
		status = http.StatusMultiStatus
	}
	h.WriteJSON(w, status, result)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	categories, err := h.Service.Categories(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	stats, err := h.Service.GetStats(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// Watch streams snapshots of the caller's transactions as server-sent
// events, one event per committed change.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.WriteErrorMessage(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	feed, err := h.Service.Watch(r.Context(), userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range feed {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			h.Logger.Error("failed to marshal watch snapshot", "error", err)
			continue
		}
		if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
