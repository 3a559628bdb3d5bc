package note

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	notes, err := h.Service.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	archived := r.URL.Query().Get("archived")
	if archived != "all" {
		want := archived == "true"
		filtered := notes[:0]
		for _, n := range notes {
			if n.IsArchived == want {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var dto CreateNoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Service.Create(userID, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var dto UpdateNoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Service.Update(userID, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(userID, id); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "note deleted"})
}

// GetShared serves the public share-by-link view. No auth middleware
// sits in front of it.
func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.Service.GetShared(id)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}
