package document

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/identity"
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

	documents, err := h.Service.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"documents": documents})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	uploaderName := ""
	if ident, ok := identity.UserFromContext(r.Context()); ok {
		uploaderName = ident.Name
	}

	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Create(userID, uploaderName, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var dto UpdateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Update(userID, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(userID, id); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}
