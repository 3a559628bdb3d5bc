package receipt

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

	receipts, err := h.Service.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"receipts": receipts})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var dto CreateReceiptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.Service.Create(userID, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var dto UpdateReceiptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.Service.Update(userID, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(userID, id); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "receipt deleted"})
}

func (h *Handler) UploadToDrive(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	file, err := h.Service.UploadToDrive(r.Context(), userID, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, file)
}
