package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/export"
	"github.com/ctrlfund/ctrlfund/internal/note"
	"github.com/ctrlfund/ctrlfund/internal/receipt"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
	"github.com/ctrlfund/ctrlfund/internal/transport"
)

// ExportHandler serves the caller's data as downloadable CSV files.
type ExportHandler struct {
	*transport.BaseHandler
	Transactions transaction.ServiceAPI
	Receipts     receipt.ServiceAPI
	Notes        note.ServiceAPI
}

func NewExportHandler(
	base *transport.BaseHandler,
	transactions transaction.ServiceAPI,
	receipts receipt.ServiceAPI,
	notes note.ServiceAPI,
) *ExportHandler {
	return &ExportHandler{
		BaseHandler:  base,
		Transactions: transactions,
		Receipts:     receipts,
		Notes:        notes,
	}
}

func (h *ExportHandler) writeCSV(w http.ResponseWriter, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ExportHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	rows, err := h.Transactions.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	data, err := export.Transactions(rows)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.writeCSV(w, "transactions", data)
}

func (h *ExportHandler) ExportReceipts(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	rows, err := h.Receipts.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	data, err := export.Receipts(rows)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.writeCSV(w, "receipts", data)
}

func (h *ExportHandler) ExportNotes(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	rows, err := h.Notes.List(userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	data, err := export.Notes(rows)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.writeCSV(w, "notes", data)
}
