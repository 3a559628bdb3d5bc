// Package export renders flat record sets as CSV. Spreadsheet and PDF
// rendering stay on the client; this is the interchange format.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/note"
	"github.com/ctrlfund/ctrlfund/internal/receipt"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
)

// CSV renders a header row plus data rows. An empty dataset is an
// external error so callers surface "no data to export" instead of
// handing out an empty file.
func CSV(headers []string, rows [][]string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, internal.ErrExportEmptyDataset
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, internal.NewInternalError("failed to write csv header", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, internal.NewInternalError("failed to write csv row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, internal.NewInternalError("failed to flush csv", err)
	}

	return buf.Bytes(), nil
}

func Transactions(txs []*transaction.Transaction) ([]byte, error) {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.ID,
			tx.Title,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Category,
			tx.Date,
			tx.Description,
			strconv.FormatBool(tx.IsArchived),
		})
	}
	return CSV([]string{"id", "title", "amount", "category", "date", "description", "archived"}, rows)
}

func Receipts(receipts []receipt.Receipt) ([]byte, error) {
	rows := make([][]string, 0, len(receipts))
	for _, r := range receipts {
		rows = append(rows, []string{
			r.ID,
			r.FileName,
			r.FileType,
			strconv.FormatInt(r.FileSize, 10),
			string(r.Category),
			r.Description,
			r.UploadedAt.Format(time.RFC3339),
		})
	}
	return CSV([]string{"id", "file_name", "file_type", "file_size", "category", "description", "uploaded_at"}, rows)
}

func Notes(notes []note.Note) ([]byte, error) {
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			n.ID,
			n.Title,
			n.Content,
			strconv.FormatBool(n.IsArchived),
			n.CreatedAt.Format(time.RFC3339),
		})
	}
	return CSV([]string{"id", "title", "content", "archived", "created_at"}, rows)
}
