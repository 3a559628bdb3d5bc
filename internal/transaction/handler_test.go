package transaction_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
	transactionpg "github.com/ctrlfund/ctrlfund/internal/transaction/postgres"
)

var _ = Describe("Transaction Handler Integration", func() {
	var (
		service *transaction.Service
		handler *transaction.Handler
	)

	const userID = "user-1"

	request := func(method, target, body string) *http.Request {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		return req.WithContext(internal.ContextWithUserID(req.Context(), userID))
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&transaction.Transaction{})).To(Succeed())

		lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := transactionpg.NewTransactionRepository(db)
		service = transaction.NewService(repo, noopNotifier{}, nil, lg)
		handler = transaction.NewHandler(service)
	})

	It("should create a transaction and serve it back", func() {
		w := httptest.NewRecorder()
		handler.Create(w, request(http.MethodPost, "/transactions",
			`{"title":"Office Supplies","amount":150,"category":"Office","date":"2024-01-15"}`))

		Expect(w.Code).To(Equal(http.StatusCreated))

		var created transaction.Transaction
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).NotTo(BeEmpty())
		Expect(created.UserID).To(Equal(userID))

		w = httptest.NewRecorder()
		handler.List(w, request(http.MethodGet, "/transactions", ""))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var listed struct {
			Transactions []*transaction.Transaction `json:"transactions"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&listed)).To(Succeed())
		Expect(listed.Transactions).To(HaveLen(1))
		Expect(listed.Transactions[0].Title).To(Equal("Office Supplies"))
	})

	It("should keep archived rows out of the default listing", func() {
		tx, err := service.Create(userID, transaction.CreateTransactionDTO{
			Title: "Team Lunch", Amount: 85.5, Category: "Food", Date: "2024-01-14",
		})
		Expect(err).NotTo(HaveOccurred())

		archived := true
		_, err = service.Update(userID, tx.ID, transaction.UpdateTransactionDTO{IsArchived: &archived})
		Expect(err).NotTo(HaveOccurred())

		w := httptest.NewRecorder()
		handler.List(w, request(http.MethodGet, "/transactions", ""))

		var active struct {
			Transactions []*transaction.Transaction `json:"transactions"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&active)).To(Succeed())
		Expect(active.Transactions).To(BeEmpty())

		w = httptest.NewRecorder()
		handler.List(w, request(http.MethodGet, "/transactions?archived=true", ""))

		var archive struct {
			Transactions []*transaction.Transaction `json:"transactions"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&archive)).To(Succeed())
		Expect(archive.Transactions).To(HaveLen(1))
	})

	It("should reject an invalid payload with a validation status", func() {
		w := httptest.NewRecorder()
		handler.Create(w, request(http.MethodPost, "/transactions",
			`{"title":"","amount":-5,"category":"Office"}`))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report partial progress on a bulk batch", func() {
		w := httptest.NewRecorder()
		handler.BulkCreate(w, request(http.MethodPost, "/transactions/bulk",
			`{"items":[`+
				`{"title":"First","amount":10,"category":"Office","date":"2024-01-15"},`+
				`{"title":"","amount":0,"category":""},`+
				`{"title":"Third","amount":30,"category":"Office","date":"2024-01-15"}]}`))

		Expect(w.Code).To(Equal(http.StatusMultiStatus))

		var result transaction.BulkCreateResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Created).To(HaveLen(1))
		Expect(result.FailedIndex).NotTo(BeNil())
		Expect(*result.FailedIndex).To(Equal(1))
	})
})
