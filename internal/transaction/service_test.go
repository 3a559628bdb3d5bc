package transaction_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/core/events"
	"github.com/ctrlfund/ctrlfund/internal/notification"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
)

func TestTransaction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Module Suite")
}

// Mock repository for testing
type mockTransactionRepository struct {
	mu          sync.Mutex
	rows        map[string]*transaction.Transaction
	order       []string
	createError error
	getError    error
	updateError error
	deleteError error
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{
		rows: make(map[string]*transaction.Transaction),
	}
}

func (m *mockTransactionRepository) Create(tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	clone := *tx
	m.rows[tx.ID] = &clone
	m.order = append(m.order, tx.ID)
	return nil
}

func (m *mockTransactionRepository) GetByID(id string) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	tx, ok := m.rows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *tx
	return &clone, nil
}

func (m *mockTransactionRepository) GetByUserID(userID string) ([]*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*transaction.Transaction
	for _, id := range m.order {
		if tx, ok := m.rows[id]; ok && tx.UserID == userID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockTransactionRepository) Update(tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	clone := *tx
	m.rows[tx.ID] = &clone
	return nil
}

func (m *mockTransactionRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.rows, id)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(message string, severity notification.Severity) {}

var _ = Describe("TransactionService", func() {
	var (
		repo    *mockTransactionRepository
		bus     *events.EventBus
		service *transaction.Service
		logger  *slog.Logger
	)

	const userID = "user-1"

	create := func(title string, amount float64, category string) *transaction.Transaction {
		tx, err := service.Create(userID, transaction.CreateTransactionDTO{
			Title:    title,
			Amount:   amount,
			Category: category,
			Date:     "2026-08-01",
		})
		Expect(err).NotTo(HaveOccurred())
		return tx
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockTransactionRepository()
		bus = events.NewEventBus(logger)
		service = transaction.NewService(repo, noopNotifier{}, bus, logger)
	})

	Describe("Create", func() {
		It("should commit the row and return it immediately", func() {
			tx := create("Office Supplies", 150.0, "Office")

			Expect(tx.ID).NotTo(BeEmpty())
			Expect(repo.rows).To(HaveKey(tx.ID))

			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Title).To(Equal("Office Supplies"))
		})

		It("should refuse anonymous callers", func() {
			_, err := service.Create("", transaction.CreateTransactionDTO{
				Title: "x", Amount: 1, Category: "c",
			})

			Expect(err).To(MatchError(internal.ErrNotAuthenticated))
		})

		It("should reject a non-positive amount", func() {
			_, err := service.Create(userID, transaction.CreateTransactionDTO{
				Title: "Bad", Amount: 0, Category: "Office",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should keep the caller's view intact when the backend write fails", func() {
			repo.createError = errors.New("backend down")

			_, err := service.Create(userID, transaction.CreateTransactionDTO{
				Title: "Doomed", Amount: 10, Category: "Office",
			})
			Expect(err).To(HaveOccurred())

			repo.createError = nil
			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			// the failed write must not linger in the optimistic overlay
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("List", func() {
		It("should only return the caller's transactions", func() {
			create("Mine", 10, "Office")

			_, err := service.Create("someone-else", transaction.CreateTransactionDTO{
				Title: "Theirs", Amount: 20, Category: "Food", Date: "2026-08-02",
			})
			Expect(err).NotTo(HaveOccurred())

			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Title).To(Equal("Mine"))
		})
	})

	Describe("Update and archive", func() {
		It("should apply a partial patch", func() {
			tx := create("Team Lunch", 85.5, "Food")

			newTitle := "Team Dinner"
			updated, err := service.Update(userID, tx.ID, transaction.UpdateTransactionDTO{
				Title: &newTitle,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Team Dinner"))
			Expect(updated.Amount).To(Equal(85.5))
		})

		It("should archive and restore without losing the row", func() {
			tx := create("Software License", 299.99, "Software")

			archived := true
			_, err := service.Update(userID, tx.ID, transaction.UpdateTransactionDTO{IsArchived: &archived})
			Expect(err).NotTo(HaveOccurred())

			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].IsArchived).To(BeTrue())

			restored := false
			got, err := service.Update(userID, tx.ID, transaction.UpdateTransactionDTO{IsArchived: &restored})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsArchived).To(BeFalse())
			Expect(got.Title).To(Equal("Software License"))
			Expect(got.Amount).To(Equal(299.99))
		})

		It("should not let one user patch another's transaction", func() {
			tx := create("Mine", 10, "Office")

			title := "Hijacked"
			_, err := service.Update("someone-else", tx.ID, transaction.UpdateTransactionDTO{Title: &title})

			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the row permanently", func() {
			tx := create("Short lived", 5, "Misc")

			Expect(service.Delete(userID, tx.ID)).To(Succeed())

			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})

		It("should report not-found for an absent id", func() {
			err := service.Delete(userID, "no-such-id")
			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("BulkCreate", func() {
		It("should commit all items in order when everything succeeds", func() {
			result, err := service.BulkCreate(userID, transaction.BulkCreateDTO{
				Items: []transaction.CreateTransactionDTO{
					{Title: "One", Amount: 1, Category: "A"},
					{Title: "Two", Amount: 2, Category: "B"},
					{Title: "Three", Amount: 3, Category: "C"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(HaveLen(3))
			Expect(result.FailedIndex).To(BeNil())
		})

		It("should stop at the first failure and keep earlier commits", func() {
			result, err := service.BulkCreate(userID, transaction.BulkCreateDTO{
				Items: []transaction.CreateTransactionDTO{
					{Title: "Good", Amount: 1, Category: "A"},
					{Title: "", Amount: 2, Category: "B"}, // fails validation
					{Title: "Never issued", Amount: 3, Category: "C"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(HaveLen(1))
			Expect(result.FailedIndex).To(HaveValue(Equal(1)))

			rows, err := service.List(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Title).To(Equal("Good"))
		})
	})

	Describe("Categories", func() {
		It("should list distinct categories in first-observed order", func() {
			create("a", 1, "Office")
			create("b", 2, "Food")
			create("c", 3, "Office")
			create("d", 4, "Software")

			categories, err := service.Categories(userID)

			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(Equal([]string{"Office", "Food", "Software"}))
		})

		It("should recompute after a category disappears", func() {
			tx := create("only office", 1, "Office")
			create("food", 2, "Food")

			Expect(service.Delete(userID, tx.ID)).To(Succeed())

			categories, err := service.Categories(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(Equal([]string{"Food"}))
		})
	})

	Describe("GetStats", func() {
		It("should aggregate count, total and average over active rows", func() {
			create("Office Supplies", 150.0, "Office")
			create("Team Lunch", 85.5, "Food")

			stats, err := service.GetStats(userID)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Count).To(Equal(2))
			Expect(stats.Total).To(BeNumerically("~", 235.5, 1e-9))
			Expect(stats.Average).To(BeNumerically("~", 117.75, 1e-9))
		})

		It("should exclude archived rows", func() {
			create("active", 100, "Office")
			tx := create("archived", 900, "Office")

			archived := true
			_, err := service.Update(userID, tx.ID, transaction.UpdateTransactionDTO{IsArchived: &archived})
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.GetStats(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Count).To(Equal(1))
			Expect(stats.Total).To(BeNumerically("~", 100, 1e-9))
		})
	})

	Describe("Watch", func() {
		It("should deliver a snapshot to a same-owner subscriber after a write", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			feed, err := service.Watch(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			create("watched", 42, "Office")

			var snapshot []*transaction.Transaction
			Eventually(feed).Should(Receive(&snapshot))
			Expect(snapshot).To(HaveLen(1))
			Expect(snapshot[0].Title).To(Equal("watched"))
		})

		It("should not deliver another owner's changes", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			feed, err := service.Watch(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create("someone-else", transaction.CreateTransactionDTO{
				Title: "Theirs", Amount: 1, Category: "X",
			})
			Expect(err).NotTo(HaveOccurred())

			Consistently(feed).ShouldNot(Receive())
		})

		It("should close the feed when the context ends", func() {
			ctx, cancel := context.WithCancel(context.Background())

			feed, err := service.Watch(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			cancel()
			Eventually(feed).Should(BeClosed())
		})

		It("should survive subscribers leaving while writes commit", func() {
			var wg sync.WaitGroup

			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 0; i < 40; i++ {
						_, err := service.Create(userID, transaction.CreateTransactionDTO{
							Title: "churn", Amount: 1, Category: "Office", Date: "2026-08-01",
						})
						Expect(err).NotTo(HaveOccurred())
					}
				}()
			}

			for c := 0; c < 2; c++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 0; i < 60; i++ {
						ctx, cancel := context.WithCancel(context.Background())
						feed, err := service.Watch(ctx, userID)
						Expect(err).NotTo(HaveOccurred())
						select {
						case <-feed:
						default:
						}
						cancel()
					}
				}()
			}

			wg.Wait()

			// the feed must still work once the churn settles
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			feed, err := service.Watch(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			create("after churn", 42, "Office")
			Eventually(feed).Should(Receive())
		})
	})
})
