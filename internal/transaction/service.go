package transaction

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/core/events"
	"github.com/ctrlfund/ctrlfund/internal/notification"
)

type ServiceAPI interface {
	List(userID string) ([]*Transaction, error)
	Create(userID string, dto CreateTransactionDTO) (*Transaction, error)
	Update(userID, id string, dto UpdateTransactionDTO) (*Transaction, error)
	Delete(userID, id string) error
	BulkCreate(userID string, dto BulkCreateDTO) (*BulkCreateResult, error)
	Categories(userID string) ([]string, error)
	GetStats(userID string) (*Stats, error)
	Watch(ctx context.Context, userID string) (<-chan []*Transaction, error)
}

// Service keeps the backend copy authoritative while giving callers an
// optimistic view: every write lands in a pending overlay immediately
// and is dropped once a read observes the committed row.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	eventBus *events.EventBus
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*Transaction

	watcherMu sync.RWMutex
	watchers  map[string][]chan []*Transaction
}

func NewService(repo Repository, notifier notification.Notifier, eventBus *events.EventBus, logger *slog.Logger) *Service {
	s := &Service{
		repo:     repo,
		notifier: notifier,
		eventBus: eventBus,
		logger:   logger,
		pending:  make(map[string]*Transaction),
		watchers: make(map[string][]chan []*Transaction),
	}

	if eventBus != nil {
		eventBus.Subscribe(events.EventTypeTransactionChanged, s.onChange)
	}

	return s
}

func (s *Service) requireUser(userID string) error {
	if userID == "" {
		s.notifier.Notify("You must be logged in to manage transactions", notification.SeverityError)
		return internal.ErrNotAuthenticated
	}
	return nil
}

// List returns the caller's transactions newest-first, with pending
// writes overlaid. Pending entries whose committed row has landed are
// reconciled away here.
func (s *Service) List(userID string) ([]*Transaction, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.notifier.Notify("Failed to load transactions", notification.SeverityError)
		return nil, internal.NewInternalError("failed to load transactions", err)
	}

	committed := make(map[string]bool, len(rows))
	for _, tx := range rows {
		committed[tx.ID] = true
	}

	s.mu.Lock()
	for id := range s.pending {
		if committed[id] {
			delete(s.pending, id)
		}
	}
	for _, tx := range s.pending {
		if tx.UserID == userID {
			rows = append(rows, tx)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return rows, nil
}

func (s *Service) Create(userID string, dto CreateTransactionDTO) (*Transaction, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to add transaction: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	now := time.Now()
	tx := &Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       dto.Title,
		Amount:      dto.Amount,
		Category:    dto.Category,
		Date:        dto.Date,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.pending[tx.ID] = tx
	s.mu.Unlock()

	if err := s.repo.Create(tx); err != nil {
		// roll the overlay entry back so a failed write never lingers
		s.mu.Lock()
		delete(s.pending, tx.ID)
		s.mu.Unlock()

		s.notifier.Notify("Failed to add transaction", notification.SeverityError)
		return nil, internal.NewInternalError("failed to create transaction", err)
	}

	s.publishChange(tx, events.ChangeKindCreated)
	s.notifier.Notify("Transaction added", notification.SeveritySuccess)

	return tx, nil
}

func (s *Service) Update(userID, id string, dto UpdateTransactionDTO) (*Transaction, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to update transaction: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	tx, err := s.ownedTransaction(userID, id)
	if err != nil {
		s.notifier.Notify("Failed to update transaction: not found", notification.SeverityError)
		return nil, err
	}

	if dto.Title != nil {
		tx.Title = *dto.Title
	}
	if dto.Amount != nil {
		tx.Amount = *dto.Amount
	}
	if dto.Category != nil {
		tx.Category = *dto.Category
	}
	if dto.Date != nil {
		tx.Date = *dto.Date
	}
	if dto.Description != nil {
		tx.Description = *dto.Description
	}
	if dto.IsArchived != nil {
		tx.IsArchived = *dto.IsArchived
	}
	tx.UpdatedAt = time.Now()

	if err := s.repo.Update(tx); err != nil {
		s.notifier.Notify("Failed to update transaction", notification.SeverityError)
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	s.publishChange(tx, events.ChangeKindUpdated)
	if dto.IsArchived != nil {
		if *dto.IsArchived {
			s.notifier.Notify("Transaction archived", notification.SeveritySuccess)
		} else {
			s.notifier.Notify("Transaction restored", notification.SeveritySuccess)
		}
	} else {
		s.notifier.Notify("Transaction updated", notification.SeveritySuccess)
	}

	return tx, nil
}

// Delete removes the row permanently. Archiving is an Update, not this.
func (s *Service) Delete(userID, id string) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}

	tx, err := s.ownedTransaction(userID, id)
	if err != nil {
		s.notifier.Notify("Failed to delete transaction: not found", notification.SeverityError)
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.notifier.Notify("Failed to delete transaction", notification.SeverityError)
		return internal.NewInternalError("failed to delete transaction", err)
	}

	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()

	s.publishChange(tx, events.ChangeKindDeleted)
	s.notifier.Notify("Transaction deleted", notification.SeveritySuccess)

	return nil
}

// BulkCreate commits items strictly in order and stops at the first
// failure: earlier items stay committed, later items are never issued.
func (s *Service) BulkCreate(userID string, dto BulkCreateDTO) (*BulkCreateResult, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	result := &BulkCreateResult{}
	for i, item := range dto.Items {
		tx, err := s.Create(userID, item)
		if err != nil {
			idx := i
			result.FailedIndex = &idx
			result.FailedError = err.Error()
			s.notifier.Notify("Bulk add stopped at a failing row", notification.SeverityError)
			return result, nil
		}
		result.Created = append(result.Created, tx)
	}

	return result, nil
}

// Categories lists the caller's distinct categories in the order they
// were first used, recomputed per call.
func (s *Service) Categories(userID string) ([]string, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	// List is newest-first; walk oldest-first for first-observed order
	seen := make(map[string]bool)
	categories := []string{}
	for i := len(rows) - 1; i >= 0; i-- {
		c := rows[i].Category
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}

	return categories, nil
}

// GetStats aggregates over the caller's non-archived transactions.
func (s *Service) GetStats(userID string) (*Stats, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, tx := range rows {
		if tx.IsArchived {
			continue
		}
		stats.Count++
		stats.Total += tx.Amount
	}
	if stats.Count > 0 {
		stats.Average = stats.Total / float64(stats.Count)
	}

	return stats, nil
}

// Watch subscribes to the caller's change feed. Each committed write
// delivers a fresh snapshot of their transactions; the subscription
// ends when ctx does.
func (s *Service) Watch(ctx context.Context, userID string) (<-chan []*Transaction, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	ch := make(chan []*Transaction, 8)

	s.watcherMu.Lock()
	s.watchers[userID] = append(s.watchers[userID], ch)
	s.watcherMu.Unlock()

	go func() {
		<-ctx.Done()
		// closing under the write lock keeps the close mutually
		// exclusive with onChange's send loop
		s.watcherMu.Lock()
		chans := s.watchers[userID]
		for i, c := range chans {
			if c == ch {
				s.watchers[userID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		close(ch)
		s.watcherMu.Unlock()
	}()

	return ch, nil
}

func (s *Service) onChange(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := payload["user_id"].(string)
	if userID == "" {
		return nil
	}

	s.watcherMu.RLock()
	active := len(s.watchers[userID])
	s.watcherMu.RUnlock()

	if active == 0 {
		return nil
	}

	snapshot, err := s.List(userID)
	if err != nil {
		s.logger.Error("failed to snapshot transactions for watcher", "user_id", userID, "error", err)
		return nil
	}

	// sends stay under the read lock so a channel can never be closed
	// mid-send
	s.watcherMu.RLock()
	for _, ch := range s.watchers[userID] {
		select {
		case ch <- snapshot:
		default:
			// slow watcher, skip this snapshot rather than block the feed
		}
	}
	s.watcherMu.RUnlock()

	return nil
}

func (s *Service) ownedTransaction(userID, id string) (*Transaction, error) {
	tx, err := s.repo.GetByID(id)
	if err != nil || tx.UserID != userID {
		return nil, internal.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Service) publishChange(tx *Transaction, kind string) {
	if s.eventBus == nil {
		return
	}
	event := events.NewTransactionChangedEvent(tx.ID, tx.UserID, kind)
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish transaction change", "error", err)
	}
}
