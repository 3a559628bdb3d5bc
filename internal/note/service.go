package note

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/localstore"
	"github.com/ctrlfund/ctrlfund/internal/notification"
)

type ServiceAPI interface {
	List(userID string) ([]Note, error)
	Create(userID string, dto CreateNoteDTO) (*Note, error)
	Update(userID, id string, dto UpdateNoteDTO) (*Note, error)
	Delete(userID, id string) error
	GetShared(id string) (*Note, error)
}

// Service keeps notes in the device-local store. The whole collection
// is read and written as one blob, so a single mutex serializes access.
type Service struct {
	store    *localstore.Store
	notifier notification.Notifier
	logger   *slog.Logger
	mu       sync.Mutex
}

func NewService(store *localstore.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// load reads the full collection, seeding the fixture dataset the
// first time the key is touched.
func (s *Service) load() ([]Note, error) {
	var notes []Note
	err := s.store.Get(storageKey, &notes)
	if err == nil {
		return notes, nil
	}
	if errors.Is(err, localstore.ErrKeyNotFound) {
		notes = seedNotes()
		if err := s.store.Set(storageKey, notes); err != nil {
			return nil, internal.NewInternalError("failed to seed notes", err)
		}
		return notes, nil
	}
	return nil, internal.NewDataIntegrityError("Failed to load notes from storage", internal.ErrCodeLocalStoreUnreadable).WithCause(err)
}

func (s *Service) save(notes []Note) error {
	if err := s.store.Set(storageKey, notes); err != nil {
		return internal.NewInternalError("failed to persist notes", err)
	}
	return nil
}

func (s *Service) requireUser(userID string) error {
	if userID == "" {
		s.notifier.Notify("You must be logged in to manage notes", notification.SeverityError)
		return internal.ErrNotAuthenticated
	}
	return nil
}

// List returns the caller's notes newest-first.
func (s *Service) List(userID string) ([]Note, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		s.notifier.Notify("Failed to load notes", notification.SeverityError)
		return nil, err
	}

	var own []Note
	for _, n := range all {
		if n.UserID == userID {
			own = append(own, n)
		}
	}

	sort.SliceStable(own, func(i, j int) bool {
		return own[i].CreatedAt.After(own[j].CreatedAt)
	})

	return own, nil
}

func (s *Service) Create(userID string, dto CreateNoteDTO) (*Note, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to create note: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	n := Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     dto.Title,
		Content:   dto.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.save(append(all, n)); err != nil {
		s.notifier.Notify("Failed to create note", notification.SeverityError)
		return nil, err
	}

	s.notifier.Notify("Note created", notification.SeveritySuccess)
	return &n, nil
}

func (s *Service) Update(userID, id string, dto UpdateNoteDTO) (*Note, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to update note: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].ID != id || all[i].UserID != userID {
			continue
		}

		if dto.Title != nil {
			all[i].Title = *dto.Title
		}
		if dto.Content != nil {
			all[i].Content = *dto.Content
		}
		if dto.IsArchived != nil {
			all[i].IsArchived = *dto.IsArchived
		}
		all[i].UpdatedAt = time.Now()

		if err := s.save(all); err != nil {
			s.notifier.Notify("Failed to update note", notification.SeverityError)
			return nil, err
		}

		s.notifier.Notify("Note updated", notification.SeveritySuccess)
		updated := all[i]
		return &updated, nil
	}

	s.notifier.Notify("Failed to update note: not found", notification.SeverityError)
	return nil, internal.ErrNoteNotFound
}

func (s *Service) Delete(userID, id string) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}

	kept := all[:0]
	found := false
	for _, n := range all {
		if n.ID == id && n.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, n)
	}

	if !found {
		s.notifier.Notify("Failed to delete note: not found", notification.SeverityError)
		return internal.ErrNoteNotFound
	}

	if err := s.save(kept); err != nil {
		s.notifier.Notify("Failed to delete note", notification.SeverityError)
		return err
	}

	s.notifier.Notify("Note deleted", notification.SeveritySuccess)
	return nil
}

// GetShared returns any note by id regardless of owner. It backs the
// share-by-link read-only view.
func (s *Service) GetShared(id string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, n := range all {
		if n.ID == id {
			shared := n
			return &shared, nil
		}
	}

	return nil, internal.ErrNoteNotFound
}
