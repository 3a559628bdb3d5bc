package document

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
	List(userID string) ([]Document, error)
	Create(userID, uploaderName string, dto CreateDocumentDTO) (*Document, error)
	Update(userID, id string, dto UpdateDocumentDTO) (*Document, error)
	Delete(userID, id string) error
}

// Service keeps the shared document pool in the device-local store.
// Unlike receipts, every identity sees the whole pool.
type Service struct {
	store     *localstore.Store
	notifier  notification.Notifier
	protected ProtectedChecker
	logger    *slog.Logger
	mu        sync.Mutex
}

func NewService(store *localstore.Store, notifier notification.Notifier, protected ProtectedChecker, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		protected: protected,
		logger:    logger,
	}
}

func (s *Service) load() ([]Document, error) {
	var documents []Document
	err := s.store.Get(storageKey, &documents)
	if err == nil {
		return documents, nil
	}
	if errors.Is(err, localstore.ErrKeyNotFound) {
		return []Document{}, nil
	}
	return nil, internal.NewDataIntegrityError("Failed to load documents from storage", internal.ErrCodeLocalStoreUnreadable).WithCause(err)
}

func (s *Service) save(documents []Document) error {
	if err := s.store.Set(storageKey, documents); err != nil {
		return internal.NewInternalError("failed to persist documents", err)
	}
	return nil
}

func (s *Service) requireUser(userID string) error {
	if userID == "" {
		s.notifier.Notify("You must be logged in to manage documents", notification.SeverityError)
		return internal.ErrNotAuthenticated
	}
	return nil
}

// List returns the full pool newest-first.
func (s *Service) List(userID string) ([]Document, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		s.notifier.Notify("Failed to load documents", notification.SeverityError)
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UploadedAt.After(all[j].UploadedAt)
	})

	return all, nil
}

func (s *Service) Create(userID, uploaderName string, dto CreateDocumentDTO) (*Document, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to upload document: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	d := Document{
		ID:         uuid.New().String(),
		FileName:   dto.FileName,
		FileType:   dto.FileType,
		FileSize:   dto.FileSize,
		Category:   dto.Category,
		UploadedBy: uploaderName,
		DataURL:    dto.DataURL,
		UploadedAt: time.Now(),
	}

	if err := s.save(append(all, d)); err != nil {
		s.notifier.Notify("Failed to upload document", notification.SeverityError)
		return nil, err
	}

	s.notifier.Notify("Document uploaded", notification.SeveritySuccess)
	return &d, nil
}

func (s *Service) Update(userID, id string, dto UpdateDocumentDTO) (*Document, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to update document: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].ID != id {
			continue
		}

		if dto.Category != nil {
			all[i].Category = *dto.Category
		}

		if err := s.save(all); err != nil {
			s.notifier.Notify("Failed to update document", notification.SeverityError)
			return nil, err
		}

		s.notifier.Notify("Document updated", notification.SeveritySuccess)
		updated := all[i]
		return &updated, nil
	}

	s.notifier.Notify("Failed to update document: not found", notification.SeverityError)
	return nil, internal.ErrDocumentNotFound
}

// Delete removes a document from the shared pool. Restricted to the
// protected admin, checked before any mutation.
func (s *Service) Delete(userID, id string) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}

	if !s.protected.IsProtectedIdentity(userID) {
		s.notifier.Notify("Only the main admin can delete documents", notification.SeverityError)
		return internal.NewPermissionError("Only the main admin can delete documents", internal.ErrCodeProtectedIdentity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}

	kept := all[:0]
	found := false
	for _, d := range all {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}

	if !found {
		s.notifier.Notify("Failed to delete document: not found", notification.SeverityError)
		return internal.ErrDocumentNotFound
	}

	if err := s.save(kept); err != nil {
		s.notifier.Notify("Failed to delete document", notification.SeverityError)
		return err
	}

	s.notifier.Notify("Document deleted", notification.SeveritySuccess)
	return nil
}
