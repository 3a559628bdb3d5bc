package receipt

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/drive"
	"github.com/ctrlfund/ctrlfund/internal/localstore"
	"github.com/ctrlfund/ctrlfund/internal/notification"
)

type ServiceAPI interface {
	List(userID string) ([]Receipt, error)
	Create(userID string, dto CreateReceiptDTO) (*Receipt, error)
	Update(userID, id string, dto UpdateReceiptDTO) (*Receipt, error)
	Delete(userID, id string) error
	UploadToDrive(ctx context.Context, userID, id string) (*drive.File, error)
}

type Service struct {
	store     *localstore.Store
	notifier  notification.Notifier
	protected ProtectedChecker
	uploader  drive.Uploader
	logger    *slog.Logger
	mu        sync.Mutex
}

func NewService(store *localstore.Store, notifier notification.Notifier, protected ProtectedChecker, uploader drive.Uploader, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		protected: protected,
		uploader:  uploader,
		logger:    logger,
	}
}

func (s *Service) load() ([]Receipt, error) {
	var receipts []Receipt
	err := s.store.Get(storageKey, &receipts)
	if err == nil {
		return receipts, nil
	}
	if errors.Is(err, localstore.ErrKeyNotFound) {
		return []Receipt{}, nil
	}
	return nil, internal.NewDataIntegrityError("Failed to load receipts from storage", internal.ErrCodeLocalStoreUnreadable).WithCause(err)
}

func (s *Service) save(receipts []Receipt) error {
	if err := s.store.Set(storageKey, receipts); err != nil {
		return internal.NewInternalError("failed to persist receipts", err)
	}
	return nil
}

func (s *Service) requireUser(userID string) error {
	if userID == "" {
		s.notifier.Notify("You must be logged in to manage receipts", notification.SeverityError)
		return internal.ErrNotAuthenticated
	}
	return nil
}

// List returns the caller's receipts newest-first.
func (s *Service) List(userID string) ([]Receipt, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		s.notifier.Notify("Failed to load receipts", notification.SeverityError)
		return nil, err
	}

	var own []Receipt
	for _, r := range all {
		if r.UserID == userID {
			own = append(own, r)
		}
	}

	sort.SliceStable(own, func(i, j int) bool {
		return own[i].UploadedAt.After(own[j].UploadedAt)
	})

	return own, nil
}

func (s *Service) Create(userID string, dto CreateReceiptDTO) (*Receipt, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to upload receipt: "+err.Error(), notification.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	r := Receipt{
		ID:          uuid.New().String(),
		UserID:      userID,
		FileName:    dto.FileName,
		FileType:    dto.FileType,
		FileSize:    dto.FileSize,
		Description: dto.Description,
		Category:    dto.Category,
		DataURL:     dto.DataURL,
		UploadedAt:  time.Now(),
	}

	if err := s.save(append(all, r)); err != nil {
		s.notifier.Notify("Failed to upload receipt", notification.SeverityError)
		return nil, err
	}

	s.notifier.Notify("Receipt uploaded", notification.SeveritySuccess)
	return &r, nil
}

func (s *Service) Update(userID, id string, dto UpdateReceiptDTO) (*Receipt, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.notifier.Notify("Failed to update receipt: "+err.Error(), notification.SeverityError)
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

		if dto.Description != nil {
			all[i].Description = *dto.Description
		}
		if dto.Category != nil {
			all[i].Category = *dto.Category
		}

		if err := s.save(all); err != nil {
			s.notifier.Notify("Failed to update receipt", notification.SeverityError)
			return nil, err
		}

		s.notifier.Notify("Receipt updated", notification.SeveritySuccess)
		updated := all[i]
		return &updated, nil
	}

	s.notifier.Notify("Failed to update receipt: not found", notification.SeverityError)
	return nil, internal.ErrReceiptNotFound
}

// Delete removes a receipt. Only the protected admin may delete,
// checked before any mutation.
func (s *Service) Delete(userID, id string) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}

	if !s.protected.IsProtectedIdentity(userID) {
		s.notifier.Notify("Only the main admin can delete receipts", notification.SeverityError)
		return internal.NewPermissionError("Only the main admin can delete receipts", internal.ErrCodeProtectedIdentity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}

	kept := all[:0]
	found := false
	for _, r := range all {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}

	if !found {
		s.notifier.Notify("Failed to delete receipt: not found", notification.SeverityError)
		return internal.ErrReceiptNotFound
	}

	if err := s.save(kept); err != nil {
		s.notifier.Notify("Failed to delete receipt", notification.SeverityError)
		return err
	}

	s.notifier.Notify("Receipt deleted", notification.SeveritySuccess)
	return nil
}

// UploadToDrive pushes an already-stored receipt through the drive
// client and reports the provider's file metadata.
func (s *Service) UploadToDrive(ctx context.Context, userID, id string) (*drive.File, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	all, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, r := range all {
		if r.ID != id || r.UserID != userID {
			continue
		}

		file, err := s.uploader.Upload(ctx, drive.UploadJob{
			FileName: r.FileName,
			MimeType: r.FileType,
			Size:     r.FileSize,
			DataURL:  r.DataURL,
		})
		if err != nil {
			s.notifier.Notify("Drive upload failed", notification.SeverityError)
			return nil, internal.NewExternalError("Drive upload failed", internal.ErrCodeUploadFailed).WithCause(err)
		}

		s.notifier.Notify("Receipt uploaded to Drive", notification.SeveritySuccess)
		return file, nil
	}

	s.notifier.Notify("Drive upload failed: receipt not found", notification.SeverityError)
	return nil, internal.ErrReceiptNotFound
}
