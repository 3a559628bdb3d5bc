package receipt_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/drive"
	"github.com/ctrlfund/ctrlfund/internal/localstore"
	"github.com/ctrlfund/ctrlfund/internal/notification"
	"github.com/ctrlfund/ctrlfund/internal/receipt"
)

func TestReceipt(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Receipt Module Suite")
}

type noopNotifier struct{}

func (noopNotifier) Notify(message string, severity notification.Severity) {}

// stubChecker marks one identity as the protected admin
type stubChecker struct {
	protectedID string
}

func (s stubChecker) IsProtectedIdentity(id string) bool { return id == s.protectedID }

var _ = Describe("ReceiptService", func() {
	var (
		store   *localstore.Store
		client  *drive.Client
		service *receipt.Service
	)

	const (
		adminID  = "protected-admin"
		memberID = "member-1"
	)

	upload := func(userID, fileName string) *receipt.Receipt {
		r, err := service.Create(userID, receipt.CreateReceiptDTO{
			FileName: fileName,
			FileType: "application/pdf",
			FileSize: 1024,
			Category: receipt.CategorySponsor,
			DataURL:  "data:application/pdf;base64,JVBERi0=",
		})
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	BeforeEach(func() {
		var err error
		store, err = localstore.Open(filepath.Join(GinkgoT().TempDir(), "local.db"))
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		client = drive.NewClient(drive.Config{Workers: 1, QueueSize: 4, UploadDelay: time.Millisecond}, logger)
		service = receipt.NewService(store, noopNotifier{}, stubChecker{protectedID: adminID}, client, logger)
	})

	AfterEach(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(client.Shutdown(ctx)).To(Succeed())
		Expect(store.Close()).To(Succeed())
	})

	Describe("Create and List", func() {
		It("should store the receipt and list it for its owner only", func() {
			upload(memberID, "mine.pdf")
			upload(adminID, "theirs.pdf")

			own, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())
			Expect(own).To(HaveLen(1))
			Expect(own[0].FileName).To(Equal("mine.pdf"))
		})

		It("should reject an unknown category", func() {
			_, err := service.Create(memberID, receipt.CreateReceiptDTO{
				FileName: "bad.pdf",
				Category: receipt.Category("Travel"),
				DataURL:  "data:...",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should list receipts newest-first", func() {
			upload(memberID, "first.pdf")
			upload(memberID, "second.pdf")
			upload(memberID, "third.pdf")

			own, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, r := range own {
				names = append(names, r.FileName)
			}
			Expect(names).To(Equal([]string{"third.pdf", "second.pdf", "first.pdf"}))

			for i := 1; i < len(own); i++ {
				Expect(own[i-1].UploadedAt.Before(own[i].UploadedAt)).To(BeFalse())
			}
		})
	})

	Describe("Update", func() {
		It("should patch description and category", func() {
			r := upload(memberID, "patch.pdf")

			desc := "Sponsorship invoice"
			cat := receipt.CategoryEducation
			updated, err := service.Update(memberID, r.ID, receipt.UpdateReceiptDTO{
				Description: &desc,
				Category:    &cat,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("Sponsorship invoice"))
			Expect(updated.Category).To(Equal(receipt.CategoryEducation))
			Expect(updated.FileName).To(Equal("patch.pdf"))
		})
	})

	Describe("Delete", func() {
		It("should allow the protected admin to delete any receipt", func() {
			r := upload(memberID, "target.pdf")

			Expect(service.Delete(adminID, r.ID)).To(Succeed())

			remaining, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(BeEmpty())
		})

		It("should refuse everyone else, even the owner", func() {
			r := upload(memberID, "kept.pdf")

			err := service.Delete(memberID, r.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypePermission))

			remaining, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(HaveLen(1))
		})
	})

	Describe("UploadToDrive", func() {
		It("should push the stored file through the drive client", func() {
			r := upload(memberID, "to-drive.pdf")

			file, err := service.UploadToDrive(context.Background(), memberID, r.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(file.Name).To(Equal("to-drive.pdf"))
			Expect(file.WebViewLink).NotTo(BeEmpty())
		})

		It("should report not-found for someone else's receipt", func() {
			r := upload(adminID, "not-yours.pdf")

			_, err := service.UploadToDrive(context.Background(), memberID, r.ID)

			Expect(err).To(MatchError(internal.ErrReceiptNotFound))
		})
	})
})
