package document_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/document"
	"github.com/ctrlfund/ctrlfund/internal/localstore"
	"github.com/ctrlfund/ctrlfund/internal/notification"
)

func TestDocument(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Module Suite")
}

type noopNotifier struct{}

func (noopNotifier) Notify(message string, severity notification.Severity) {}

type stubChecker struct {
	protectedID string
}

func (s stubChecker) IsProtectedIdentity(id string) bool { return id == s.protectedID }

var _ = Describe("DocumentService", func() {
	var (
		store   *localstore.Store
		service *document.Service
	)

	const (
		adminID  = "protected-admin"
		memberID = "member-1"
	)

	upload := func(userID, name, fileName string, category document.Category) *document.Document {
		d, err := service.Create(userID, name, document.CreateDocumentDTO{
			FileName: fileName,
			FileType: "application/pdf",
			FileSize: 4096,
			Category: category,
			DataURL:  "data:application/pdf;base64,JVBERi0=",
		})
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	BeforeEach(func() {
		var err error
		store, err = localstore.Open(filepath.Join(GinkgoT().TempDir(), "local.db"))
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = document.NewService(store, noopNotifier{}, stubChecker{protectedID: adminID}, logger)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("List", func() {
		It("should show every document to every identity", func() {
			upload(adminID, "Admin", "mou.pdf", document.CategoryMOU)
			upload(memberID, "Member", "deal.pdf", document.CategoryDeal)

			forMember, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())
			Expect(forMember).To(HaveLen(2))

			forAdmin, err := service.List(adminID)
			Expect(err).NotTo(HaveOccurred())
			Expect(forAdmin).To(HaveLen(2))
		})

		It("should record the uploader's display name", func() {
			upload(memberID, "Member Name", "contract.pdf", document.CategoryContract)

			docs, err := service.List(adminID)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs[0].UploadedBy).To(Equal("Member Name"))
		})

		It("should list the pool newest-first", func() {
			upload(adminID, "Admin", "first.pdf", document.CategoryMOU)
			upload(memberID, "Member", "second.pdf", document.CategoryDeal)
			upload(adminID, "Admin", "third.pdf", document.CategoryContract)

			docs, err := service.List(memberID)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, d := range docs {
				names = append(names, d.FileName)
			}
			Expect(names).To(Equal([]string{"third.pdf", "second.pdf", "first.pdf"}))

			for i := 1; i < len(docs); i++ {
				Expect(docs[i-1].UploadedAt.Before(docs[i].UploadedAt)).To(BeFalse())
			}
		})
	})

	Describe("Create", func() {
		It("should reject an unknown category", func() {
			_, err := service.Create(memberID, "Member", document.CreateDocumentDTO{
				FileName: "bad.pdf",
				Category: document.Category("Receipt"),
				DataURL:  "data:...",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Delete", func() {
		It("should allow only the protected admin", func() {
			d := upload(memberID, "Member", "target.pdf", document.CategoryOther)

			err := service.Delete(memberID, d.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypePermission))

			Expect(service.Delete(adminID, d.ID)).To(Succeed())

			docs, err := service.List(adminID)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})
})
