package drive_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ctrlfund/ctrlfund/internal/drive"
)

func TestDrive(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Drive Module Suite")
}

var _ = Describe("Client", func() {
	var (
		client *drive.Client
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		client = drive.NewClient(drive.Config{
			Workers:     2,
			QueueSize:   8,
			UploadDelay: time.Millisecond,
			FolderID:    "folder-1",
		}, logger)
	})

	AfterEach(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(client.Shutdown(ctx)).To(Succeed())
	})

	Describe("Upload", func() {
		It("should return provider metadata for the file", func() {
			file, err := client.Upload(context.Background(), drive.UploadJob{
				FileName: "invoice.pdf",
				MimeType: "application/pdf",
				Size:     2048,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(file.ID).NotTo(BeEmpty())
			Expect(file.Name).To(Equal("invoice.pdf"))
			Expect(file.MimeType).To(Equal("application/pdf"))
			Expect(file.Size).To(Equal(int64(2048)))
			Expect(file.WebViewLink).To(ContainSubstring(file.ID))
			Expect(file.Parents).To(Equal([]string{"folder-1"}))
		})

		It("should process concurrent uploads", func() {
			var wg sync.WaitGroup
			results := make(chan *drive.File, 10)

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					file, err := client.Upload(context.Background(), drive.UploadJob{
						FileName: "batch.png",
						MimeType: "image/png",
					})
					Expect(err).NotTo(HaveOccurred())
					results <- file
				}()
			}

			wg.Wait()
			close(results)

			seen := make(map[string]bool)
			for file := range results {
				Expect(seen[file.ID]).To(BeFalse())
				seen[file.ID] = true
			}
			Expect(seen).To(HaveLen(10))
		})

		It("should respect caller cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			slow := drive.NewClient(drive.Config{
				Workers:     1,
				QueueSize:   1,
				UploadDelay: time.Second,
			}, logger)
			defer func() {
				shutdownCtx, c := context.WithTimeout(context.Background(), time.Second)
				defer c()
				Expect(slow.Shutdown(shutdownCtx)).To(Succeed())
			}()

			_, err := slow.Upload(ctx, drive.UploadJob{FileName: "late.txt"})
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
