// Package drive simulates the file storage provider. The worker pool
// and queueing are real; the provider call is a stand-in that responds
// after a short delay with fabricated file metadata.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UploadJob describes one file to push to the provider.
type UploadJob struct {
	FileName string
	MimeType string
	Size     int64
	DataURL  string

	result chan uploadResult
}

type uploadResult struct {
	file *File
	err  error
}

// File is the provider's description of a stored file.
type File struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MimeType    string   `json:"mimeType"`
	Size        int64    `json:"size"`
	WebViewLink string   `json:"webViewLink"`
	Parents     []string `json:"parents"`
}

// Uploader is the boundary the rest of the application depends on.
type Uploader interface {
	Upload(ctx context.Context, job UploadJob) (*File, error)
}

type worker struct {
	id         int
	workerPool chan chan UploadJob
	jobChannel chan UploadJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan UploadJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan UploadJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(UploadJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker processing upload", "worker_id", w.id, "file", job.FileName)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type Config struct {
	Workers     int
	QueueSize   int
	UploadDelay time.Duration
	FolderID    string
}

// Client queues uploads onto a fixed worker pool.
type Client struct {
	uploadDelay time.Duration
	folderID    string
	logger      *slog.Logger

	jobQueue   chan UploadJob
	workerPool chan chan UploadJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	client := &Client{
		uploadDelay: config.UploadDelay,
		folderID:    config.FolderID,
		logger:      logger,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan UploadJob, queueSize),
		workerPool:  make(chan chan UploadJob, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {
		for i := 0; i < c.maxWorkers; i++ {
			w := newWorker(i, c.workerPool, c.logger)
			w.start(c.ctx, &c.wg, c.processUpload)
		}

		c.wg.Add(1)
		go c.dispatch()
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:
			select {
			case jobChannel := <-c.workerPool:
				jobChannel <- job
			case <-c.ctx.Done():
				job.result <- uploadResult{err: c.ctx.Err()}
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Upload queues the job and waits for a worker to finish it.
func (c *Client) Upload(ctx context.Context, job UploadJob) (*File, error) {
	job.result = make(chan uploadResult, 1)

	select {
	case c.jobQueue <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, fmt.Errorf("drive client is shut down")
	}

	select {
	case res := <-job.result:
		return res.file, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// processUpload simulates the provider round trip.
func (c *Client) processUpload(job UploadJob) {
	delay := c.uploadDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	select {
	case <-time.After(delay):
	case <-c.ctx.Done():
		job.result <- uploadResult{err: c.ctx.Err()}
		return
	}

	parents := []string{}
	if c.folderID != "" {
		parents = append(parents, c.folderID)
	}

	id := uuid.New().String()
	file := &File{
		ID:          id,
		Name:        job.FileName,
		MimeType:    job.MimeType,
		Size:        job.Size,
		WebViewLink: "https://drive.example.com/file/d/" + id + "/view",
		Parents:     parents,
	}

	c.logger.Info("upload completed", "file", job.FileName, "drive_id", id)
	job.result <- uploadResult{file: file}
}

// Shutdown stops the workers and waits for them to drain.
func (c *Client) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
