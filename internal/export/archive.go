package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// uploadTimeout bounds a single archive upload.
const uploadTimeout = 5 * time.Minute

// archiveQueueSize is the buffered upload queue length.
const archiveQueueSize = 16

// uploadRequest is one synthesized output queued for archiving.
type uploadRequest struct {
	key  string
	data []byte
}

// Archive uploads synthesized outputs to an S3 bucket in the background.
// Uploads are queued; a failure is recorded in status but never blocks the
// session pipeline.
type Archive struct {
	mu sync.RWMutex

	cfg      config.ArchiveConfig
	client   *s3.Client
	queue    chan uploadRequest
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	lastUploadTime *time.Time
	lastUploadKey  string
	lastError      string

	statusCallback func()
	events         *eventlog.Logger
}

// NewArchive creates the archive worker. When S3 is not configured the
// returned Archive accepts and drops submissions.
func NewArchive(cfg config.ArchiveConfig, statusCallback func()) (*Archive, error) {
	a := &Archive{
		cfg:            cfg,
		queue:          make(chan uploadRequest, archiveQueueSize),
		stopCh:         make(chan struct{}),
		statusCallback: statusCallback,
	}

	if isConfigured(cfg) {
		client, err := createS3Client(cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 client: %w", err)
		}
		a.client = client
	}

	a.wg.Add(1)
	go a.uploadWorker()

	return a, nil
}

// SetStatusCallback registers a callback fired after every upload attempt.
func (a *Archive) SetStatusCallback(cb func()) {
	a.mu.Lock()
	a.statusCallback = cb
	a.mu.Unlock()
}

// SetEventLogger registers the event log for upload outcomes.
func (a *Archive) SetEventLogger(l *eventlog.Logger) {
	a.mu.Lock()
	a.events = l
	a.mu.Unlock()
}

// Configured reports whether an S3 target is set up.
func (a *Archive) Configured() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client != nil
}

// Submit queues a synthesized WAV for archiving under the given key.
func (a *Archive) Submit(key string, wav []byte) {
	if !a.Configured() {
		return
	}

	data := make([]byte, len(wav))
	copy(data, wav)

	select {
	case a.queue <- uploadRequest{key: key, data: data}:
		slog.Info("queued output for archive", "key", key, "bytes", len(data))
	default:
		slog.Warn("archive queue full, dropping output", "key", key)
	}
}

// Status returns the archive status snapshot.
func (a *Archive) Status() types.ArchiveStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := types.ArchiveStatus{
		Configured:    a.client != nil,
		LastUploadKey: a.lastUploadKey,
		LastError:     a.lastError,
	}
	if a.lastUploadTime != nil {
		status.LastUploadTime = a.lastUploadTime.Format(time.RFC3339)
	}
	return status
}

// UpdateConfig replaces the S3 settings, recreating the client.
func (a *Archive) UpdateConfig(cfg config.ArchiveConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = cfg
	if !isConfigured(cfg) {
		a.client = nil
		return nil
	}

	client, err := createS3Client(cfg)
	if err != nil {
		return fmt.Errorf("recreate S3 client: %w", err)
	}
	a.client = client
	return nil
}

// Stop drains the queue and stops the worker.
func (a *Archive) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
	a.wg.Wait()
}

// uploadWorker processes the upload queue.
func (a *Archive) uploadWorker() {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopCh:
			// Drain remaining items before exiting
			for {
				select {
				case req := <-a.queue:
					a.upload(req)
				default:
					return
				}
			}
		case req := <-a.queue:
			a.upload(req)
		}
	}
}

// upload pushes a single output to S3.
func (a *Archive) upload(req uploadRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	a.mu.RLock()
	client := a.client
	bucket := a.cfg.S3Bucket
	a.mu.RUnlock()

	if client == nil {
		return
	}

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(req.key),
		Body:          bytes.NewReader(req.data),
		ContentLength: aws.Int64(int64(len(req.data))),
		ContentType:   aws.String("audio/wav"),
	})

	now := time.Now()
	a.mu.Lock()
	if err != nil {
		a.lastError = err.Error()
	} else {
		a.lastUploadTime = &now
		a.lastUploadKey = req.key
		a.lastError = ""
	}
	cb := a.statusCallback
	events := a.events
	a.mu.Unlock()

	if err != nil {
		slog.Error("archive upload failed", "key", req.key, "error", err)
		events.Log(eventlog.ArchiveFailed, "", err.Error(), map[string]any{"key": req.key})
	} else {
		slog.Info("archive upload completed", "key", req.key)
		events.Log(eventlog.ArchiveUploaded, "", "", map[string]any{
			"key":   req.key,
			"bytes": len(req.data),
		})
	}

	if cb != nil {
		cb()
	}
}

// isConfigured reports whether all required S3 settings are present.
func isConfigured(cfg config.ArchiveConfig) bool {
	return cfg.S3Bucket != "" && cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != ""
}

// createS3Client creates an S3 client with static credentials.
func createS3Client(cfg config.ArchiveConfig) (*s3.Client, error) {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.S3AccessKeyID,
		cfg.S3SecretAccessKey,
		"",
	)

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = "auto"
		},
	}

	if cfg.S3Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...), nil
}

// TestConnection verifies S3 connectivity by uploading and deleting a probe
// object.
func TestConnection(cfg config.ArchiveConfig) error {
	if !isConfigured(cfg) {
		return fmt.Errorf("S3 archive is not configured")
	}

	client, err := createS3Client(cfg)
	if err != nil {
		return fmt.Errorf("create S3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	testKey := fmt.Sprintf("test-connection-%d.txt", time.Now().UnixNano())
	testContent := []byte("voice cloning studio connection test")

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3Bucket),
		Key:           aws.String(testKey),
		Body:          bytes.NewReader(testContent),
		ContentLength: aws.Int64(int64(len(testContent))),
	})
	if err != nil {
		return fmt.Errorf("upload test file: %w", err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(cfg.S3Bucket),
		Key:    aws.String(testKey),
	})
	if err != nil {
		slog.Warn("failed to delete test file", "key", testKey, "error", err)
	}

	return nil
}
