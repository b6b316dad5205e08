package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CleanerConfig controls the concurrency characteristics of the blob cleaner.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Cleaner asynchronously deletes blobs that are no longer referenced, such
// as the video and thumbnail objects of a deleted video or a replaced
// avatar. Handlers enqueue keys and return immediately; the workers do not
// retry, a failed delete is logged and abandoned.
type Cleaner struct {
	store  BlobStore
	logger *slog.Logger

	keys   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errCleanerClosed = errors.New("blob cleaner closed")

// NewCleaner constructs a background worker pool deleting blobs from store.
func NewCleaner(store BlobStore, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Cleaner{
		store:  store,
		logger: logger,
		keys:   make(chan string, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules deletion of the blob stored under key. Empty keys are
// ignored so callers need not special-case records without a stored object.
func (c *Cleaner) Enqueue(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return errCleanerClosed
	case c.keys <- key:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding deletions.
func (c *Cleaner) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		close(c.keys)
	})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		c.cancel()
		return ctx.Err()
	case <-done:
		c.cancel()
		return nil
	}
}

func (c *Cleaner) worker() {
	defer c.wg.Done()

	for key := range c.keys {
		c.deleteKey(key)
	}
}

func (c *Cleaner) deleteKey(key string) {
	if c.store == nil {
		c.logger.Error("blob cleaner has no store configured", "key", key)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Error("delete blob", "key", key, "error", err)
		return
	}

	c.logger.Debug("blob deleted", "key", key)
}
