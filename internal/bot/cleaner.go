package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const deleteTimeout = 10 * time.Second

// Cleaner deletes bot replies after a delay. Deletion is best effort:
// a message that is already gone or cannot be deleted is ignored.
type Cleaner struct {
	messenger Messenger
	logger    *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*time.Timer
	stopped bool
}

// NewCleaner creates a Cleaner that deletes through messenger.
func NewCleaner(messenger Messenger, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		messenger: messenger,
		logger:    logger,
		pending:   make(map[uint64]*time.Timer),
	}
}

// Schedule deletes messageID in chatID after delay. The returned func cancels
// the deletion if it has not started yet.
func (c *Cleaner) Schedule(chatID int64, messageID int, delay time.Duration) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return func() {}
	}

	id := c.nextID
	c.nextID++
	c.pending[id] = time.AfterFunc(delay, func() {
		if !c.release(id) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()
		if err := c.messenger.Delete(ctx, chatID, messageID); err != nil {
			c.logger.Debug("Ignoring failed reply deletion",
				slog.Int64("chat_id", chatID),
				slog.Int("message_id", messageID),
				slog.String("error", err.Error()))
		}
	})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if timer, ok := c.pending[id]; ok {
			timer.Stop()
			delete(c.pending, id)
		}
	}
}

// Pending returns the number of deletions not yet started.
func (c *Cleaner) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels every pending deletion. Later calls to Schedule do nothing.
func (c *Cleaner) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for id, timer := range c.pending {
		timer.Stop()
		delete(c.pending, id)
	}
}

// release removes id from pending, reporting whether it was still scheduled.
func (c *Cleaner) release(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	return true
}
