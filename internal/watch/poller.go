// Package watch detects external changes to the storage backend by
// polling its version counter. It is the fallback change-notification
// path for deployments without a message broker.
package watch

import (
	"context"
	"time"

	"outlay/internal/blob"
	"outlay/internal/log"
)

// Poller compares the backend version against the last version the
// application synchronized with and fires onChange when they diverge.
type Poller struct {
	storage  blob.Storage
	key      string
	interval time.Duration
	known    func() int64
	onChange func(ctx context.Context, version int64)
	logger   *log.Logger
}

// NewPoller builds a poller. known reports the version the in-memory
// collection currently reflects; onChange is called with the newer
// backend version whenever they differ.
func NewPoller(storage blob.Storage, key string, interval time.Duration, known func() int64, onChange func(ctx context.Context, version int64), logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWatch)
	}
	return &Poller{
		storage:  storage,
		key:      key,
		interval: interval,
		known:    known,
		onChange: onChange,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. Read errors are logged and
// the poller keeps going; a transiently unreadable backend must not kill
// change detection.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.InfoContext(ctx, "Watching storage for external changes",
		log.FieldStorageKey, p.key, "interval", p.interval.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *Poller) check(ctx context.Context) {
	v, err := p.storage.Version(ctx, p.key)
	if err != nil {
		p.logger.WarnContext(ctx, "Could not read storage version",
			log.FieldStorageKey, p.key, log.FieldError, err)
		return
	}
	if v == p.known() {
		return
	}
	p.logger.InfoContext(ctx, "Detected external storage change",
		log.FieldStorageKey, p.key, log.FieldVersion, v)
	p.onChange(ctx, v)
}
