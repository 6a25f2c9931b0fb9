// Package compaction runs a store's Compact operation on a fixed interval
// in the background, so callers don't have to trigger it by hand.
package compaction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/pkg/kvstore"
)

// compactor is the minimal surface this package needs from a store.
type compactor interface {
	Compact(ctx context.Context) error
}

// Compaction runs store.Compact every interval until Stop is called.
type Compaction struct {
	interval time.Duration
	log      *zap.SugaredLogger
	stop     chan struct{}
	done     chan struct{}
}

// Config holds the dependencies the background loop needs.
type Config[K any, V any] struct {
	Store    kvstore.Store[K, V]
	Interval time.Duration
	Logger   *zap.SugaredLogger
}

// New starts a background goroutine that calls config.Store.Compact every
// config.Interval, logging (but not propagating) any error it returns.
func New[K any, V any](config *Config[K, V]) *Compaction {
	c := &Compaction{
		interval: config.Interval,
		log:      config.Logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go c.run(config.Store)
	return c
}

func (c *Compaction) run(store compactor) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.interval)
			if err := store.Compact(ctx); err != nil {
				c.log.Errorw("background compaction failed", "error", err)
			} else {
				c.log.Infow("background compaction completed")
			}
			cancel()
		case <-c.stop:
			return
		}
	}
}

// Stop signals the background loop to exit and waits for it to do so.
func (c *Compaction) Stop() {
	close(c.stop)
	<-c.done
}
