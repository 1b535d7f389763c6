package storage

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultDeleteTimeout bounds a single background deletion.
const DefaultDeleteTimeout = 30 * time.Second

var imageDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_deletions_total",
		Help: "Background image deletions by outcome",
	},
	[]string{"result"},
)

// Janitor deletes images that are no longer referenced without making the
// caller wait for the outcome.
type Janitor struct {
	store   ImageStore
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewJanitor creates a Janitor deleting through store. A non-positive
// timeout selects DefaultDeleteTimeout.
func NewJanitor(store ImageStore, timeout time.Duration, logger zerolog.Logger) *Janitor {
	if timeout <= 0 {
		timeout = DefaultDeleteTimeout
	}
	return &Janitor{
		store:   store,
		timeout: timeout,
		logger:  logger.With().Str("component", "image-janitor").Logger(),
	}
}

// Schedule deletes ref in the background. Empty references are ignored.
// Failures are logged and counted, never returned.
func (j *Janitor) Schedule(ref string) {
	if ref == "" {
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		if err := j.store.Delete(ctx, ref); err != nil {
			imageDeletionsTotal.WithLabelValues("failed").Inc()
			j.logger.Warn().Err(err).Str("image", ref).Msg("orphaned image")
			return
		}

		imageDeletionsTotal.WithLabelValues("deleted").Inc()
		j.logger.Debug().Str("image", ref).Msg("image deleted")
	}()
}

// Wait blocks until every scheduled deletion finished or ctx is done.
func (j *Janitor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
