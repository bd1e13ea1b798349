// Package workers provides background job processors.
package workers

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

const (
	// DefaultCheckInterval is how often the worker sweeps open carts
	DefaultCheckInterval = 15 * time.Minute

	// SweepBatchSize is the number of carts processed per sweep
	SweepBatchSize = 100
)

// CartLifecycleStats tracks sweep results
type CartLifecycleStats struct {
	CartsAbandoned int64     `json:"cartsAbandoned"`
	CartsExpired   int64     `json:"cartsExpired"`
	LastRunAt      time.Time `json:"lastRunAt,omitempty"`
}

// CartLifecycleWorker marks inactive open carts ABANDONED and, after a
// longer quiet period, EXPIRED. Abandonments are published for recovery
// campaigns.
type CartLifecycleWorker struct {
	carts     *repository.CartsRepository
	publisher *events.Publisher
	logger    *logrus.Entry

	abandonAfter time.Duration
	expireAfter  time.Duration
	interval     time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.Mutex
	running  bool
	stats    CartLifecycleStats
}

func NewCartLifecycleWorker(carts *repository.CartsRepository, publisher *events.Publisher, abandonMinutes, expireDays int, logger *logrus.Logger) *CartLifecycleWorker {
	if abandonMinutes <= 0 {
		abandonMinutes = 120
	}
	if expireDays <= 0 {
		expireDays = 30
	}
	return &CartLifecycleWorker{
		carts:        carts,
		publisher:    publisher,
		logger:       logger.WithField("component", "cart-lifecycle-worker"),
		abandonAfter: time.Duration(abandonMinutes) * time.Minute,
		expireAfter:  time.Duration(expireDays) * 24 * time.Hour,
		interval:     DefaultCheckInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the sweep loop
func (w *CartLifecycleWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithFields(logrus.Fields{
		"interval":     w.interval.String(),
		"abandonAfter": w.abandonAfter.String(),
		"expireAfter":  w.expireAfter.String(),
	}).Info("Cart lifecycle worker started")
}

// Stop stops the sweep loop and waits for the current sweep to finish
func (w *CartLifecycleWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Cart lifecycle worker stopped")
}

// ForceRun triggers an immediate sweep
func (w *CartLifecycleWorker) ForceRun() {
	w.sweep()
}

// Stats returns the accumulated sweep counters
func (w *CartLifecycleWorker) Stats() CartLifecycleStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *CartLifecycleWorker) run() {
	defer close(w.doneChan)

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CartLifecycleWorker) sweep() {
	abandoned := w.abandonInactive()
	expired := w.expireAbandoned()

	w.mu.Lock()
	w.stats.CartsAbandoned += abandoned
	w.stats.CartsExpired += expired
	w.stats.LastRunAt = time.Now()
	w.mu.Unlock()

	if abandoned > 0 || expired > 0 {
		w.logger.WithFields(logrus.Fields{
			"abandoned": abandoned,
			"expired":   expired,
		}).Info("Cart sweep completed")
	}
}

func (w *CartLifecycleWorker) abandonInactive() int64 {
	cutoff := time.Now().Add(-w.abandonAfter)
	carts, err := w.carts.FindInactiveCarts(cutoff, SweepBatchSize)
	if err != nil {
		w.logger.WithError(err).Error("Failed to query inactive carts")
		return 0
	}

	var count int64
	for _, cart := range carts {
		if err := w.carts.UpdateCartStatus(cart.ID, models.CartStatusAbandoned); err != nil {
			w.logger.WithError(err).WithField("cartId", cart.ID).Error("Failed to abandon cart")
			continue
		}
		count++
		if w.publisher != nil {
			w.publisher.PublishCartAbandoned(events.CartEvent{
				CartID:     cart.ID.String(),
				CustomerID: cart.CustomerID.String(),
				ItemCount:  cart.ItemCount,
				Subtotal:   cart.Subtotal,
			})
		}
	}
	return count
}

func (w *CartLifecycleWorker) expireAbandoned() int64 {
	cutoff := time.Now().Add(-w.expireAfter)
	carts, err := w.carts.FindAbandonedCartsBefore(cutoff, SweepBatchSize)
	if err != nil {
		w.logger.WithError(err).Error("Failed to query abandoned carts")
		return 0
	}

	var count int64
	for _, cart := range carts {
		if err := w.carts.UpdateCartStatus(cart.ID, models.CartStatusExpired); err != nil {
			w.logger.WithError(err).WithField("cartId", cart.ID).Error("Failed to expire cart")
			continue
		}
		count++
	}
	return count
}
