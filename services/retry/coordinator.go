// Package retry guarantees at-least-once gateway delivery for sale
// submissions that failed their first attempt.
package retry

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sync"
	"time"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type TxStore interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	ListLineItems(ctx context.Context, txnID string) ([]models.LineItem, error)
}

type Gateway interface {
	SendSale(ctx context.Context, txn *models.Transaction, items []models.LineItem) (map[string]any, error)
}

type Notifier interface {
	Notify(event, message, txnID string, details map[string]any)
}

// DeadLetter parks terminally failed sales for operators.
type DeadLetter interface {
	Park(ctx context.Context, txn *models.Transaction, errMessage string)
}

// job is ephemeral by design: a process restart drops pending
// redeliveries (they are not recovered from storage).
type job struct {
	txnID        string
	attempts     int
	nextEligible time.Time
}

// Coordinator schedules bounded redelivery. A single background loop
// polls due jobs sequentially; it exits when the queue drains and
// restarts lazily on the next enqueue.
type Coordinator struct {
	ctx      context.Context
	txns     TxStore
	gateway  Gateway
	notifier Notifier
	dlq      DeadLetter
	logger   *zap.Logger

	clock       Clock
	maxAttempts int
	delays      []time.Duration
	pollEvery   time.Duration

	mu      sync.Mutex
	jobs    map[string]*job
	running bool
}

func NewCoordinator(ctx context.Context, txns TxStore, gateway Gateway, notifier Notifier, dlq DeadLetter, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		ctx:         ctx,
		txns:        txns,
		gateway:     gateway,
		notifier:    notifier,
		dlq:         dlq,
		logger:      logger,
		clock:       systemClock{},
		maxAttempts: 3,
		delays:      []time.Duration{30 * time.Second, time.Minute, 5 * time.Minute},
		pollEvery:   10 * time.Second,
		jobs:        make(map[string]*job),
	}
}

// Enqueue registers a transaction for redelivery. Idempotent by
// transaction id; the first attempt is immediately due.
func (c *Coordinator) Enqueue(txnID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, queued := c.jobs[txnID]; queued {
		return
	}
	c.jobs[txnID] = &job{txnID: txnID, nextEligible: c.clock.Now()}
	c.logger.Info("transaction queued for redelivery", zap.String("id", txnID))

	if !c.running {
		c.running = true
		go c.loop()
	}
}

// Pending reports the number of queued jobs.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

func (c *Coordinator) loop() {
	for {
		for _, j := range c.dueJobs() {
			c.attempt(c.ctx, j)
		}

		c.mu.Lock()
		if len(c.jobs) == 0 || c.ctx.Err() != nil {
			c.running = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		select {
		case <-c.ctx.Done():
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return
		case <-time.After(c.pollEvery):
		}
	}
}

func (c *Coordinator) dueJobs() []*job {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	var due []*job
	for _, j := range c.jobs {
		if !j.nextEligible.After(now) {
			due = append(due, j)
		}
	}
	return due
}

func (c *Coordinator) remove(txnID string) {
	c.mu.Lock()
	delete(c.jobs, txnID)
	c.mu.Unlock()
}

func (c *Coordinator) attempt(ctx context.Context, j *job) {
	txn, err := c.txns.GetByID(ctx, j.txnID)
	if err != nil {
		c.logger.Error("retry lookup failed", zap.String("id", j.txnID), zap.Error(err))
		c.fail(ctx, j, &models.Transaction{ID: j.txnID}, err)
		return
	}
	if txn == nil {
		c.remove(j.txnID)
		return
	}

	// Settled through another path; drop silently.
	if txn.Status == models.StatusSent {
		c.remove(j.txnID)
		return
	}

	c.logger.Info("retrying gateway delivery",
		zap.String("sale_code", txn.SaleCode),
		zap.Int("attempt", j.attempts+1), zap.Int("max", c.maxAttempts))

	items, err := c.txns.ListLineItems(ctx, j.txnID)
	if err != nil {
		c.logger.Error("retry line item lookup failed", zap.String("id", j.txnID), zap.Error(err))
		c.fail(ctx, j, txn, err)
		return
	}

	if _, err := c.gateway.SendSale(ctx, txn, items); err != nil {
		c.fail(ctx, j, txn, err)
		return
	}

	c.remove(j.txnID)
	c.logger.Info("sale delivered on retry",
		zap.String("sale_code", txn.SaleCode), zap.Int("attempt", j.attempts+1))
}

// fail counts one attempt against the cap and either schedules the next
// tier or exhausts the job. Repository errors count the same as gateway
// errors so the cap always terminates.
func (c *Coordinator) fail(ctx context.Context, j *job, txn *models.Transaction, cause error) {
	j.attempts++
	if j.attempts >= c.maxAttempts {
		c.exhaust(ctx, txn, cause)
		return
	}
	delay := c.delays[len(c.delays)-1]
	if j.attempts-1 < len(c.delays) {
		delay = c.delays[j.attempts-1]
	}
	j.nextEligible = c.clock.Now().Add(delay)
	c.logger.Warn("retry scheduled",
		zap.String("sale_code", txn.SaleCode),
		zap.Duration("delay", delay),
		zap.Int("attempt", j.attempts), zap.Int("max", c.maxAttempts))
}

// exhaust converts the transient failure into a terminal one: the
// transaction is marked failed, a retry-exhausted notification fires
// once, and the sale is parked in the dead-letter store.
func (c *Coordinator) exhaust(ctx context.Context, txn *models.Transaction, cause error) {
	c.remove(txn.ID)

	message := fmt.Sprintf("max retry attempts reached: %s", cause.Error())
	updates := map[string]any{
		"status":        models.StatusFailed,
		"error_message": message,
	}
	if err := c.txns.Update(ctx, txn.ID, updates); err != nil {
		c.logger.Error("failed to persist exhaustion", zap.String("id", txn.ID), zap.Error(err))
	}

	c.logger.Error("delivery abandoned after max retries",
		zap.String("sale_code", txn.SaleCode), zap.Int("max", c.maxAttempts))

	c.notifier.Notify(models.EventRetryExhausted, message, txn.ID, map[string]any{"error": cause.Error()})
	c.dlq.Park(ctx, txn, message)
}
