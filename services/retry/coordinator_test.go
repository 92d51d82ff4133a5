package retry

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu      sync.Mutex
	txns    map[string]*models.Transaction
	getErr  error
	listErr error
}

func newFakeStore(txns ...*models.Transaction) *fakeStore {
	f := &fakeStore{txns: make(map[string]*models.Transaction)}
	for _, txn := range txns {
		f.txns[txn.ID] = txn
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if txn, ok := f.txns[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, id string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[id]
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	if status, ok := updates["status"].(models.TransactionStatus); ok {
		txn.Status = status
	}
	if message, ok := updates["error_message"].(string); ok {
		txn.ErrorMessage = message
	}
	return nil
}

func (f *fakeStore) ListLineItems(_ context.Context, _ string) ([]models.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.LineItem{{ProductCode: "1001", SaleValue: "50", Quantity: "10.225", UnitPrice: "4.89"}}, nil
}

func (f *fakeStore) status(id string) models.TransactionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txns[id].Status
}

type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	failures int // fail this many calls, then succeed
	block    chan struct{}
}

func (f *fakeGateway) SendSale(_ context.Context, txn *models.Transaction, _ []models.LineItem) (map[string]any, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("gateway unreachable")
	}
	txn.Status = models.StatusSent
	return map[string]any{}, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(event, _, _ string, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeDLQ struct {
	mu     sync.Mutex
	parked []string
}

func (f *fakeDLQ) Park(_ context.Context, txn *models.Transaction, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parked = append(f.parked, txn.ID)
}

func (f *fakeDLQ) parkedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.parked)
}

func pendingTxn() *models.Transaction {
	return &models.Transaction{
		ID:           "txn-1",
		CompanyCode:  "C1",
		SaleCode:     "V-100",
		GatewayTxnID: "TXN-1-ABCDE",
		Status:       models.StatusFailed,
	}
}

func newTestCoordinator(store *fakeStore, gw *fakeGateway, notify *fakeNotifier, dlq *fakeDLQ) *Coordinator {
	c := NewCoordinator(context.Background(), store, gw, notify, dlq, zap.NewNop())
	c.pollEvery = 2 * time.Millisecond
	c.delays = []time.Duration{2 * time.Millisecond, 2 * time.Millisecond, 2 * time.Millisecond}
	return c
}

func TestRetry_ExhaustionAfterThreeAttempts(t *testing.T) {
	store := newFakeStore(pendingTxn())
	gw := &fakeGateway{failures: 100}
	notify := &fakeNotifier{}
	dlq := &fakeDLQ{}
	c := newTestCoordinator(store, gw, notify, dlq)

	c.Enqueue("txn-1")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, models.StatusFailed, store.status("txn-1"))
	assert.Equal(t, []string{models.EventRetryExhausted}, notify.events)
	assert.Equal(t, 1, dlq.parkedCount())

	// No further attempts are scheduled after exhaustion.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, 1, notify.count())
}

func TestRetry_LookupErrorsCountTowardCap(t *testing.T) {
	store := newFakeStore(pendingTxn())
	store.getErr = fmt.Errorf("store unavailable")
	gw := &fakeGateway{failures: 100}
	notify := &fakeNotifier{}
	dlq := &fakeDLQ{}
	c := newTestCoordinator(store, gw, notify, dlq)

	c.Enqueue("txn-1")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Zero(t, gw.callCount())
	assert.Equal(t, []string{models.EventRetryExhausted}, notify.events)
	assert.Equal(t, 1, dlq.parkedCount())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, notify.count(), "no attempts scheduled after exhaustion")
}

func TestRetry_LineItemErrorsCountTowardCap(t *testing.T) {
	store := newFakeStore(pendingTxn())
	store.listErr = fmt.Errorf("store unavailable")
	gw := &fakeGateway{failures: 100}
	notify := &fakeNotifier{}
	c := newTestCoordinator(store, gw, notify, &fakeDLQ{})

	c.Enqueue("txn-1")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Zero(t, gw.callCount())
	assert.Equal(t, models.StatusFailed, store.status("txn-1"))
	assert.Equal(t, 1, notify.count())
}

func TestRetry_SucceedsOnSecondAttempt(t *testing.T) {
	store := newFakeStore(pendingTxn())
	gw := &fakeGateway{failures: 1}
	notify := &fakeNotifier{}
	dlq := &fakeDLQ{}
	c := newTestCoordinator(store, gw, notify, dlq)

	c.Enqueue("txn-1")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, gw.callCount())
	assert.Zero(t, notify.count())
	assert.Zero(t, dlq.parkedCount())
}

func TestRetry_DropsAlreadySentSilently(t *testing.T) {
	txn := pendingTxn()
	txn.Status = models.StatusSent
	store := newFakeStore(txn)
	gw := &fakeGateway{failures: 100}
	c := newTestCoordinator(store, gw, &fakeNotifier{}, &fakeDLQ{})

	c.Enqueue("txn-1")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, gw.callCount())
}

func TestRetry_UnknownTransactionRemoved(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(store, &fakeGateway{}, &fakeNotifier{}, &fakeDLQ{})

	c.Enqueue("missing")

	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

// Exercises the production schedule: first failure waits 30s, second
// waits 60s, third exhausts. The loop never runs here; attempts are
// driven directly against a controlled clock.
func TestRetry_BackoffTiersFollowSchedule(t *testing.T) {
	store := newFakeStore(pendingTxn())
	gw := &fakeGateway{failures: 100}
	notify := &fakeNotifier{}
	dlq := &fakeDLQ{}
	c := NewCoordinator(context.Background(), store, gw, notify, dlq, zap.NewNop())
	clock := &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	c.clock = clock

	j := &job{txnID: "txn-1", nextEligible: clock.Now()}
	c.jobs[j.txnID] = j

	c.attempt(context.Background(), j)
	assert.Equal(t, 1, j.attempts)
	assert.Equal(t, clock.now.Add(30*time.Second), j.nextEligible)

	clock.now = clock.now.Add(29 * time.Second)
	assert.Empty(t, c.dueJobs(), "not yet eligible inside the first tier")
	clock.now = clock.now.Add(time.Second)
	require.Len(t, c.dueJobs(), 1)

	c.attempt(context.Background(), j)
	assert.Equal(t, 2, j.attempts)
	assert.Equal(t, clock.now.Add(time.Minute), j.nextEligible)

	clock.now = clock.now.Add(time.Minute)
	c.attempt(context.Background(), j)

	assert.Equal(t, 0, c.Pending(), "third failure exhausts")
	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, 1, notify.count())
	assert.Equal(t, 1, dlq.parkedCount())
}

func TestEnqueue_IdempotentByTransactionID(t *testing.T) {
	store := newFakeStore(pendingTxn())
	gw := &fakeGateway{failures: 100, block: make(chan struct{})}
	c := newTestCoordinator(store, gw, &fakeNotifier{}, &fakeDLQ{})

	c.Enqueue("txn-1")
	c.Enqueue("txn-1")
	c.Enqueue("txn-1")
	assert.Equal(t, 1, c.Pending())

	close(gw.block)
	require.Eventually(t, func() bool { return c.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
}
