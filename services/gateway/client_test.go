package gateway

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	// Local Packages
	errs "pdv-bridge/errors"
	models "pdv-bridge/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConfigStore struct {
	cfg *models.Configuration
}

func (f *fakeConfigStore) Active(_ context.Context) (*models.Configuration, error) {
	return f.cfg, nil
}

type fakeRuleStore struct {
	rules map[models.EntityScope][]models.FieldMapping
}

func (f *fakeRuleStore) Active(_ context.Context, scope models.EntityScope) ([]models.FieldMapping, error) {
	return f.rules[scope], nil
}

type fakeTxnStore struct {
	mu      sync.Mutex
	updates []map[string]any
}

func (f *fakeTxnStore) Update(_ context.Context, _ string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	return nil
}

func (f *fakeTxnStore) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

// fakeGatewayServer is an in-process stand-in for the loyalty gateway.
type fakeGatewayServer struct {
	*httptest.Server

	mu          sync.Mutex
	tokenCalls  int
	actionCalls int
	lastAction  map[string]any

	failTokens  bool
	failActions bool
	actionBody  map[string]any
}

func newFakeGatewayServer() *fakeGatewayServer {
	f := &fakeGatewayServer{
		actionBody: map[string]any{"status": "success"},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeGatewayServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/createtoken":
		f.tokenCalls++
		if f.failTokens {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": fmt.Sprintf("tok-%d", f.tokenCalls)})
	case "/action":
		f.actionCalls++
		_ = json.NewDecoder(r.Body).Decode(&f.lastAction)
		if f.failActions {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(f.actionBody)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGatewayServer) tokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

func (f *fakeGatewayServer) lastActionBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAction
}

func testConfig(host string) *models.Configuration {
	return &models.Configuration{
		ID:                "cfg-1",
		Name:              "default",
		GatewayHost:       host,
		GatewayTerminalID: "T001",
		GatewayAcquirerID: "A001",
		GatewayClientID:   "client-42",
		GatewayPassword:   "secret",
		GatewayCurrency:   "643",
	}
}

func newTestClient(server *fakeGatewayServer, txns *fakeTxnStore, rules map[models.EntityScope][]models.FieldMapping) *Client {
	return NewClient(
		&fakeConfigStore{cfg: testConfig(server.URL)},
		&fakeRuleStore{rules: rules},
		txns,
		5*time.Second,
		zap.NewNop(),
	)
}

func testItems() []models.LineItem {
	return []models.LineItem{
		{Sequence: 1, ProductCode: "1001", ProductName: "Diesel", SaleValue: "50", Quantity: "10.225", UnitPrice: "4.89"},
	}
}

func TestToken_CachedUntilExpiry(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	client := newTestClient(server, &fakeTxnStore{}, nil)

	current := time.Now()
	client.now = func() time.Time { return current }

	first, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	second, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", second)
	assert.Equal(t, 1, server.tokenCount())

	current = current.Add(51 * time.Minute)
	third, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", third)
	assert.Equal(t, 2, server.tokenCount())
}

func TestToken_FetchFailureIsFatal(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	server.failTokens = true
	client := newTestClient(server, &fakeTxnStore{}, nil)

	_, err := client.Token(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.Unavailable, errs.KindOf(err))
}

func TestValidateVoucher_Success(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	server.actionBody = map[string]any{
		"status":         "success",
		"additionalData": map[string]any{"balance": "25.5"},
	}
	client := newTestClient(server, &fakeTxnStore{}, nil)

	txn := &models.Transaction{SaleCode: "V-100", VoucherCode: "CARD-9", CompanyCode: "C1"}
	result := client.ValidateVoucher(context.Background(), txn)

	assert.False(t, result.Degraded)
	assert.Equal(t, models.GatewayActionValidate, result.Request["actionType"])
	assert.Equal(t, "T001", result.Request["terminalID"])

	balance, ok := result.Balance()
	require.True(t, ok)
	assert.InDelta(t, 25.5, balance, 0.001)
}

func TestValidateVoucher_DegradedOnGatewayError(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	server.failActions = true
	client := newTestClient(server, &fakeTxnStore{}, nil)

	result := client.ValidateVoucher(context.Background(), &models.Transaction{SaleCode: "V-100"})

	assert.True(t, result.Degraded)
	assert.Equal(t, "gateway call failed", result.Reason)
	assert.NotNil(t, result.Request, "request pairing survives failure")

	_, ok := result.Balance()
	assert.False(t, ok)
}

func TestValidateVoucher_DegradedWithoutConfiguration(t *testing.T) {
	client := NewClient(&fakeConfigStore{}, &fakeRuleStore{}, &fakeTxnStore{}, time.Second, zap.NewNop())

	result := client.ValidateVoucher(context.Background(), &models.Transaction{SaleCode: "V-100"})

	assert.True(t, result.Degraded)
	assert.Equal(t, "configuration unavailable", result.Reason)
}

func TestSendSale_SuccessPersistsOutcome(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	server.actionBody = map[string]any{"status": "approved"}
	txns := &fakeTxnStore{}
	client := newTestClient(server, txns, nil)

	txn := &models.Transaction{ID: "txn-1", SaleCode: "V-100", GatewayTxnID: "TXN-1-ABCDE"}
	result, err := client.SendSale(context.Background(), txn, testItems())
	require.NoError(t, err)
	require.NotNil(t, result["request"])
	require.NotNil(t, result["response"])

	updates := txns.last()
	require.NotNil(t, updates)
	assert.Equal(t, models.StatusSent, updates["status"])
	assert.Equal(t, "approved", updates["gateway_status"])
	assert.NotEmpty(t, updates["gateway_rrn"])
	assert.Len(t, updates["gateway_auth_code"], 6)

	sent := server.lastActionBody()
	assert.Equal(t, models.GatewayActionSale, sent["actionType"])
	assert.Equal(t, "5000", sent["totalAmount"], "50 units scaled to minor units")
	assert.Equal(t, "643", sent["currency"])
	assert.Equal(t, "client-42", sent["clientID"])

	additional, ok := sent["additionalData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "5000", additional["totalPcost"])

	products, ok := additional["products"].([]any)
	require.True(t, ok)
	require.Len(t, products, 1)
	product := products[0].(map[string]any)
	assert.Equal(t, "489", product["price"])
	assert.Equal(t, "10225", product["quantity"])
	assert.Equal(t, "489", product["pCost"])
	assert.Equal(t, "20", product["tax"])
	assert.Equal(t, "1001", product["barcode"])
}

func TestSendSale_TransactionRulesLayerOverDefaults(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	rules := map[models.EntityScope][]models.FieldMapping{
		models.ScopeTransaction: {
			{TargetField: "posId", SourceField: "companyCode", Kind: models.MapDirect, Active: true},
		},
	}
	client := newTestClient(server, &fakeTxnStore{}, rules)

	txn := &models.Transaction{ID: "txn-1", CompanyCode: "C1", SaleCode: "V-100"}
	_, err := client.SendSale(context.Background(), txn, testItems())
	require.NoError(t, err)

	sent := server.lastActionBody()
	assert.Equal(t, "C1", sent["posId"])
	assert.Equal(t, models.GatewayActionSale, sent["actionType"], "defaults survive rule layering")
}

func TestSendSale_FailurePersistsAndPropagates(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	server.failActions = true
	txns := &fakeTxnStore{}
	client := newTestClient(server, txns, nil)

	txn := &models.Transaction{ID: "txn-1", SaleCode: "V-100", RetryCount: 0}
	_, err := client.SendSale(context.Background(), txn, testItems())
	require.Error(t, err)
	assert.Equal(t, errs.Unavailable, errs.KindOf(err))

	updates := txns.last()
	require.NotNil(t, updates)
	assert.Equal(t, models.StatusFailed, updates["status"])
	assert.Equal(t, 1, updates["retry_count"])
	assert.NotEmpty(t, updates["error_message"])
	assert.Equal(t, 1, txn.RetryCount)
}

func TestTestConnection(t *testing.T) {
	server := newFakeGatewayServer()
	defer server.Close()
	client := newTestClient(server, &fakeTxnStore{}, nil)
	assert.NoError(t, client.TestConnection(context.Background()))

	server.failTokens = true
	client.tokenExpiry = time.Time{}
	client.token = ""
	assert.Error(t, client.TestConnection(context.Background()))
}
