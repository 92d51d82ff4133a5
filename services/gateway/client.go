// Package gateway owns the loyalty gateway: token lifecycle, request
// construction through the field-mapping layer, HTTP submission and
// outcome classification.
package gateway

import (
	// Go Internal Packages
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	// Local Packages
	errs "pdv-bridge/errors"
	models "pdv-bridge/models"
	transform "pdv-bridge/services/transform"
	utils "pdv-bridge/utils"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tokens are nominally valid for an hour; cache conservatively below
// that to avoid racing expiry.
const tokenTTL = 50 * time.Minute

type ConfigStore interface {
	Active(ctx context.Context) (*models.Configuration, error)
}

type RuleStore interface {
	Active(ctx context.Context, scope models.EntityScope) ([]models.FieldMapping, error)
}

type TransactionStore interface {
	Update(ctx context.Context, id string, updates map[string]any) error
}

type Client struct {
	configs ConfigStore
	rules   RuleStore
	txns    TransactionStore
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time

	// Cached fields are mutex-guarded for data-race safety; the fetch
	// itself is deliberately not single-flighted, so concurrent callers
	// past expiry may each request a token. Tokens are idempotent to
	// acquire.
	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(configs ConfigStore, rules RuleStore, txns TransactionStore, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		configs: configs,
		rules:   rules,
		txns:    txns,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Client) activeConfig(ctx context.Context) (*models.Configuration, error) {
	cfg, err := c.configs.Active(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errs.ConfigurationMissingErr()
	}
	return cfg, nil
}

// Token returns a cached gateway token, transparently refetching past
// expiry. Fetch failure is fatal to the calling operation.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	cfg, err := c.activeConfig(ctx)
	if err != nil {
		return "", err
	}

	reqBody := models.TokenRequest{
		TerminalID: cfg.GatewayTerminalID,
		AcquirerID: cfg.GatewayAcquirerID,
		Language:   "en",
		Password:   cfg.GatewayPassword,
	}

	c.logger.Info("requesting gateway token", zap.String("terminal_id", reqBody.TerminalID))

	var tokenResp models.TokenResponse
	if err := c.post(ctx, cfg.GatewayHost+"/createtoken", "", reqBody, &tokenResp); err != nil {
		c.logger.Error("gateway token request failed", zap.Error(err))
		return "", errs.GatewayErr("token", err)
	}

	c.mu.Lock()
	c.token = tokenResp.Token
	c.tokenExpiry = c.now().Add(tokenTTL)
	c.mu.Unlock()

	return tokenResp.Token, nil
}

// ValidateVoucher checks the voucher balance of a sale. It never returns
// an error: gateway failure here degrades the result instead of aborting
// the validate flow, because the balance is an enrichment.
func (c *Client) ValidateVoucher(ctx context.Context, txn *models.Transaction) models.VoucherResult {
	// Build the request before anything that can fail so the pairing
	// exists for observability even on failure.
	request := map[string]any{
		"actionType": models.GatewayActionValidate,
		"terminalID": "unknown",
		"acquirerID": "unknown",
		"created":    c.now().UTC().Format(time.RFC3339),
		"clientID":   txn.VoucherCode,
	}

	degraded := func(reason string, err error) models.VoucherResult {
		c.logger.Warn("voucher validation degraded",
			zap.String("sale_code", txn.SaleCode), zap.String("reason", reason), zap.Error(err))
		return models.VoucherResult{Request: request, Degraded: true, Reason: reason}
	}

	cfg, err := c.activeConfig(ctx)
	if err != nil {
		return degraded("configuration unavailable", err)
	}
	request["terminalID"] = cfg.GatewayTerminalID
	request["acquirerID"] = cfg.GatewayAcquirerID

	token, err := c.Token(ctx)
	if err != nil {
		return degraded("token fetch failed", err)
	}

	rules, err := c.rules.Active(ctx, models.ScopeValidate)
	if err != nil {
		return degraded("mapping rules unavailable", err)
	}
	for field, value := range transform.Apply(transactionSource(txn, nil), rules) {
		request[field] = value
	}

	c.logger.Info("validating voucher with gateway",
		zap.String("sale_code", txn.SaleCode), zap.String("voucher", txn.VoucherCode))

	var response map[string]any
	if err := c.post(ctx, cfg.GatewayHost+"/action", token, request, &response); err != nil {
		return degraded("gateway call failed", err)
	}

	return models.VoucherResult{Request: request, Response: response}
}

// SendSale submits a settled sale. On success the transaction is
// persisted as sent with the gateway's status, RRN and auth code; on
// failure it is persisted as failed with an incremented retry count and
// the error propagates so the retry path takes over.
func (c *Client) SendSale(ctx context.Context, txn *models.Transaction, items []models.LineItem) (map[string]any, error) {
	cfg, err := c.activeConfig(ctx)
	if err != nil {
		return nil, c.failSale(ctx, txn, err)
	}
	token, err := c.Token(ctx)
	if err != nil {
		return nil, c.failSale(ctx, txn, err)
	}

	productRules, err := c.rules.Active(ctx, models.ScopeProduct)
	if err != nil {
		return nil, c.failSale(ctx, txn, err)
	}
	txnRules, err := c.rules.Active(ctx, models.ScopeTransaction)
	if err != nil {
		return nil, c.failSale(ctx, txn, err)
	}

	products := make([]map[string]string, len(items))
	for i, item := range items {
		if len(productRules) > 0 {
			products[i] = transform.Apply(lineItemSource(item), productRules)
		} else {
			products[i] = defaultProductShape(item)
		}
	}

	totalAmount := decimal.Zero
	totalCost := decimal.Zero
	for _, item := range items {
		totalAmount = totalAmount.Add(parseDecimal(item.SaleValue).Mul(decimal.NewFromInt(100)))
		cost := item.GatewayCost
		if cost == "" {
			cost = item.UnitPrice
		}
		totalCost = totalCost.Add(parseDecimal(cost).Mul(parseDecimal(item.Quantity)))
	}
	totalAmountStr := totalAmount.Round(0).String()
	totalCostStr := totalCost.Mul(decimal.NewFromInt(100)).Round(0).String()

	rrn := fmt.Sprintf("%d", c.now().UnixMilli())
	authCode := utils.NewAuthCode()
	created := c.now().UTC().Format(time.RFC3339)

	source := transactionSource(txn, map[string]any{
		"rrn":         rrn,
		"totalAmount": totalAmountStr,
		"totalPcost":  totalCostStr,
		"created":     created,
		"authCode":    authCode,
	})

	request := map[string]any{
		"actionType": models.GatewayActionSale,
		"terminalID": cfg.GatewayTerminalID,
		"acquirerID": cfg.GatewayAcquirerID,
		"created":    created,
		"clientID":   cfg.GatewayClientID,
		"rrn":        rrn,
		"totalAmount": totalAmountStr,
		"additionalData": map[string]any{
			"products":   products,
			"totalPcost": totalCostStr,
		},
		"currency": cfg.GatewayCurrency,
		"authCode": authCode,
	}
	// Transaction-scope rules layer over the computed defaults.
	for field, value := range transform.Apply(source, txnRules) {
		request[field] = value
	}

	c.logger.Info("sending sale to gateway",
		zap.String("sale_code", txn.SaleCode), zap.String("rrn", rrn), zap.Int("products", len(products)))

	var response map[string]any
	if err := c.post(ctx, cfg.GatewayHost+"/action", token, request, &response); err != nil {
		return nil, c.failSale(ctx, txn, err)
	}

	gatewayStatus := "success"
	if s, ok := response["status"].(string); ok && s != "" {
		gatewayStatus = s
	}
	updates := map[string]any{
		"status":            models.StatusSent,
		"gateway_status":    gatewayStatus,
		"gateway_rrn":       rrn,
		"gateway_auth_code": authCode,
		"gateway_payload":   request,
	}
	if err := c.txns.Update(ctx, txn.ID, updates); err != nil {
		return nil, err
	}

	c.logger.Info("sale sent to gateway", zap.String("sale_code", txn.SaleCode), zap.String("gateway_status", gatewayStatus))

	return map[string]any{"request": request, "response": response}, nil
}

// TestConnection attempts a token fetch only; no transaction state is
// touched.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Token(ctx)
	return err
}

func (c *Client) failSale(ctx context.Context, txn *models.Transaction, cause error) error {
	c.logger.Error("gateway sale submission failed",
		zap.String("sale_code", txn.SaleCode), zap.Error(cause))

	updates := map[string]any{
		"status":        models.StatusFailed,
		"error_message": cause.Error(),
		"retry_count":   txn.RetryCount + 1,
	}
	if err := c.txns.Update(ctx, txn.ID, updates); err != nil {
		c.logger.Error("failed to persist sale failure", zap.String("id", txn.ID), zap.Error(err))
	}
	txn.RetryCount++

	return errs.GatewayErr("send", cause)
}

func (c *Client) post(ctx context.Context, url, bearer string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(raw))
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// transactionSource exposes a transaction to the mapping layer as a
// field-addressable record, merged with any computed extras.
func transactionSource(txn *models.Transaction, extra map[string]any) map[string]any {
	source := map[string]any{
		"companyCode":  txn.CompanyCode,
		"saleCode":     txn.SaleCode,
		"voucherCode":  txn.VoucherCode,
		"saleDate":     txn.SaleDate,
		"saleTime":     txn.SaleTime,
		"gatewayTxnId": txn.GatewayTxnID,
		"codeType":     txn.CodeType,
		"cashback":     txn.Cashback,
	}
	for k, v := range extra {
		source[k] = v
	}
	return source
}

func lineItemSource(item models.LineItem) map[string]any {
	return map[string]any{
		"sequence":     item.Sequence,
		"operatorCode": item.OperatorCode,
		"operatorName": item.OperatorName,
		"productCode":  item.ProductCode,
		"productName":  item.ProductName,
		"saleValue":    item.SaleValue,
		"quantity":     item.Quantity,
		"unitPrice":    item.UnitPrice,
		"cost":         item.GatewayCost,
		"tax":          item.GatewayTax,
		"barcode":      item.GatewayBarcode,
		"group":        item.GatewayGroup,
		"productId":    item.GatewayProductID,
	}
}

// defaultProductShape keeps the system usable with zero configured
// product rules.
func defaultProductShape(item models.LineItem) map[string]string {
	cost := item.GatewayCost
	if cost == "" {
		cost = item.UnitPrice
	}
	tax := item.GatewayTax
	if tax == "" {
		tax = "20"
	}
	barcode := item.GatewayBarcode
	if barcode == "" {
		barcode = item.ProductCode
	}
	group := item.GatewayGroup
	if group == "" {
		group = "default"
	}
	return map[string]string{
		"name":           item.ProductName,
		"productId":      item.ProductCode,
		"pCost":          scaleAmount(cost, 100),
		"price":          scaleAmount(item.UnitPrice, 100),
		"quantity":       scaleAmount(item.Quantity, 1000),
		"markupDiscount": "0",
		"tax":            tax,
		"barcode":        barcode,
		"group":          group,
		"flag":           "",
	}
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func scaleAmount(raw string, factor int64) string {
	return parseDecimal(raw).Mul(decimal.NewFromInt(factor)).Round(0).String()
}
