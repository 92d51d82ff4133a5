// Package sales drives the transaction lifecycle: terminal
// authentication, voucher validation, sale submission and cancellation.
package sales

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errs "pdv-bridge/errors"
	models "pdv-bridge/models"
	utils "pdv-bridge/utils"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TxStore interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetBySaleCode(ctx context.Context, companyCode, saleCode string) (*models.Transaction, error)
	Create(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, id string, updates map[string]any) error
	ReplaceLineItems(ctx context.Context, txnID string, items []models.LineItem) error
	ListLineItems(ctx context.Context, txnID string) ([]models.LineItem, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

type Gateway interface {
	ValidateVoucher(ctx context.Context, txn *models.Transaction) models.VoucherResult
	SendSale(ctx context.Context, txn *models.Transaction, items []models.LineItem) (map[string]any, error)
}

type ConfigStore interface {
	Active(ctx context.Context) (*models.Configuration, error)
}

type LogStore interface {
	Insert(ctx context.Context, entry *models.IntegrationLog) error
}

// Enqueuer hands a failed sale to the retry coordinator.
type Enqueuer interface {
	Enqueue(txnID string)
}

type Processor struct {
	configs ConfigStore
	txns    TxStore
	gateway Gateway
	retries Enqueuer
	audit   LogStore
	logger  *zap.Logger
}

func NewProcessor(configs ConfigStore, txns TxStore, gateway Gateway, retries Enqueuer, audit LogStore, logger *zap.Logger) *Processor {
	return &Processor{configs: configs, txns: txns, gateway: gateway, retries: retries, audit: audit, logger: logger}
}

// Authenticate is a stateless credential comparison against the active
// profile; it issues an opaque token the core does not itself validate.
func (p *Processor) Authenticate(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	ve := errs.ValidationErrs()
	if req.User == "" {
		ve.Add("user", "cannot be empty")
	}
	if req.Password == "" {
		ve.Add("password", "cannot be empty")
	}
	if req.CompanyCode == "" {
		ve.Add("companyCode", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return nil, errs.ValidationFailedErr(err)
	}

	cfg, err := p.configs.Active(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		p.log(ctx, "error", "terminal", "auth", "authentication failed: configuration not found", "", nil)
		return nil, errs.ConfigurationMissingErr()
	}

	if req.User != cfg.TerminalUser || req.Password != cfg.TerminalPassword || req.CompanyCode != cfg.TerminalCompanyCode {
		p.log(ctx, "error", "terminal", "auth", "authentication failed: invalid credentials", "", map[string]any{"user": req.User})
		return nil, errs.CredentialMismatchErr()
	}

	p.log(ctx, "info", "terminal", "auth", "authentication successful", "", map[string]any{"user": req.User})
	return &models.AuthResponse{BearerToken: utils.NewBearerToken()}, nil
}

// Validate upserts the sale by (companyCode, saleCode), replaces its line
// items and enriches the response with the voucher balance. An existing
// gateway transaction id is always preserved; gateway failure degrades to
// cashback zero instead of failing the validation.
func (p *Processor) Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidateResponse, error) {
	ve := errs.ValidationErrs()
	if req.CompanyCode == "" {
		ve.Add("companyCode", "cannot be empty")
	}
	if req.SaleCode == "" {
		ve.Add("saleCode", "cannot be empty")
	}
	if req.VoucherCode == "" {
		ve.Add("voucherCode", "cannot be empty")
	}
	if len(req.Products) == 0 {
		ve.Add("products", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return nil, errs.ValidationFailedErr(err)
	}

	txn, err := p.txns.GetBySaleCode(ctx, req.CompanyCode, req.SaleCode)
	if err != nil {
		return nil, err
	}

	rawPayload := map[string]any{
		"companyCode": req.CompanyCode,
		"saleCode":    req.SaleCode,
		"voucherCode": req.VoucherCode,
		"saleDate":    req.SaleDate,
		"saleTime":    req.SaleTime,
		"products":    len(req.Products),
	}

	if txn != nil {
		// Re-validation keeps the existing gateway transaction id.
		if txn.GatewayTxnID == "" {
			txn.GatewayTxnID = utils.NewGatewayTxnID()
		}
		txn.VoucherCode = req.VoucherCode
		txn.SaleDate = req.SaleDate
		txn.SaleTime = req.SaleTime
		txn.Status = models.StatusValidated
		updates := map[string]any{
			"voucher_code":     req.VoucherCode,
			"sale_date":        req.SaleDate,
			"sale_time":        req.SaleTime,
			"gateway_txn_id":   txn.GatewayTxnID,
			"status":           models.StatusValidated,
			"terminal_payload": rawPayload,
		}
		if err := p.txns.Update(ctx, txn.ID, updates); err != nil {
			return nil, err
		}
	} else {
		gatewayTxnID := req.GatewayTxnID
		if gatewayTxnID == "" {
			gatewayTxnID = utils.NewGatewayTxnID()
		}
		txn = &models.Transaction{
			CompanyCode:     req.CompanyCode,
			SaleCode:        req.SaleCode,
			VoucherCode:     req.VoucherCode,
			SaleDate:        req.SaleDate,
			SaleTime:        req.SaleTime,
			GatewayTxnID:    gatewayTxnID,
			CodeType:        "P",
			Status:          models.StatusValidated,
			TerminalPayload: rawPayload,
		}
		if err := p.txns.Create(ctx, txn); err != nil {
			return nil, err
		}
	}

	// Line items are replaced wholesale on every validation.
	items := make([]models.LineItem, len(req.Products))
	for i, product := range req.Products {
		items[i] = lineItemFromProduct(product)
	}
	if err := p.txns.ReplaceLineItems(ctx, txn.ID, items); err != nil {
		return nil, err
	}

	cashback := 0.0
	result := p.gateway.ValidateVoucher(ctx, txn)
	if result.Degraded {
		p.log(ctx, "warning", "gateway", "validate",
			"voucher balance check degraded, continuing without balance: "+result.Reason, txn.ID, nil)
	} else if balance, ok := result.Balance(); ok {
		cashback = balance
		if err := p.txns.Update(ctx, txn.ID, map[string]any{"cashback": cashback}); err != nil {
			return nil, err
		}
	}

	p.log(ctx, "info", "terminal", "validate", "voucher validated: "+req.VoucherCode, txn.ID,
		map[string]any{"gatewayTxnId": txn.GatewayTxnID, "cashback": cashback, "products": len(items)})

	return &models.ValidateResponse{
		GatewayTxnID: txn.GatewayTxnID,
		CodeType:     txn.CodeType,
		Cashback:     cashback,
		Products:     req.Products,
		PaymentTypes: []int{0}, // all payment types accepted
	}, nil
}

// Send persists the sale's payments and attempts gateway delivery. A
// gateway transaction id mismatch is a hard error raised before any HTTP
// call. Delivery failure is handed to the retry coordinator and the
// terminal is still acknowledged.
func (p *Processor) Send(ctx context.Context, req models.SendRequest) (*models.SendResponse, error) {
	ve := errs.ValidationErrs()
	if req.CompanyCode == "" {
		ve.Add("companyCode", "cannot be empty")
	}
	if req.SaleCode == "" {
		ve.Add("saleCode", "cannot be empty")
	}
	if req.GatewayTxnID == "" {
		ve.Add("gatewayTxnId", "cannot be empty")
	}
	if len(req.Products) == 0 {
		ve.Add("products", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return nil, errs.ValidationFailedErr(err)
	}

	txn, err := p.txns.GetBySaleCode(ctx, req.CompanyCode, req.SaleCode)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.TransactionNotFoundErr(req.CompanyCode, req.SaleCode)
	}

	if txn.GatewayTxnID != req.GatewayTxnID {
		p.log(ctx, "error", "terminal", "send", "gateway transaction id mismatch", txn.ID,
			map[string]any{"stored": txn.GatewayTxnID, "received": req.GatewayTxnID})
		return nil, errs.StateMismatchErr(txn.GatewayTxnID, req.GatewayTxnID)
	}

	for _, payment := range req.Payments {
		record := &models.Payment{
			TransactionID:     txn.ID,
			MethodDescription: payment.MethodDescription,
			PaymentType:       payment.PaymentType,
			Amount:            decimal.NewFromFloat(payment.Amount).String(),
			ExternalMethodID:  payment.ExternalMethodID,
		}
		if err := p.txns.CreatePayment(ctx, record); err != nil {
			return nil, err
		}
	}

	items, err := p.txns.ListLineItems(ctx, txn.ID)
	if err != nil {
		return nil, err
	}

	ack := &models.SendResponse{
		CompanyCode:  req.CompanyCode,
		SaleCode:     req.SaleCode,
		GatewayTxnID: txn.GatewayTxnID,
	}

	if _, err := p.gateway.SendSale(ctx, txn, items); err != nil {
		// Delivery is fire-and-forget from the terminal's point of view;
		// the retry coordinator owns the sale from here.
		p.log(ctx, "warning", "terminal", "send",
			"sale received but gateway delivery failed, queued for retry: "+err.Error(), txn.ID, nil)
		p.retries.Enqueue(txn.ID)
		return ack, nil
	}

	p.log(ctx, "info", "terminal", "send", "sale sent to gateway: "+req.SaleCode, txn.ID, nil)
	return ack, nil
}

// Cancel sets the transaction cancelled. The status is set
// unconditionally, matching long-standing terminal behavior; an illegal
// transition (e.g. cancelling a sent sale) is logged, not rejected.
func (p *Processor) Cancel(ctx context.Context, req models.CancelRequest) (*models.CancelResponse, error) {
	ve := errs.ValidationErrs()
	if req.CompanyCode == "" {
		ve.Add("companyCode", "cannot be empty")
	}
	if req.SaleCode == "" {
		ve.Add("saleCode", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return nil, errs.ValidationFailedErr(err)
	}

	txn, err := p.txns.GetBySaleCode(ctx, req.CompanyCode, req.SaleCode)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.TransactionNotFoundErr(req.CompanyCode, req.SaleCode)
	}

	if !CanTransition(txn.Status, models.StatusCancelled) {
		p.logger.Warn("cancelling transaction outside the legal transition table",
			zap.String("sale_code", txn.SaleCode), zap.String("status", string(txn.Status)))
	}

	if err := p.txns.Update(ctx, txn.ID, map[string]any{"status": models.StatusCancelled}); err != nil {
		return nil, err
	}

	p.log(ctx, "info", "terminal", "cancel", "sale cancelled: "+req.SaleCode, txn.ID, nil)

	return &models.CancelResponse{
		CompanyCode:  req.CompanyCode,
		SaleCode:     req.SaleCode,
		GatewayTxnID: txn.GatewayTxnID,
		Success:      true,
	}, nil
}

func (p *Processor) log(ctx context.Context, level, source, action, message, txnID string, details map[string]any) {
	entry := &models.IntegrationLog{
		TransactionID: txnID,
		Level:         level,
		Source:        source,
		Action:        action,
		Message:       message,
		Details:       details,
	}
	if err := p.audit.Insert(ctx, entry); err != nil {
		p.logger.Error("failed to persist integration log", zap.Error(err))
	}
}

func lineItemFromProduct(product models.SaleProduct) models.LineItem {
	return models.LineItem{
		Sequence:     product.Sequence,
		OperatorCode: product.OperatorCode,
		OperatorName: product.OperatorName,
		ProductCode:  product.ProductCode,
		ProductName:  product.ProductName,
		SaleValue:    decimal.NewFromFloat(product.SaleValue).String(),
		Quantity:     decimal.NewFromFloat(product.Quantity).String(),
		UnitPrice:    decimal.NewFromFloat(product.UnitPrice).String(),
	}
}
