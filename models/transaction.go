package models

import "time"

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusValidated TransactionStatus = "validated"
	StatusSent      TransactionStatus = "sent"
	StatusCancelled TransactionStatus = "cancelled"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is the unit of work tracked from terminal receipt to gateway
// settlement. (CompanyCode, SaleCode) is the natural key; GatewayTxnID is
// minted once at first validation and never reassigned.
type Transaction struct {
	ID          string `json:"id" bson:"_id"`
	CompanyCode string `json:"companyCode" bson:"company_code"`
	SaleCode    string `json:"saleCode" bson:"sale_code"`
	VoucherCode string `json:"voucherCode" bson:"voucher_code"`
	SaleDate    string `json:"saleDate" bson:"sale_date"`
	SaleTime    string `json:"saleTime" bson:"sale_time"`

	GatewayTxnID string  `json:"gatewayTxnId" bson:"gateway_txn_id"`
	CodeType     string  `json:"codeType" bson:"code_type"` // P = points, D = discount, R = cashback
	Cashback     float64 `json:"cashback" bson:"cashback"`

	Status          TransactionStatus `json:"status" bson:"status"`
	GatewayStatus   string            `json:"gatewayStatus" bson:"gateway_status"`
	GatewayRRN      string            `json:"gatewayRrn" bson:"gateway_rrn"`
	GatewayAuthCode string            `json:"gatewayAuthCode" bson:"gateway_auth_code"`

	TerminalPayload map[string]any `json:"terminalPayload,omitempty" bson:"terminal_payload,omitempty"`
	GatewayPayload  map[string]any `json:"gatewayPayload,omitempty" bson:"gateway_payload,omitempty"`

	ErrorMessage string `json:"errorMessage,omitempty" bson:"error_message,omitempty"`
	RetryCount   int    `json:"retryCount" bson:"retry_count"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// LineItem is a product row belonging to a transaction. The full set is
// replaced on every re-validation of the same sale. Monetary fields are
// decimal strings, matching the gateway's string-typed wire format.
type LineItem struct {
	ID            string `json:"id" bson:"_id"`
	TransactionID string `json:"transactionId" bson:"transaction_id"`

	Sequence     int    `json:"sequence" bson:"sequence"`
	OperatorCode string `json:"operatorCode" bson:"operator_code"`
	OperatorName string `json:"operatorName" bson:"operator_name"`
	ProductCode  string `json:"productCode" bson:"product_code"`
	ProductName  string `json:"productName" bson:"product_name"`
	SaleValue    string `json:"saleValue" bson:"sale_value"`
	Quantity     string `json:"quantity" bson:"quantity"`
	UnitPrice    string `json:"unitPrice" bson:"unit_price"`

	// Optional gateway-side overrides.
	GatewayProductID string `json:"gatewayProductId,omitempty" bson:"gateway_product_id,omitempty"`
	GatewayCost      string `json:"gatewayCost,omitempty" bson:"gateway_cost,omitempty"`
	GatewayTax       string `json:"gatewayTax,omitempty" bson:"gateway_tax,omitempty"`
	GatewayBarcode   string `json:"gatewayBarcode,omitempty" bson:"gateway_barcode,omitempty"`
	GatewayGroup     string `json:"gatewayGroup,omitempty" bson:"gateway_group,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Payment is written once at send time and never mutated.
type Payment struct {
	ID            string `json:"id" bson:"_id"`
	TransactionID string `json:"transactionId" bson:"transaction_id"`

	MethodDescription string `json:"methodDescription" bson:"method_description"`
	PaymentType       int    `json:"paymentType" bson:"payment_type"`
	Amount            string `json:"amount" bson:"amount"`
	ExternalMethodID  string `json:"externalMethodId" bson:"external_method_id"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
