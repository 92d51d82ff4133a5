package models

// Terminal-facing request/response shapes. The terminal (PDV) reports a
// sale in this schema; the transformation layer converts it to the
// gateway's.

type AuthRequest struct {
	User        string `json:"user"`
	Password    string `json:"password"`
	CompanyCode string `json:"companyCode"`
}

type AuthResponse struct {
	BearerToken string `json:"bearerToken"`
}

type SaleProduct struct {
	Sequence     int     `json:"sequence"`
	OperatorCode string  `json:"operatorCode"`
	OperatorName string  `json:"operatorName"`
	ProductCode  string  `json:"productCode"`
	ProductName  string  `json:"productName"`
	SaleValue    float64 `json:"saleValue"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
}

type SalePayment struct {
	MethodDescription string  `json:"methodDescription"`
	PaymentType       int     `json:"paymentType"`
	Amount            float64 `json:"amount"`
	ExternalMethodID  string  `json:"externalMethodId"`
}

type ValidateRequest struct {
	CompanyCode  string        `json:"companyCode"`
	SaleCode     string        `json:"saleCode"`
	VoucherCode  string        `json:"voucherCode"`
	SaleDate     string        `json:"saleDate"`
	SaleTime     string        `json:"saleTime"`
	GatewayTxnID string        `json:"gatewayTxnId,omitempty"`
	Products     []SaleProduct `json:"products"`
}

type ValidateResponse struct {
	GatewayTxnID string        `json:"gatewayTxnId"`
	CodeType     string        `json:"codeType"`
	Cashback     float64       `json:"cashback"`
	Products     []SaleProduct `json:"products"`
	PaymentTypes []int         `json:"paymentTypes"`
}

type SendRequest struct {
	CompanyCode  string        `json:"companyCode"`
	SaleCode     string        `json:"saleCode"`
	GatewayTxnID string        `json:"gatewayTxnId"`
	Products     []SaleProduct `json:"products"`
	Payments     []SalePayment `json:"payments"`
}

type SendResponse struct {
	CompanyCode  string `json:"companyCode"`
	SaleCode     string `json:"saleCode"`
	GatewayTxnID string `json:"gatewayTxnId"`
}

type CancelRequest struct {
	CompanyCode  string `json:"companyCode"`
	SaleCode     string `json:"saleCode"`
	GatewayTxnID string `json:"gatewayTxnId"`
}

type CancelResponse struct {
	CompanyCode  string `json:"companyCode"`
	SaleCode     string `json:"saleCode"`
	GatewayTxnID string `json:"gatewayTxnId"`
	Success      bool   `json:"success"`
}
