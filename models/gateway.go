package models

import (
	// Go Internal Packages
	"strconv"
)

// Gateway wire types. The /action endpoint discriminates on actionType:
// "3" validates a voucher, "4" settles a sale. Values are string-typed on
// the wire; sale requests are built as open maps because mapping rules
// may set arbitrary fields.

const (
	GatewayActionValidate = "3"
	GatewayActionSale     = "4"
)

type TokenRequest struct {
	TerminalID string `json:"terminalID"`
	AcquirerID string `json:"acquirerID"`
	Language   string `json:"language"`
	Password   string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// VoucherResult pairs the request the client constructed with whatever
// came back, even on failure. Degraded marks a gateway error that was
// absorbed; the validate flow continues without a balance.
type VoucherResult struct {
	Request  map[string]any `json:"request"`
	Response map[string]any `json:"response"`
	Degraded bool           `json:"degraded"`
	Reason   string         `json:"reason,omitempty"`
}

// Balance digs the voucher balance out of a validate response
// (additionalData.balance). Missing or unparseable values report false.
func (r VoucherResult) Balance() (float64, bool) {
	if r.Degraded || r.Response == nil {
		return 0, false
	}
	ad, ok := r.Response["additionalData"].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := ad["balance"].(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
