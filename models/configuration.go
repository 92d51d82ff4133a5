package models

import "time"

// Configuration is one named credential profile. Exactly one profile
// (named "default") is active at a time; upsert-by-name, no history.
type Configuration struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`

	// Terminal credentials checked on authenticate.
	TerminalUser        string `json:"terminalUser" bson:"terminal_user"`
	TerminalPassword    string `json:"terminalPassword" bson:"terminal_password"`
	TerminalCompanyCode string `json:"terminalCompanyCode" bson:"terminal_company_code"`

	// Gateway connection settings.
	GatewayHost       string `json:"gatewayHost" bson:"gateway_host"`
	GatewayTerminalID string `json:"gatewayTerminalId" bson:"gateway_terminal_id"`
	GatewayAcquirerID string `json:"gatewayAcquirerId" bson:"gateway_acquirer_id"`
	GatewayClientID   string `json:"gatewayClientId" bson:"gateway_client_id"`
	GatewayPassword   string `json:"gatewayPassword" bson:"gateway_password"`
	GatewayCurrency   string `json:"gatewayCurrency" bson:"gateway_currency"`

	Active bool `json:"active" bson:"active"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
