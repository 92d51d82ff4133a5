package errors

import "fmt"

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid request body", err)
}

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// ConfigurationMissingErr signals that no active integration profile
// exists; every gateway call is fatal without one.
func ConfigurationMissingErr() error {
	return E(Unavailable, "integration configuration not found", nil)
}

func CredentialMismatchErr() error {
	return E(Unauthorized, "invalid credentials", nil)
}

func TransactionNotFoundErr(companyCode, saleCode string) error {
	return E(NotFound, fmt.Sprintf("transaction not found for sale %s, company %s", saleCode, companyCode), nil)
}

// StateMismatchErr reports a terminal that presented a gateway transaction
// id different from the stored one, which means terminal and backend have
// desynchronized. Never retried.
func StateMismatchErr(want, got string) error {
	return E(Unprocessable, fmt.Sprintf("transaction id mismatch: expected %s, got %s", want, got), nil)
}

func GatewayErr(op string, err error) error {
	return E(Unavailable, fmt.Sprintf("gateway %s failed", op), err)
}
