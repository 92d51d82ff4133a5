package sales

import (
	// Local Packages
	models "pdv-bridge/models"
)

// transitions is the allowed-status table. cancelled is terminal.
// validated re-enters itself on re-validation; failed may re-enter
// validated (terminal re-validates) or reach sent (a retry succeeds) or
// fail again on the next exhausted attempt. sent may still fail when a
// post-delivery reconciliation exhausts.
var transitions = map[models.TransactionStatus][]models.TransactionStatus{
	models.StatusPending:   {models.StatusValidated, models.StatusCancelled},
	models.StatusValidated: {models.StatusValidated, models.StatusSent, models.StatusFailed, models.StatusCancelled},
	models.StatusFailed:    {models.StatusValidated, models.StatusSent, models.StatusFailed},
	models.StatusSent:      {models.StatusFailed},
	models.StatusCancelled: {},
}

// CanTransition reports whether moving from one status to another is
// legal. Cancellation intentionally bypasses this check at the operation
// level (see Cancel); the table still makes the legal set explicit.
func CanTransition(from, to models.TransactionStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
