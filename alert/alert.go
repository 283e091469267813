package alert

import (
	"context"
)

type Status string

const (
	StatusError    Status = "error"
	StatusResolved Status = "resolved"
)

// Alert is one operator notification about a transfer.
type Alert struct {
	Status  Status
	Message string

	Asset string
	// Amount already shifted by the asset decimals.
	Amount string

	FromChain   string
	FromTxHash  string
	FromLink    string
	SigningHash string
	SigningLink string
	ToChain     string
	ToTxHash    string
	ToLink      string
}

// Notifier delivers alerts. Delivery failures are logged by the notifier and never returned:
// alerting must not change the outcome of the work that triggered it.
type Notifier interface {
	Notify(ctx context.Context, alert *Alert)
}
