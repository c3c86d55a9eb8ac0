package policies

import (
	"context"
	"errors"
	"time"
)

// ErrBillingUnavailable signals a transient provider failure. It must never
// be collapsed into a "paid" answer.
var ErrBillingUnavailable = errors.New("billing: provider unavailable")

// BillingPort is the narrow interface to the external billing collaborator.
// A purchase counts when the customer has a recent, non-refunded transaction
// or an active entitlement.
type BillingPort interface {
	HasRecentNonRefundedTransaction(ctx context.Context, customerID string, within time.Duration) (bool, error)
	HasActiveEntitlement(ctx context.Context, customerID string) (bool, error)
}
