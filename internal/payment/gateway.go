package payment

import "context"

// Gateway is the boundary to the external payment processor. The processor
// is the service of record for charging and refunding; we treat its answers
// as authoritative but never its callers as trusted.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	Refund(ctx context.Context, intentID string, amount *float64, reason string) (*RefundResult, error)
}
