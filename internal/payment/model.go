package payment

// Method values accepted at checkout.
const (
	MethodCard         = "card"
	MethodPaypal       = "paypal"
	MethodBankTransfer = "bank_transfer"
)

func ValidMethod(m string) bool {
	switch m {
	case MethodCard, MethodPaypal, MethodBankTransfer:
		return true
	}
	return false
}

// Intent is the processor-agnostic view of a charge authorization.
// Amount is in dollars; conversion to the processor's integer cents happens
// at the gateway boundary.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       float64
	Currency     string
	Created      int64
	Metadata     map[string]string
}

// Succeeded reports whether the charge completed on the processor side.
func (i *Intent) Succeeded() bool {
	return i.Status == "succeeded"
}

type RefundResult struct {
	ID     string
	Amount float64
	Status string
	Reason string
}

// Event is a normalized inbound processor notification.
type Event struct {
	Type     string
	IntentID string
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)
