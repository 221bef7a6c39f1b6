package payment

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
	StatusCancelled Status = "CANCELLED"
)

// allowedTransitions lists the statuses a payment may move to from each status.
// REFUNDED and CANCELLED are terminal, and nothing leads back out of PAID except a refund.
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusFailed, StatusCancelled},
	StatusFailed:  {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusRefunded},
}

// CanTransition reports whether a payment in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, to := range allowedTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

const (
	ProviderViva    = "VIVA"
	DefaultCurrency = "EUR"
)

type Payment struct {
	ID            int64
	MerchantTrns  string
	OrderCode     string
	TransactionID string
	Amount        int64
	Currency      string
	Status        Status
	CustomerEmail string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CheckoutInput describes an order to open on the hosted checkout.
// Amount is in minor units.
type CheckoutInput struct {
	Amount      int64  `json:"amount"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description,omitempty"`
	PreAuth     bool   `json:"pre_auth,omitempty"`
}

type Checkout struct {
	Payment     *Payment
	RedirectURL string
}

// Order is what the gateway reports back after an order was created.
type Order struct {
	OrderCode   string
	RedirectURL string
}

// TransactionStatus is the gateway's view of the transaction paying an order.
type TransactionStatus struct {
	TransactionID string
	StatusID      string
}

// Viva transaction status ids.
const (
	vivaStatusFinished  = "F"
	vivaStatusActive    = "A"
	vivaStatusError     = "E"
	vivaStatusCancelled = "X"
	vivaStatusReversed  = "R"
)

// LocalStatus maps the Viva transaction status onto a payment status.
func (s TransactionStatus) LocalStatus() Status {
	switch s.StatusID {
	case vivaStatusFinished:
		return StatusPaid
	case vivaStatusError:
		return StatusFailed
	case vivaStatusCancelled:
		return StatusCancelled
	case vivaStatusReversed:
		return StatusRefunded
	default:
		return StatusPending
	}
}
