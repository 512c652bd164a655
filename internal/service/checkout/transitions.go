package checkout

import "github.com/Domenick1991/coursedesk/internal/domain"

var transitions = map[domain.CheckoutState][]domain.CheckoutState{
	domain.CheckoutIdle:             {domain.CheckoutCreating, domain.CheckoutAbandoned},
	domain.CheckoutCreating:         {domain.CheckoutIdle, domain.CheckoutAwaitingApproval, domain.CheckoutFailed, domain.CheckoutAbandoned},
	domain.CheckoutAwaitingApproval: {domain.CheckoutCapturing, domain.CheckoutAbandoned},
	domain.CheckoutCapturing:        {domain.CheckoutCaptured, domain.CheckoutFailed, domain.CheckoutAbandoned},
}

// canTransition reports whether from -> to is in the table. Terminal states
// have no outgoing edges.
func canTransition(from, to domain.CheckoutState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
