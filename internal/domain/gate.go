package domain

type Action string

const (
	ActionPurchase  Action = "purchase"
	ActionBookSlot  Action = "book_slot"
	ActionOpenAdmin Action = "open_admin"
)

func (a Action) Valid() bool {
	switch a {
	case ActionPurchase, ActionBookSlot, ActionOpenAdmin:
		return true
	}
	return false
}

type Decision string

const (
	DecisionProceed       Decision = "proceed"
	DecisionRequiresLogin Decision = "requires_login"
	DecisionDenied        Decision = "denied"
	DecisionAlreadyOwned  Decision = "already_owned"
)
