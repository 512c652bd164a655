// Package gate decides whether a user-initiated action may proceed given the
// current session. It has no side effects.
package gate

import "github.com/Domenick1991/coursedesk/internal/domain"

// Authorize returns the decision for action. packageID is only consulted for
// ActionPurchase.
func Authorize(action domain.Action, snap domain.Snapshot, packageID string) domain.Decision {
	switch action {
	case domain.ActionOpenAdmin:
		if snap.Identity == nil || !snap.Identity.IsAdmin {
			return domain.DecisionDenied
		}
		return domain.DecisionProceed
	case domain.ActionPurchase:
		if snap.Identity == nil {
			return domain.DecisionRequiresLogin
		}
		if packageID != "" && snap.Identity.Owns(packageID) {
			return domain.DecisionAlreadyOwned
		}
		return domain.DecisionProceed
	case domain.ActionBookSlot:
		if snap.Identity == nil {
			return domain.DecisionRequiresLogin
		}
		return domain.DecisionProceed
	}
	return domain.DecisionDenied
}
