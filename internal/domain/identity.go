package domain

// FullCoursePackage is the package covered by Identity.IsPremiumEntitled.
const FullCoursePackage = "corso_completo"

// Identity is an immutable snapshot of the authenticated user as returned by
// the backend. A refresh replaces it wholesale.
type Identity struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	IsPremiumEntitled bool     `json:"is_premium"`
	IsAdmin           bool     `json:"is_admin"`
	PurchasedPackages []string `json:"purchased_courses,omitempty"`
}

// Owns reports whether the identity is already entitled to packageID.
func (i Identity) Owns(packageID string) bool {
	if packageID == FullCoursePackage && i.IsPremiumEntitled {
		return true
	}
	for _, p := range i.PurchasedPackages {
		if p == packageID {
			return true
		}
	}
	return false
}

func (i Identity) clone() Identity {
	c := i
	if i.PurchasedPackages != nil {
		c.PurchasedPackages = append([]string(nil), i.PurchasedPackages...)
	}
	return c
}

// Registration is the profile sent to the backend on sign-up. The password
// confirmation never leaves the client and is not part of it.
type Registration struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	GDPRConsent      bool   `json:"gdpr_consent"`
	MarketingConsent bool   `json:"marketing_consent"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	AccessToken string
	Identity    Identity
}
