package customer

import "strings"

// Snapshot carries the contact and shipping fields collected on the
// information step. No invariants are enforced here: completeness is a
// checkout-step precondition, not a data invariant.
type Snapshot struct {
	Email      string `json:"email" validate:"omitempty,email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Phone      string `json:"phone"`
}

// Complete reports whether the form can leave the information step.
// Province is optional: not every supported country has one.
func (s Snapshot) Complete() bool {
	required := []string{
		s.Email, s.FirstName, s.LastName,
		s.Address, s.PostalCode, s.City, s.Phone,
	}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// AddressComplete reports whether the shipping-relevant subset is filled.
// The shipping quote engine refuses to call the rate collaborator on a
// partial address.
func (s Snapshot) AddressComplete() bool {
	return strings.TrimSpace(s.Address) != "" &&
		strings.TrimSpace(s.PostalCode) != "" &&
		strings.TrimSpace(s.City) != ""
}
